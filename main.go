// Package main provides the entry point for the Tint-Care editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tint-care/internal/app"
	"tint-care/internal/bridge"
	"tint-care/internal/catalog"
	"tint-care/internal/config"
	"tint-care/internal/shell"
	"tint-care/internal/version"
	"tint-care/ui/mainwindow"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"github.com/sirupsen/logrus"
)

const appID = "com.tintcare.editor"

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file")
	logLevel := flag.String("loglevel", "", "Set the logging level: debug, info, warn, error (overrides config)")
	printPath := flag.String("print", "", "Print a file on the default printer and exit")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(lvl)
	logrus.WithField("version", version.Version).Infof("starting %s", version.Name)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	// The UI only reaches the OS print pipeline through the bus.
	bus := bridge.New()
	defer bus.Close()
	printer := bridge.NewClient(bus)

	state := app.NewState(cfg, client, client, printer)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.TintCareTheme{})

	win := mainwindow.New(ctx, fyneApp, state)

	sh := shell.New(shell.Options{
		Spooler:     shell.NewCUPS(cfg.Print.LPStat, cfg.Print.LP),
		Dialog:      win.PrintDialog(),
		CloseWindow: win.Close,
		Title:       cfg.Export.FileName,
	})
	sh.Register(bus)

	go func() {
		if err := bus.Serve(ctx); err != nil && ctx.Err() == nil {
			logrus.WithError(err).Error("bridge stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		fyneApp.Quit()
	}()

	if *printPath != "" {
		go func() {
			if err := printer.PrintFile(ctx, *printPath); err != nil {
				logrus.WithError(err).Error("print request failed")
				win.Close()
			}
		}()
	} else {
		win.Start()
	}

	if cfg.Dev.HotReload {
		setupHotReload(ctx, win.Window, cfg.Dev)
	}

	win.ShowAndRun()
	logrus.Info("shutting down")
}

// setupHotReload offers a restart when the binary is rebuilt.
func setupHotReload(ctx context.Context, win fyne.Window, dev config.DevConfig) {
	watcher := app.NewBinaryWatcher("")
	if watcher == nil {
		logrus.Warn("hot reload: unable to determine executable path")
		return
	}

	var watch func()
	watch = func() {
		watcher.Watch(ctx, dev.ReloadInterval, func() {
			logrus.Info("hot reload: newer binary detected")
			dialog.ShowConfirm("New Version Available",
				"The application binary has been updated.\nRestart now?",
				func(restart bool) {
					if !restart {
						watcher.Accept()
						go watch()
						return
					}
					logrus.Info("hot reload: restarting")
					if err := watcher.Restart(); err != nil {
						logrus.WithError(err).Error("hot reload: restart failed")
					}
				}, win)
		})
	}
	go watch()
}
