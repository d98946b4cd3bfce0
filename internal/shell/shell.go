// Package shell is the privileged side of the bridge: it owns the OS print
// pipeline and the window lifecycle hooks the UI is not allowed to touch.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"tint-care/internal/bridge"
	"tint-care/internal/render"

	"github.com/sirupsen/logrus"
)

// ErrCancelled is returned when the user dismisses the print dialog.
var ErrCancelled = errors.New("print cancelled")

// DialogRequest describes the job shown in the print dialog.
type DialogRequest struct {
	Printers  []bridge.Printer
	Printer   string // preselected destination
	Preview   image.Image
	ImagePath string
}

// PrintDialog asks the user to confirm a print and returns the chosen
// printer, or ErrCancelled.
type PrintDialog func(ctx context.Context, req DialogRequest) (string, error)

// Options configures a Shell.
type Options struct {
	Spooler Spooler

	// Dialog is shown for every canvas print. Nil prints straight to the
	// requested printer.
	Dialog PrintDialog

	// CloseWindow is called after every file print.
	CloseWindow func()

	// TempDir is where print surfaces are created; empty means os.TempDir.
	TempDir string

	// Title is the job title passed to the spooler.
	Title string
}

// Shell serves the bridge channels.
type Shell struct {
	opts Options
}

// New creates a shell.
func New(opts Options) *Shell {
	if opts.Title == "" {
		opts.Title = "sketch"
	}
	return &Shell{opts: opts}
}

// Register installs the shell's handlers on bus.
func (s *Shell) Register(bus *bridge.Bus) {
	bus.Handle(bridge.ChannelGetPrinters, func(ctx context.Context, _ any) (any, error) {
		return s.ListPrinters(ctx), nil
	})
	bus.Handle(bridge.ChannelPrintCanvas, func(ctx context.Context, payload any) (any, error) {
		req, ok := payload.(bridge.PrintCanvasRequest)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected payload %T", bridge.ChannelPrintCanvas, payload)
		}
		return nil, s.PrintRendered(ctx, req.ImageDataURL, req.PrinterName)
	})
	bus.Handle(bridge.ChannelPrintFile, func(ctx context.Context, payload any) (any, error) {
		path, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected payload %T", bridge.ChannelPrintFile, payload)
		}
		return nil, s.PrintFile(ctx, path)
	})
}

// ListPrinters returns the OS printers. Enumeration failures are logged and
// reported as a single NoPrinters entry.
func (s *Shell) ListPrinters(ctx context.Context) []bridge.Printer {
	printers, err := s.opts.Spooler.Printers(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to list printers")
		return []bridge.Printer{{Name: bridge.NoPrinters}}
	}
	return printers
}

// PrintRendered prints a PNG data URL. The image is written to a private
// surface directory which is removed on every exit path.
func (s *Shell) PrintRendered(ctx context.Context, imageDataURL, printerName string) (err error) {
	log := logrus.WithField("printer", printerName)
	defer func() {
		switch {
		case errors.Is(err, ErrCancelled):
			log.Info("print cancelled")
		case err != nil:
			log.WithError(err).Error("canvas print failed")
		}
	}()

	surface, err := newSurface(s.opts.TempDir)
	if err != nil {
		return err
	}
	defer surface.Close()

	img, path, err := surface.Load(imageDataURL)
	if err != nil {
		return err
	}

	printer := printerName
	if s.opts.Dialog != nil {
		printer, err = s.opts.Dialog(ctx, DialogRequest{
			Printers:  s.ListPrinters(ctx),
			Printer:   printerName,
			Preview:   img,
			ImagePath: path,
		})
		if err != nil {
			return err
		}
	}
	if printer == bridge.NoPrinters {
		printer = ""
	}

	return s.opts.Spooler.Print(ctx, Job{Path: path, Printer: printer, Title: s.opts.Title})
}

// PrintFile prints a file on the default destination without a dialog and
// then closes the window, whatever the outcome.
func (s *Shell) PrintFile(ctx context.Context, path string) (err error) {
	defer func() {
		if err != nil {
			logrus.WithField("path", path).WithError(err).Error("file print failed")
		}
		if s.opts.CloseWindow != nil {
			s.opts.CloseWindow()
		}
	}()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}
	return s.opts.Spooler.Print(ctx, Job{Path: abs, Title: filepath.Base(abs)})
}

// surface is the hidden workspace of one canvas print.
type surface struct {
	dir string
}

func newSurface(base string) (*surface, error) {
	dir, err := os.MkdirTemp(base, "tintcare-print-")
	if err != nil {
		return nil, fmt.Errorf("create print surface: %w", err)
	}
	return &surface{dir: dir}, nil
}

// Load decodes the data URL and writes it into the surface.
func (s *surface) Load(dataURL string) (image.Image, string, error) {
	data, _, err := render.DecodeDataURL(dataURL)
	if err != nil {
		return nil, "", err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode print image: %w", err)
	}
	path := filepath.Join(s.dir, "sketch.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, "", err
	}
	return img, path, nil
}

func (s *surface) Close() {
	if err := os.RemoveAll(s.dir); err != nil {
		logrus.WithField("dir", s.dir).WithError(err).Warn("failed to remove print surface")
	}
}
