// Command catalogmock serves a fixture vehicle catalog for development.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logLevel := flag.String("loglevel", "info", "Set the logging level: debug, info, warn, error, fatal, panic")
	listenAddr := flag.String("listen", ":7092", "Set the server listen address")
	fixturePath := flag.String("fixtures", "", "JSON fixture file (defaults to a built-in catalog)")
	imageDir := flag.String("images", "", "Directory served under /images/")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(level)

	fx := defaultFixtures()
	if *fixturePath != "" {
		if fx, err = loadFixtures(*fixturePath); err != nil {
			logrus.WithError(err).Fatal("failed to load fixtures")
		}
	}

	r := setupRouter(fx, *imageDir)
	logrus.WithFields(logrus.Fields{
		"addr":     *listenAddr,
		"brands":   len(fx.Brands),
		"vehicles": len(fx.Vehicles),
	}).Info("starting catalog mock")
	if err := http.ListenAndServe(*listenAddr, r); err != nil {
		logrus.WithField("event", "start server").Fatal(err)
	}
}
