package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"gitlab.com/gitlab-org/gitlab-dirindex/internal/config"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/errortracking"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/logging"
	"gitlab.com/gitlab-org/gitlab-dirindex/internal/mimetype"
)

// VERSION stores the information about the semantic version of application
var VERSION = "dev"

// REVISION stores the information about the git revision of application
var REVISION = "HEAD"

func initErrorReporting(sentryDSN, sentryEnvironment string) error {
	return errortracking.Initialize(sentryDSN, sentryEnvironment, fmt.Sprintf("%s-%s", VERSION, REVISION))
}

func printVersion(showVersion bool, version string) {
	if showVersion {
		fmt.Fprintf(os.Stdout, "%s\n", version)
		os.Exit(0)
	}
}

func appMain() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	printVersion(cfg.General.ShowVersion, VERSION)

	if err := logging.ConfigureLogging(cfg.Log.Format, cfg.Log.Verbose); err != nil {
		log.WithError(err).Fatal("Failed to initialize logging")
	}

	log.WithFields(log.Fields{
		"version":  VERSION,
		"revision": REVISION,
	}).Print("GitLab Directory Index Daemon")

	config.LogConfig(cfg)

	if cfg.Sentry.DSN != "" {
		if err := initErrorReporting(cfg.Sentry.DSN, cfg.Sentry.Environment); err != nil {
			log.WithError(err).Warn("Failed to initialize error reporting")
		}
	}

	mimetype.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runApp(ctx, cfg); err != nil {
		log.WithError(err).Fatal("could not run the directory index daemon")
	}
}

func main() {
	log.SetOutput(os.Stderr)

	appMain()
}
