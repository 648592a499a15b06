package logger_test

import (
	"errors"

	"github.com/wonny/analyst/pkg/config"
	"github.com/wonny/analyst/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Analyst started")
	log.Infof("Watching %d tickers", 12)
}

// Example_component demonstrates component-scoped structured logging
func Example_component() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg).Component("review")

	log.WithFields(map[string]interface{}{
		"updates": 3,
		"skipped": 1,
	}).Info("Nightly review applied")

	log.WithError(errors.New("collaborator unavailable")).Error("Nightly review skipped")
}
