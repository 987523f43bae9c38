package cmd

import (
	"os"
	"time"

	"grimm.is/georules/internal/config"
	"grimm.is/georules/internal/i18n"
	"grimm.is/georules/internal/logging"
)

// Printer is the global message printer for the CLI
var Printer = i18n.NewCLIPrinter()

// newLogger builds the process logger from the log block. verbose forces
// debug level.
func newLogger(cfg *config.Config, verbose bool) *logging.Logger {
	lc := logging.DefaultConfig()
	lc.Output = os.Stderr
	lc.TimeFormat = time.DateTime

	if cfg.Log != nil {
		if lvl, err := logging.ParseLevel(cfg.Log.Level); err == nil {
			lc.Level = lvl
		}
		lc.JSON = cfg.Log.JSON
	}
	if verbose {
		lc.Level = logging.LevelDebug
	}

	logger := logging.New(lc)
	logging.SetDefault(logger)
	return logger
}
