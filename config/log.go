package config

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: development output when debug is
// set, production JSON otherwise. A log file replaces stderr, which the
// TUI needs for the terminal.
func NewLogger(c LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if c.Debug {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if c.File != "" {
		zc.OutputPaths = []string{c.File}
		zc.ErrorOutputPaths = []string{c.File}
	}
	return zc.Build()
}
