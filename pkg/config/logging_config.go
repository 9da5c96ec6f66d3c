package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/DeBrosOfficial/ipfsrpc/pkg/logging"
)

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Format     string `yaml:"format"`      // json, console
	OutputFile string `yaml:"output_file"` // Empty for stderr
}

// Build constructs the logger described by this section.
func (lc LoggingConfig) Build(component logging.Component) (*logging.ColoredLogger, error) {
	level := zapcore.InfoLevel
	if lc.Level != "" {
		parsed, err := zapcore.ParseLevel(lc.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid logging level %q: %w", lc.Level, err)
		}
		level = parsed
	}

	if lc.Format == "json" {
		return logging.NewJSONLogger(level, lc.OutputFile)
	}
	if lc.OutputFile != "" {
		// File output never gets ANSI escapes
		return logging.NewFileLogger(component, lc.OutputFile, level, false)
	}
	return logging.NewColoredLogger(component, level, true)
}
