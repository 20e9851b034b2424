// Package logging builds the process logger from the CLI verbosity level.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level maps the verbosity flag to a zap level. Levels 1 and 3 enable
// debug output, level 2 only adds raw device output at info level.
func Level(verbosity int) zapcore.Level {
	if verbosity == 1 || verbosity == 3 {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

// New builds a console logger writing to stderr.
func New(verbosity int) (*zap.Logger, error) {
	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(Level(verbosity)),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapConfig.Build()
}
