// Package logging owns the process-wide logger. Packages grab a named child
// once at init time via Named; main flips verbosity with SetVerbose after
// flag parsing. The level is atomic, so children created before SetVerbose
// pick the change up.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once  sync.Once
	level zap.AtomicLevel
	root  *zap.Logger
)

func rootLogger() *zap.Logger {
	once.Do(func() {
		level = zap.NewAtomicLevelAt(levelFromEnv())

		cfg := zap.NewDevelopmentConfig()
		cfg.Level = level
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		cfg.DisableStacktrace = true

		logger, err := cfg.Build()
		if err != nil {
			logger = zap.NewNop()
		}
		root = logger
	})
	return root
}

// levelFromEnv reads the initial level from ROJO_LOG so long-running servers
// can be made chatty without a restart flag.
func levelFromEnv() zapcore.Level {
	switch os.Getenv("ROJO_LOG") {
	case "ERROR":
		return zapcore.ErrorLevel
	case "WARN":
		return zapcore.WarnLevel
	case "DEBUG":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Named returns a child logger tagged with name.
func Named(name string) *zap.Logger {
	return rootLogger().Named(name)
}

// SetVerbose lowers the level to debug when verbose is set. It never raises
// the level above what ROJO_LOG asked for.
func SetVerbose(verbose bool) {
	rootLogger()
	if verbose && level.Level() > zapcore.DebugLevel {
		level.SetLevel(zapcore.DebugLevel)
	}
}
