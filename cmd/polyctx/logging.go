package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newConsoleLogger returns a human-readable logger on stderr.
func newConsoleLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// anomalyLogPath returns the per-input anomaly log: the input path with a
// trailing .gz removed and "_counts.log" appended.
func anomalyLogPath(input string) string {
	if input == "-" {
		return "stdin_counts.log"
	}
	return strings.TrimSuffix(input, ".gz") + "_counts.log"
}

// newAnomalyLogger opens path for appending and returns a logger writing
// tab-separated entries to it. The returned close function syncs the logger
// and closes the file.
func newAnomalyLogger(path string) (*zap.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open anomaly log: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), zapcore.InfoLevel)
	logger := zap.New(core)

	closeFn := func() error {
		logger.Sync()
		return f.Close()
	}
	return logger, closeFn, nil
}
