package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a JSON logger writing to path. The terminal belongs to
// the dashboard, so stderr is used only when the file cannot be opened.
// The returned func syncs and closes the file.
func newLogger(level, path string) (*zap.Logger, func(), error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log-level %q: %w", level, err)
	}

	out, closeOut, fallback := openLogFile(path)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(out)),
		zapLevel,
	)
	logger := zap.New(core, zap.AddCaller())
	if fallback != nil {
		logger.Warn("log file unavailable, logging to stderr", zap.String("path", path), zap.Error(fallback))
	}

	return logger, func() {
		_ = logger.Sync()
		closeOut()
	}, nil
}

func openLogFile(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return os.Stderr, func() {}, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return os.Stderr, func() {}, err
	}
	return f, func() { _ = f.Close() }, nil
}
