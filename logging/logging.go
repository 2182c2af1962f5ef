// Package logging builds the process zap logger from the logging config
// section.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/Aqumen-Tech/aqumenlib/config"
)

// New builds a logger writing to stderr, and also to a timestamped file
// under LogDir when one is set. name goes into the file name. The returned
// closer syncs the logger and closes the file.
func New(cfg config.Logging, name string) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging.New: %w", err)
	}

	var enc zapcore.Encoder
	if cfg.Console {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)}

	var file *os.File
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging.New: %w", err)
		}
		path := FilePath(cfg.LogDir, name, time.Now())
		file, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging.New: %w", err)
		}
		fileEnc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(file), level))
	}
	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	closer := func() error {
		// Sync on stderr fails on some terminals; only the file matters.
		_ = l.Sync()
		if file == nil {
			return nil
		}
		return file.Close()
	}
	return l, closer, nil
}

// FilePath is <dir>/<name>_<YYYYMMDD_HHMMSS>.log.
func FilePath(dir, name string, t time.Time) string {
	if name == "" {
		name = "default"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, t.Format("20060102_150405")))
}

// Init installs the logger built from cfg as the zap global and returns a
// function that flushes it and closes its log file. The global is reset to
// a no-op logger on close.
func Init(cfg config.Logging, name string) (func() error, error) {
	l, closer, err := New(cfg, name)
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(l)
	return func() error {
		err := closer()
		restore()
		return err
	}, nil
}

// Slog wraps a zap logger for callers that take a *slog.Logger.
func Slog(l *zap.Logger) *slog.Logger {
	return slog.New(zapslog.NewHandler(l.Core()))
}
