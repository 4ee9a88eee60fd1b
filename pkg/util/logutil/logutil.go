package logutil

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu        sync.RWMutex
	bgLogger  = newDefaultLogger()
	logLevels = map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
)

func newDefaultLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// BgLogger returns the process-wide background logger.
func BgLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return bgLogger
}

// InitLogger rebuilds the background logger with the given level.
// Unknown levels fall back to info.
func InitLogger(level string) error {
	lvl, ok := logLevels[level]
	if !ok {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	bgLogger = logger
	mu.Unlock()
	return nil
}
