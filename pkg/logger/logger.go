package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string
	// ServiceName is attached to every entry as the "service" field
	ServiceName string
	// Development switches to a human-readable console encoder
	Development bool
}

var (
	mu     sync.Mutex
	global *zap.Logger = zap.NewNop()
)

// Init builds the global logger from the given configuration.
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	if cfg.ServiceName != "" {
		log = log.With(zap.String("service", cfg.ServiceName))
	}

	mu.Lock()
	global = log
	mu.Unlock()
	return nil
}

// Get returns the global logger. Before Init it returns a no-op logger.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return global
}

// Sync flushes any buffered log entries.
func Sync() error {
	return Get().Sync()
}
