package logger

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

// Init builds the process-wide logger. Only the first call has an effect.
func Init(level string) error {
	var err error
	once.Do(func() {
		var l *zap.Logger
		l, err = newLogger(level)
		if err == nil {
			globalLogger.Store(l)
		}
	})
	return err
}

// Get returns the process-wide logger, falling back to info level when Init
// was never called.
func Get() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	_ = Init("info")
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Sync flushes any buffered log entries
func Sync() {
	if l := globalLogger.Load(); l != nil {
		_ = l.Sync()
	}
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.CallerKey = "caller"
	config.InitialFields = map[string]interface{}{"service": "finwiz"}

	return config.Build()
}
