package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Prober is the part of Store the startup readiness check needs.
type Prober interface {
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
}

// WaitUntilReady makes up to attempts tries at applying the schema and
// pinging storage, sleeping interval between failed tries. It reports
// whether storage became ready. Exhausting all attempts is not fatal: the
// caller keeps starting and requests fail against the unreachable store.
func WaitUntilReady(ctx context.Context, p Prober, attempts int, interval time.Duration, logger *zap.Logger) bool {
	for attempt := 1; attempt <= attempts; attempt++ {
		err := p.EnsureSchema(ctx)
		if err == nil {
			logger.Info("Database schema created/verified")
			err = p.Ping(ctx)
		}
		if err == nil {
			logger.Info("Database connection successful", zap.Int("attempt", attempt))
			return true
		}

		logger.Warn("Database connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			logger.Warn("Readiness check cancelled", zap.Error(ctx.Err()))
			return false
		case <-time.After(interval):
		}
	}

	logger.Warn("Could not connect to database after several attempts, continuing in degraded mode",
		zap.Int("attempts", attempts),
	)
	return false
}
