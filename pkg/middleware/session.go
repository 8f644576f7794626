package middleware

import (
	"finwiz/internal/dto"
	"finwiz/internal/repository"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const sessionKey = "storageSession"

// StorageSession checks out one storage session per request and releases it
// once the rest of the chain returns, whether it succeeded, failed or panicked.
func StorageSession(store repository.Store, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := store.Acquire(c.UserContext())
		if err != nil {
			logger.Error("Failed to acquire storage session",
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Detail: "Database is unavailable",
			})
		}
		defer session.Release()

		c.Locals(sessionKey, session)

		return c.Next()
	}
}

// Session returns the storage session attached by StorageSession.
func Session(c *fiber.Ctx) (repository.Session, bool) {
	session, ok := c.Locals(sessionKey).(repository.Session)
	return session, ok
}
