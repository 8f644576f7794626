package api

import (
	"errors"

	"finwiz/docs"
	"finwiz/internal/api/handlers"
	"finwiz/internal/dto"
	"finwiz/internal/repository"
	"finwiz/pkg/config"
	"finwiz/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by SetupRouter.
type Handlers struct {
	Transactions *handlers.TransactionHandler
	AI           *handlers.AIHandler
	Health       *handlers.HealthHandler
}

func SetupRouter(
	h Handlers,
	store repository.Store,
	cfg *config.ServerConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "FinWiz API",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Error("Unhandled request error",
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			return c.Status(code).JSON(dto.ErrorResponse{
				Detail: err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "*",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${locals:requestid} | ${method} ${path}\n",
	}))

	// Swagger, docs registers itself in init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", h.Health.Health)

	session := middleware.StorageSession(store, appLogger)

	transactions := app.Group("/transactions", session)
	transactions.Get("", h.Transactions.ListTransactions)
	transactions.Post("", h.Transactions.CreateTransaction)

	categorize := app.Group("/categorize")
	categorize.Post("", h.AI.Categorize)
	categorize.Post("/batch", h.AI.CategorizeBatch)

	app.Post("/advice", session, h.AI.Advise)

	return app
}
