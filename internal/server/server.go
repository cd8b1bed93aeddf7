// Package server assembles the Fiber application from its services.
package server

import (
	"errors"
	"time"

	"wanderlog/internal/database"
	"wanderlog/internal/handlers"
	"wanderlog/internal/repositories"
	"wanderlog/internal/services"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options configures New.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Events may be nil, in which case lifecycle events are not published.
	Events services.EventPublisher
	// AccessLog enables the per-request access log.
	AccessLog bool
}

// App is the assembled application and the services behind it.
type App struct {
	Fiber     *fiber.App
	Auth      *services.AuthService
	Blogs     *services.BlogService
	Users     *services.UserService
	Analytics *services.AnalyticsService
}

// New wires repositories, services and handlers over db.
func New(db *gorm.DB, opts Options, logger *zap.Logger) *App {
	userRepo := repositories.NewGORMUserRepository(db)
	blogRepo := repositories.NewGORMBlogRepository(db)
	analyticsRepo := repositories.NewGORMAnalyticsRepository(db)

	authService := services.NewAuthService(userRepo, opts.JWTSecret, opts.TokenTTL, logger)
	blogService := services.NewBlogService(blogRepo, userRepo, opts.Events, logger)
	userService := services.NewUserService(userRepo, logger)
	analyticsService := services.NewAnalyticsService(analyticsRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      "wanderlog",
		ErrorHandler: errorHandler(logger),
	})
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(fiberlogger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if err := database.Ping(db); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
			"events": opts.Events != nil,
		})
	})

	gate := handlers.NewGate(authService, logger)
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService, gate, logger).RegisterRoutes(apiV1)
	handlers.NewBlogHandler(blogService, analyticsService, gate, logger).RegisterRoutes(apiV1)
	handlers.NewAnalyticsHandler(analyticsService, gate, logger).RegisterRoutes(apiV1)
	handlers.NewUserHandler(userService, gate, logger).RegisterRoutes(apiV1)

	return &App{
		Fiber:     app,
		Auth:      authService,
		Blogs:     blogService,
		Users:     userService,
		Analytics: analyticsService,
	}
}

// errorHandler renders errors that escape handlers, such as unknown
// routes and recovered panics, in the response envelope.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
		}
		status, message := handlers.ErrorStatus(err)
		if status == fiber.StatusInternalServerError {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
	}
}
