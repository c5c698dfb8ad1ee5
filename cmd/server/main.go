package main

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/clarity-app/clarity-backend/internal/ai"
	"github.com/clarity-app/clarity-backend/internal/api"
	"github.com/clarity-app/clarity-backend/internal/config"
	"github.com/clarity-app/clarity-backend/internal/database"
	"github.com/clarity-app/clarity-backend/internal/prompt"
	"github.com/clarity-app/clarity-backend/internal/repository/postgres"
	"github.com/clarity-app/clarity-backend/internal/services"
)

func main() {
	log := logrus.StandardLogger()
	log.SetLevel(logrus.InfoLevel)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Clarity Backend",
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(cfg),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(db.DB)
	turnRepo := postgres.NewTurnRepository(db.DB)
	adaptationRepo := postgres.NewAdaptationRepository(db.DB)

	// Prompt composition and profile storage
	provider := prompt.NewDirProvider(cfg.Prompts.Dir)
	composer := prompt.NewComposer(provider)
	profile := prompt.NewProfileStore(cfg.Prompts.Dir)

	// Generation engine and client
	engine := buildEngine(cfg.AI)
	if err := engine.ValidateConfig(); err != nil {
		log.WithError(err).Warn("Engine is not fully configured; responses will degrade to fallbacks")
	}
	client := ai.NewClient(engine)

	// Initialize services
	svc := services.NewServices(sessionRepo, turnRepo, adaptationRepo, composer, client, profile)

	// Setup routes
	api.SetupRoutes(app, svc)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.WithFields(logrus.Fields{
		"addr":   addr,
		"engine": engine.Name(),
	}).Info("Clarity backend starting")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func buildEngine(cfg config.AIConfig) ai.Engine {
	switch cfg.Engine {
	case "openai":
		return ai.NewOpenAIEngine(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return ai.NewGenkitEngine(cfg.BaseURL, cfg.APIKey)
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"detail": err.Error(),
		"status": code,
	})
}

func corsOrigins(cfg *config.Config) string {
	if cfg.Server.CORSOrigins != "" {
		return cfg.Server.CORSOrigins
	}
	// Development posture: the Flutter web and mobile clients connect
	// from arbitrary origins.
	return "*"
}
