package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/reinos-tcg/backend/config"
	"github.com/reinos-tcg/backend/database"
	"github.com/reinos-tcg/backend/database/repositories"
	"github.com/reinos-tcg/backend/handlers"
	"github.com/reinos-tcg/backend/logger"
	"github.com/reinos-tcg/backend/middleware"
	"github.com/reinos-tcg/backend/search"
	"github.com/reinos-tcg/backend/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	customHandler := logger.NewHandler("Reinos-Catalog", cfg.Log.Level)
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Reinos catalog backend",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to database...")
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := db.InitSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.LogSystem("Database connected",
		slog.String("host", cfg.DB.Host),
		slog.String("database", cfg.DB.Database))

	cardRepo := repositories.NewCardRepository(db.BunDB(), cfg.Search.ChunkSize)
	attrRepo := repositories.NewAttributeRepository(db.BunDB(), cfg.Search.ChunkSize)

	searchService := search.NewService(cardRepo, attrRepo, cfg.Search.SuggestLimit)
	importService := services.NewImportService(db.BunDB(), cfg.Search.ChunkSize)
	legacyService := services.NewLegacyImportService(cfg.Legacy, importService)
	sessionService := services.NewSessionService(cfg.Auth)
	tokenService := services.NewTokenService(cfg.Auth)

	spacesService, err := services.NewSpacesService(cfg.Spaces)
	if err != nil {
		slog.Error("Failed to initialize Spaces client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Reinos Catalog API",
		ServerHeader: "Reinos-Catalog",
	})

	app.Use(recover.New())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.LoggingMiddleware())

	webApp := &handlers.WebApp{
		Config:   cfg,
		DB:       db,
		Cards:    cardRepo,
		Search:   searchService,
		Import:   importService,
		Legacy:   legacyService,
		Spaces:   spacesService,
		Sessions: sessionService,
		Tokens:   tokenService,
		Version:  version,
	}

	setupRoutes(app, webApp)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("Starting server", slog.String("address", address))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-c
	slog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	db.Close()

	logger.LogSystem("Shutdown complete")
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	auth := app.Group("/auth")
	auth.Post("/token", handlers.ClientToken(webApp))
	auth.Post("/google", handlers.GoogleLogin(webApp))
	auth.Post("/logout", handlers.Logout(webApp))

	limiter := middleware.NewRateLimiter(
		webApp.Config.RateLimit.Limit,
		time.Duration(webApp.Config.RateLimit.WindowSeconds)*time.Second,
	)

	api := app.Group("/api")
	api.Use(middleware.RateLimitMiddleware(limiter))
	api.Use(middleware.ClientAuthRequired(webApp.Tokens))
	api.Get("/cards", handlers.CardSearch(webApp))
	api.Get("/cards/:key/image", handlers.CardImage(webApp))

	admin := app.Group("/admin")
	admin.Use(middleware.AdminRequired(webApp.Sessions))
	admin.Post("/import", handlers.CatalogImport(webApp))
	admin.Post("/import/legacy", handlers.LegacyImport(webApp))
	admin.Get("/cards/suggest", handlers.CardSuggest(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "not found",
		})
	})
}
