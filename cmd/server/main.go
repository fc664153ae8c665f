// Package main is the entry point for the API server.
package main

import (
	"context"
	"log"
	"time"

	"bastion/internal/config"
	"bastion/internal/logging"
	"bastion/internal/repositories"
	"bastion/internal/routes"
	"bastion/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	slogger := logging.NewLogger(
		config.GetEnv("LOG_LEVEL", "info"),
		"bastion-api",
		config.GetEnv("APP_ENV", "development"),
	)

	app := fiber.New(fiber.Config{
		AppName:      "bastion-api",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return response.Error(c, code, err.Error())
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        config.GetIntEnv("RATE_LIMIT_MAX", 300),
		Expiration: time.Minute,
	}))

	var cache repositories.CacheRepository
	if repositories.Redis != nil {
		cache = repositories.NewRedisCacheRepository(repositories.Redis)
	} else {
		slogger.Warn("REDIS_HOST not set, using in-process risk cache")
		cache = repositories.NewMemoryCacheRepository()
	}

	riskService := routes.SetupRoutes(app, routes.Deps{
		DB:     repositories.DB,
		Cache:  cache,
		Logger: slogger,
	})

	// Warm the risk cache in the background so startup is not blocked.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := riskService.WarmUp(ctx); err != nil {
			slogger.Warn("risk cache warmup failed", "error", err)
		}
	}()

	port := config.GetEnv("PORT", "8000")
	slogger.Info("starting server", "port", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
