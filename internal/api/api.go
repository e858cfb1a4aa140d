package api

import (
	"log"
	"strings"
	"time"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/ethanbaker/prospector/pkg/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	engine_module "github.com/ethanbaker/prospector/internal/api/modules/engine"
	health_module "github.com/ethanbaker/prospector/internal/api/modules/health"
)

func Start(cfg *utils.Config, manager *engine.Manager) {
	// Initialized configuration settings
	port := cfg.GetWithDefault("API_PORT", "8080")

	// Add app level settings/routes
	router := gin.Default()

	// Add trusted proxies
	router.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Base group '/api' for all API routes
	baseGroup := router.Group("/api")

	// Adding custom modules
	health_module.RegisterRoutes(baseGroup)

	engine_module.RegisterRoutes(baseGroup, cfg)
	engine_module.Init(manager)

	// Then after performing initial setup, start the server
	if err := router.Run(":" + port); err != nil {
		log.Fatal("[API-MAIN]: Failed to start server: ", err)
	}
}
