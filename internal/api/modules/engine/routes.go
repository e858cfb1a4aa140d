package engine_module

import (
	"net/http"

	"github.com/ethanbaker/prospector/pkg/engine"
	"github.com/ethanbaker/prospector/pkg/utils"
	"github.com/gin-gonic/gin"
)

// Package-level manager shared by all handlers
var manager *engine.Manager

// Init wires the running engine manager into the module
func Init(m *engine.Manager) {
	manager = m
}

// RegisterRoutes registers the routes for the engine module
func RegisterRoutes(g *gin.RouterGroup, cfg *utils.Config) {
	group := g.Group("/engine")

	// Protect the control surface with an API key when one is configured
	if apiKey := cfg.Get("API_KEY"); apiKey != "" {
		group.Use(apiKeyHandler(apiKey))
	}

	group.GET("/status", GetStatus)   // Get scheduler state and last tick report
	group.POST("/start", StartEngine) // Start the periodic scheduler
	group.POST("/stop", StopEngine)   // Stop the periodic scheduler
	group.POST("/tick", RunTick)      // Trigger one pass immediately
}

// apiKeyHandler rejects requests without the expected X-API-Key header
func apiKeyHandler(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("X-API-Key") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Next()
	}
}
