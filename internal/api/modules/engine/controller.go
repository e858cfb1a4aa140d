package engine_module

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus handles GET requests for the scheduler state
func GetStatus(c *gin.Context) {
	if manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not initialized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      manager.Status(),
		"last_report": manager.LastReport(),
	})
}

// StartEngine handles POST requests to start the periodic scheduler
func StartEngine(c *gin.Context) {
	if manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not initialized"})
		return
	}

	manager.Start()
	c.JSON(http.StatusOK, gin.H{"message": "Engine started", "status": manager.Status()})
}

// StopEngine handles POST requests to stop the periodic scheduler
func StopEngine(c *gin.Context) {
	if manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not initialized"})
		return
	}

	manager.Stop()
	c.JSON(http.StatusOK, gin.H{"message": "Engine stopped", "status": manager.Status()})
}

// RunTick handles POST requests to run one orchestration pass immediately.
// An overlapping tick request is reported as skipped.
func RunTick(c *gin.Context) {
	if manager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "engine not initialized"})
		return
	}

	report := manager.RunOnce(c.Request.Context())
	if report == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a tick is already in progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tick completed", "report": report})
}
