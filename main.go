package main

import (
	"log"
	"os"

	"lexguard-backend/completion"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Minimal bootstrap: verifies completion credentials and serves the health
// endpoint. The full API server lives in cmd/server.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if _, err := completion.NewFromEnv(logger); err != nil {
		logger.Fatal("Failed to initialize completion client", zap.Error(err))
	}

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("Server starting", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
