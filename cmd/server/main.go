package main

import (
	"context"
	"log"
	"os"

	"lexguard-backend/completion"
	"lexguard-backend/handlers"
	"lexguard-backend/metrics"
	"lexguard-backend/policy"
	"lexguard-backend/repository"
	"lexguard-backend/service"
	"lexguard-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize storage for archived knowledge-base documents
	documentStorage, err := storage.NewStorageFromEnv()
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	logger.Info("Storage initialized")

	// Initialize repositories
	knowledgeRepo := repository.NewKnowledgeRepository()

	// Load the validation policy
	pol, err := loadPolicy()
	if err != nil {
		logger.Fatal("Failed to load policy", zap.Error(err))
	}

	// Initialize the completion client
	completer, err := completion.NewFromEnv(logger)
	if err != nil {
		logger.Fatal("Failed to initialize completion client", zap.Error(err))
	}

	// Verify Gemini credentials at startup rather than on the first analysis
	if os.Getenv("COMPLETION_PROVIDER") != string(completion.ProviderOpenAI) {
		_, err = initGemini()
		if err != nil {
			logger.Fatal("Failed to initialize Gemini", zap.Error(err))
		}
	}

	analysisMetrics := metrics.New()

	// Initialize services
	analysisService := service.NewAnalysisService(
		service.AnalysisWithCompleter(completer),
		service.AnalysisWithPolicy(pol),
		service.AnalysisWithLogger(logger),
		service.AnalysisWithMetrics(analysisMetrics),
	)

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(analysisService, knowledgeRepo, logger)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeRepo, documentStorage, logger)

	// Setup Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api")
	{
		// Analysis endpoints
		api.POST("/analyses", analysisHandler.CreateAnalysis)

		// Knowledge-base endpoints
		api.POST("/knowledge/upload", knowledgeHandler.Upload)
		api.GET("/knowledge", knowledgeHandler.ListKnowledge)
		api.GET("/knowledge/:id", knowledgeHandler.GetKnowledge)
		api.GET("/knowledge/:id/document", knowledgeHandler.DownloadDocument)
		api.DELETE("/knowledge/:id", knowledgeHandler.DeleteKnowledge)
	}

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

func loadPolicy() (*policy.Policy, error) {
	path := os.Getenv("POLICY_FILE")
	if path == "" {
		return policy.Default(), nil
	}
	return policy.Load(path)
}

func initGemini() (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
