package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"lexguard-backend/completion"
	"lexguard-backend/models"
	"lexguard-backend/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables: %v", err)
	}

	if len(os.Args) < 3 {
		log.Fatal("Usage: run-analysis <knowledge-base.json> <query> [target-node-id]")
	}
	kbPath := os.Args[1]
	query := os.Args[2]
	targetNodeID := ""
	if len(os.Args) > 3 {
		targetNodeID = os.Args[3]
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	raw, err := os.ReadFile(kbPath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", kbPath, err)
	}
	kb, err := models.ParseKnowledgeBase(raw)
	if err != nil {
		log.Fatalf("Invalid knowledge base: %v", err)
	}

	completer, err := completion.NewFromEnv(logger)
	if err != nil {
		log.Fatalf("Failed to initialize completion client: %v", err)
	}

	analysisService := service.NewAnalysisService(
		service.AnalysisWithCompleter(completer),
		service.AnalysisWithLogger(logger),
	)

	res, err := analysisService.Run(context.Background(), service.AnalyzeRequest{
		Query:         query,
		KnowledgeBase: kb,
		TargetNodeID:  targetNodeID,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	icon := "✅"
	switch res.Status {
	case models.AnalysisFlagged:
		icon = "⚠️"
	case models.AnalysisRejected:
		icon = "❌"
	}

	fmt.Printf("%s Analysis %s\n", icon, res.Status)
	fmt.Printf("   Target: %s (%s)\n", res.Context.TargetNode.Title, strings.Join(res.Context.Path, "/"))
	fmt.Printf("   Authorities: %d\n", len(res.Context.Items))
	fmt.Printf("   Iterations: %d\n", res.Iterations)
	fmt.Printf("   Report: %s\n", res.Report.Status)
	for _, check := range res.Report.Checks {
		line := fmt.Sprintf("     [%s] %s", check.Status, check.Category)
		if check.Detail != "" {
			line += ": " + check.Detail
		}
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println(res.GeneratedText)
}
