package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/config"
	"github.com/fuscashop/ordernotify/internal/matcher"
	"github.com/fuscashop/ordernotify/internal/repository/postgres"
	"github.com/fuscashop/ordernotify/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/match-question/main.go <customer message>")
		fmt.Println("Example: go run cmd/match-question/main.go \"qual o prazo de entrega?\"")
		os.Exit(1)
	}

	text := strings.Join(os.Args[1:], " ")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	settings := service.NewSettings(cfg.QA)
	var strategy matcher.Strategy = matcher.NewTriggerPhraseMatcher(logger)
	if cfg.QA.Matcher == "similarity" {
		strategy = matcher.NewSimilarityMatcher(settings, logger)
	}
	questions := service.NewQuestionService(repos.Questions, nil, strategy, logger)

	fmt.Printf("🔍 Matching: %s\n\n", text)

	result, err := questions.Test(context.Background(), text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to match message: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Normalized: %s\n", result.Normalized)
	if !result.Matched {
		fmt.Printf("❌ No active question matched.\n")
		fmt.Printf("\nMake sure:\n")
		fmt.Printf("  1. The question is active\n")
		fmt.Printf("  2. One of its trigger phrases appears in the message\n")
		os.Exit(1)
	}

	fmt.Printf("✅ Matched!\n\n")
	fmt.Printf("Question ID: %s\n", result.Question.ID.String())
	fmt.Printf("Question: %s\n", result.Question.Text)
	fmt.Printf("Phrase: %s\n", result.Phrase)
	fmt.Printf("Confidence: %.1f\n", result.Confidence)
	fmt.Printf("\nActive responses:\n")
	for i, r := range result.Question.ActiveResponses() {
		if r.Kind.IsMedia() {
			fmt.Printf("  %d. [%s] %s\n", i+1, r.Kind, r.MediaPath)
			continue
		}
		fmt.Printf("  %d. [%s] %s\n", i+1, r.Kind, r.Content)
	}
}
