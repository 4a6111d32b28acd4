package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/fuscashop/ordernotify/internal/config"
	"github.com/fuscashop/ordernotify/internal/matcher"
	"github.com/fuscashop/ordernotify/internal/media"
	"github.com/fuscashop/ordernotify/internal/repository/postgres"
	"github.com/fuscashop/ordernotify/internal/service"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/create-question/main.go <question> <text-answer> [trigger-phrase...]")
		fmt.Println("Example: go run cmd/create-question/main.go \"Qual o prazo de entrega?\" \"De 7 a 12 dias úteis.\" \"prazo de entrega\" \"quando chega\"")
		os.Exit(1)
	}

	questionText := os.Args[1]
	answer := os.Args[2]
	triggers := os.Args[3:]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	library, err := media.NewLibrary(cfg.MediaDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open media library: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)
	questions := service.NewQuestionService(repos.Questions, library, matcher.NewTriggerPhraseMatcher(logger), logger)

	q, err := questions.Create(context.Background(), service.QuestionInput{
		Text:           questionText,
		TriggerPhrases: triggers,
		Responses:      []service.ResponseInput{{Kind: "text", Content: answer}},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create question: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Question created successfully!\n\n")
	fmt.Printf("Question ID: %s\n", q.ID.String())
	fmt.Printf("Question: %s\n", q.Text)
	fmt.Printf("Trigger phrases: %s\n", strings.Join(q.TriggerPhrases, " | "))
	fmt.Printf("\nAdd media answers through PUT /v1/admin/qa/questions/%s\n", q.ID.String())
}
