package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lexikid/lexikid/internal/cli"
	"github.com/lexikid/lexikid/internal/config"
	"github.com/lexikid/lexikid/internal/gateway"
	"github.com/lexikid/lexikid/internal/gateway/openai"
	"github.com/lexikid/lexikid/internal/history"
	"github.com/lexikid/lexikid/internal/scenario"
)

func newPracticeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "practice",
		Short: "Practice flashcards and quizzes in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("config.Load() > %w", err)
			}
			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable is required")
			}

			catalog, err := scenario.Load()
			if err != nil {
				return fmt.Errorf("scenario.Load() > %w", err)
			}

			openaiClient := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, gateway.DefaultMaxRetryAttempts)
			defer func() {
				_ = openaiClient.Close()
			}()

			var historyRepo *history.Repository
			if cfg.History.Database != "" {
				historyRepo, err = history.NewRepository(cfg.History.Database)
				if err != nil {
					return fmt.Errorf("history.NewRepository(%s) > %w", cfg.History.Database, err)
				}
				defer func() {
					_ = historyRepo.Close()
				}()
			}

			practiceCLI := cli.NewPracticeCLI(catalog, openaiClient, cli.PracticeOptions{
				WordCount:   cfg.Lesson.WordCount,
				HistoryRepo: historyRepo,
				Logger:      slog.Default(),
			})

			fmt.Println("Welcome! Let's practice some English words.")
			return practiceCLI.Run(context.Background())
		},
	}
}
