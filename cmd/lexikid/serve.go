package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/lexikid/lexikid/internal/config"
	"github.com/lexikid/lexikid/internal/gateway"
	"github.com/lexikid/lexikid/internal/gateway/openai"
	"github.com/lexikid/lexikid/internal/history"
	"github.com/lexikid/lexikid/internal/scenario"
	"github.com/lexikid/lexikid/internal/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for the web app",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("config.Load() > %w", err)
			}

			catalog, err := scenario.Load()
			if err != nil {
				return fmt.Errorf("scenario.Load() > %w", err)
			}

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

			apiServer := server.New(server.Options{
				Catalog:     catalog,
				HistoryRepo: historyRepo,
				NewGateway: func(apiKey string) gateway.Client {
					return openai.NewClient(apiKey, cfg.OpenAI.Model, gateway.DefaultMaxRetryAttempts)
				},
				DefaultAPIKey: cfg.OpenAI.APIKey,
				WordCount:     cfg.Lesson.WordCount,
				Logger:        slog.Default(),
			})

			handler := server.CORSMiddleware(
				cfg.Server.AllowedOrigin,
				h2c.NewHandler(apiServer.Handler(), &http2.Server{}),
			)

			slog.Info("starting server", "address", cfg.Server.Address)
			return http.ListenAndServe(cfg.Server.Address, handler)
		},
	}
}
