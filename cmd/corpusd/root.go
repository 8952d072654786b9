package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/corpuslabs/corpusd/internal/config"
	"github.com/corpuslabs/corpusd/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "corpusd",
	Short: "Multi-tenant knowledge retrieval engine",
	Long: `corpusd ingests documents into per-project knowledge bases and
answers natural-language queries over them with vector search, hybrid
fusion, LLM re-ranking and answer synthesis.`,
	SilenceUsage: true,
}

// loadConfig reads the environment configuration and initialises the
// global logger from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("initialising logger: %w", err)
	}
	return cfg, nil
}

// commandContext returns the cobra context, falling back to Background
// for direct test invocations.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
