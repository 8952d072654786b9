package main

import (
	"github.com/spf13/cobra"

	"github.com/corpuslabs/corpusd/internal/adapters/driven/storage/postgres"
	"github.com/corpuslabs/corpusd/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Connect to Postgres and apply any pending schema migrations, then
exit. The serve command also migrates on startup; this command exists
for deploy pipelines that migrate before rolling instances.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := postgres.NewStore(commandContext(cmd), cfg.Postgres.DSN(), cfg.LLM.EmbeddingDimensions)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("migrations applied")
	return nil
}
