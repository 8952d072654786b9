package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpuslabs/corpusd/internal/adapters/driving/httpapi"
	"github.com/corpuslabs/corpusd/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the REST API server. The server runs until interrupted and
drains in-flight requests on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := commandContext(cmd)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	server := httpapi.NewServer(cfg, httpapi.Deps{
		Projects:  a.projects,
		Documents: a.documents,
		Ingestion: a.ingestion,
		Retrieval: a.retrieval,
		Users:     a.users,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("server started",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	case <-ctx.Done():
		return server.Shutdown()
	}
}
