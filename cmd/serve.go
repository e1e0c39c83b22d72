package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conneroisu/vedit/internal/config"
	"github.com/conneroisu/vedit/internal/server"
	"github.com/conneroisu/vedit/internal/storage"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the visual editor server",
	Long: `Start the visual editor server. The editor shell, the preview of each
project file, the edit API and the websocket relay between the preview
and editor clients are all served from one address.

Examples:
  vedit serve                      # Serve on localhost:7331
  vedit serve --port 8080 --open   # Pick a port and open a browser
  VEDIT_STORAGE_DRIVER=disk VEDIT_STORAGE_ROOT=./projects vedit serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	AddStandardFlags(serveCmd, "server")
	serveCmd.Flags().String("storage", "", "Storage driver (sqlite, disk, memory)")
	serveCmd.Flags().String("root", "", "Project root for the disk store")
	serveCmd.Flags().Bool("ai", false, "Use the AI editor by default instead of deterministic patches")

	cobra.CheckErr(SetViperBindings(serveCmd, map[string]string{
		"port":    "server.port",
		"host":    "server.host",
		"open":    "server.open",
		"storage": "storage.driver",
		"root":    "storage.root",
	}))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if useAI, _ := cmd.Flags().GetBool("ai"); useAI {
		cfg.Editor.Deterministic = false
	}

	baseLogger, closeLog, err := cfg.OpenLogger()
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closeLog()
	logger := baseLogger.WithComponent("cli")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, err := storage.Open(ctx, cfg.StorageOptions(), logger)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer store.Close()

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		logger.Info(ctx, "Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error(ctx, shutdownErr, "Error during server shutdown")
		}
		cancel()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Starting vedit at http://%s\n", cfg.Addr())

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
