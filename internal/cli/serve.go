package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/EmerJK/emertxthn/config"
	"github.com/EmerJK/emertxthn/internal/adapter/store"
	"github.com/EmerJK/emertxthn/internal/server"
)

var serveAddress string

// settingsDebounce collapses bursts of settings writes into one disk write.
const settingsDebounce = time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extension API to a chat host",
	Long: `Serve the augmentation extension over HTTP. The chat host creates a
session, calls the augment endpoint before each generation turn, and posts
received messages for sanitization.

Settings are persisted per directory in .txtaug/settings.db; the config file
seeds them on first run.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	rootDir := GetRootDir()

	if err := config.EnsureDataDir(rootDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.NewSettingsStore(config.SettingsDBPath(rootDir), settingsDebounce)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}
	defer st.Close()
	st.SetDefaults(cfg.Augment)

	address := cfg.Server.Address
	if serveAddress != "" {
		address = serveAddress
	}

	srv := server.New(cfg, st, log)
	httpServer := &http.Server{
		Addr:    address,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("listening on %s", address)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	stop()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
