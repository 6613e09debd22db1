// serve.go starts the HTTP server and handles graceful shutdown.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/coderelay-dev/coderelay/internal/config"
	"github.com/coderelay-dev/coderelay/internal/log"
	"github.com/coderelay-dev/coderelay/internal/server"
	"github.com/coderelay-dev/coderelay/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coderelay HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func serve(cfg config.Config) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newLogger(cfg config.Config) (*log.Logger, error) {
	if cfg.LogPath == "" {
		return log.New(os.Stderr), nil
	}
	return log.NewFile(cfg.LogPath)
}

func newStore(cfg config.Config) (session.Store, error) {
	switch cfg.Store.Backend {
	case "", "sqlite":
		return session.NewSQLiteStore(cfg.Store.SQLitePath)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return session.NewRedisStore(client), nil
	case "memory":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
