package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pliu/chatty-social/internal/config"
	"github.com/pliu/chatty-social/internal/handlers"
	"github.com/pliu/chatty-social/internal/logger"
	"github.com/pliu/chatty-social/internal/store/sqlstore"
	"github.com/pliu/chatty-social/internal/ws"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return err
	}
	defer func() { _ = logger.Log.Sync() }()

	store, err := sqlstore.New(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}

	hub := ws.NewHub(store, cfg)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.NewRouter(store, hub),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Log.Info("Running server",
			zap.String("address", cfg.Addr),
			zap.String("driver", cfg.DBDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case runErr = <-serverErr:
	}

	return multierr.Append(runErr, shutdown(server, hub, store, cfg.ShutdownTimeout))
}

// shutdown stops accepting requests, closes live sessions and then the store.
// Hijacked WebSocket connections are not tracked by http.Server, so the hub
// drains them separately.
func shutdown(server *http.Server, hub *ws.Hub, store *sqlstore.SQLStore, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var err error
	err = multierr.Append(err, server.Shutdown(ctx))
	err = multierr.Append(err, hub.Shutdown(timeout))
	err = multierr.Append(err, store.Close())

	if err != nil {
		logger.Log.Error("shutdown finished with errors", zap.Error(err))
	} else {
		logger.Log.Info("server stopped")
	}
	return err
}
