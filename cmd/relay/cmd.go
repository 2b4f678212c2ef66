package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/GregMSThompson/gift-budget/internal/bootstrap"
	"github.com/GregMSThompson/gift-budget/internal/config"
	"github.com/GregMSThompson/gift-budget/internal/relay"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.NewRelay()
	exitOnError("config failed", err, slog.Default())
	bs, err := bootstrap.RunRelay(cfg)
	exitOnError("bootstrap failed", err, bs.Log)

	if bs.APIKey == "" {
		bs.Log.Warn("no upstream key configured, forwarding caller credentials")
	}

	server := relay.New(bs.Log, relay.Config{
		UpstreamURL:     cfg.UpstreamURL,
		APIKey:          bs.APIKey,
		Timeout:         cfg.Timeout,
		ValidateTimeout: cfg.ValidateTimeout,
	})
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		bs.Log.Info("relay listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitOnError("server start failed", err, bs.Log)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		bs.Log.Error("http shutdown failed", "error", err)
	}
}
