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
	"github.com/GregMSThompson/gift-budget/internal/handlers"
	"github.com/GregMSThompson/gift-budget/internal/middleware"
	"github.com/GregMSThompson/gift-budget/internal/response"
	"github.com/GregMSThompson/gift-budget/internal/router"
	"github.com/GregMSThompson/gift-budget/internal/services"
	"github.com/GregMSThompson/gift-budget/internal/store"
	"github.com/GregMSThompson/gift-budget/internal/suggest"
)

func exitOnError(message string, err error, log *slog.Logger) {
	if err != nil {
		log.Error(message, "error", err)
		os.Exit(1)
	}
}

func main() {
	// bootstrap
	cfg, err := config.New()
	exitOnError("config failed", err, slog.Default())
	bs, err := bootstrap.Run(cfg)
	exitOnError("bootstrap failed", err, bs.Log)
	defer bs.Close()

	// stores
	pstore := store.NewProfileStore(bs.Firestore)
	rstore := store.NewRecipientStore(bs.Firestore)
	cstore := store.NewChatStore(bs.Firestore)

	// services
	sessions := services.NewSessionManager(bs.Log, pstore, rstore, cstore, cfg.Sync())
	suggester := suggest.NewClient(bs.Completer, cfg.LLMTemperature, cfg.LLMTimeout)
	userv := services.NewUserService(bs.Firebase)
	bserv := services.NewBudgetService(sessions)
	sserv := services.NewSuggestionService(sessions, suggester, cstore, cfg.ChatTTL)

	// response handler
	rh := response.New(bs.Log)

	// dependancies
	deps := new(handlers.Deps)
	deps.Log = bs.Log
	deps.ResponseHandler = rh
	deps.UserSvc = userv
	deps.BudgetSvc = bserv
	deps.SuggestionSvc = sserv
	deps.Sessions = sessions

	// router
	r := router.NewRouter(deps, middleware.NewMiddleware(bs.Firebase))
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweep(ctx, bs.Log, sessions, cfg.SweepInterval, cfg.SessionIdle)

	go func() {
		bs.Log.Info("api listening", "addr", srv.Addr, "llm_provider", cfg.LLMProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			exitOnError("server start failed", err, bs.Log)
		}
	}()

	<-ctx.Done()
	bs.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		bs.Log.Error("http shutdown failed", "error", err)
	}
	if err := sessions.Shutdown(shutdownCtx); err != nil {
		bs.Log.Error("sessions closed with unsynced writes", "error", err)
	}
}

func sweep(ctx context.Context, log *slog.Logger, sessions *services.SessionManager, every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(ctx, idle); n > 0 {
				log.Info("closed idle sessions", "count", n)
			}
		}
	}
}
