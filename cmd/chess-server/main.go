package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-SwapChess/internal/ai"
	appcfg "github.com/park285/Cheese-SwapChess/internal/config"
	"github.com/park285/Cheese-SwapChess/internal/lobby"
	"github.com/park285/Cheese-SwapChess/internal/match"
	"github.com/park285/Cheese-SwapChess/internal/match/store"
	"github.com/park285/Cheese-SwapChess/internal/msgcat"
	"github.com/park285/Cheese-SwapChess/internal/notify"
	"github.com/park285/Cheese-SwapChess/internal/obslog"
	"github.com/park285/Cheese-SwapChess/internal/render"
	"github.com/park285/Cheese-SwapChess/internal/results"
	"github.com/park285/Cheese-SwapChess/internal/transport"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("message catalog init error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Open(ctx, cfg.StoreBackend, cfg.DataDir, cfg.RedisURL)
	cancel()
	if err != nil {
		logger.Fatal("store init error", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}

	// Finished games go to Postgres when configured, memory otherwise.
	var repo results.Repository
	if cfg.DatabaseURL != "" {
		repo, err = results.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("results repository init error", zap.Error(err))
		}
	} else {
		repo = results.NewMemory()
	}

	opts := []match.Option{
		match.WithArchive(repo),
		match.WithMaxGames(cfg.MaxGames),
		match.WithLogger(obslog.Named("match")),
	}
	if cfg.NotifyURL != "" {
		opts = append(opts, match.WithNotifier(notify.NewWebhook(cfg.NotifyURL, notify.WithTimeout(cfg.NotifyTimeout))))
	}
	reg := match.NewRegistry(st, opts...)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := reg.LoadAll(ctx); err != nil {
		logger.Error("match restore error", zap.Error(err))
	}
	cancel()

	lb := lobby.New(reg, cfg.TokenTTL, cfg.AdminUsers, obslog.Named("lobby"))
	srv := transport.New(transport.Deps{
		Registry:               reg,
		Lobby:                  lb,
		Catalog:                cat,
		Renderer:               render.NewPNGRenderer(),
		Results:                repo,
		AI:                     ai.NewGreedy(uint64(time.Now().UnixNano())),
		Logger:                 obslog.Named("transport"),
		AllowSpectatorsDefault: cfg.AllowSpectatorsDefault,
	})

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http_listen", zap.String("addr", cfg.ListenAddr), zap.String("store", cfg.StoreBackend))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	// Wait for termination signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown")

	srv.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", zap.Error(err))
	}
	lb.Close()
	if err := reg.Close(); err != nil {
		logger.Warn("registry close error", zap.Error(err))
	}
	_ = repo.Close()
}
