package main

import (
	"SmartMusic/internal/cli/bootstrap"
	"SmartMusic/internal/config"
	"SmartMusic/internal/handlers"
	"SmartMusic/internal/middleware"
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env, done, err := bootstrap.OpenLibrary(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to open library", "error", err)
	}
	defer done()

	// при старте убираем блобы, на которые не ссылается ни одна песня
	if removed, err := env.Library.ReconcileBlobs(ctx); err != nil {
		sugar.Warnw("blob reconcile failed", "error", err)
	} else if len(removed) > 0 {
		sugar.Infow("orphaned blobs removed", "count", len(removed))
	}

	h := handlers.NewHandler(env.Library, env.Resolver, sugar, cfg)

	sugar.Infow("Config",
		"MediaAddr", cfg.MediaAddr,
		"DatabaseDSN", cfg.DatabaseDSN,
		"DocKey", cfg.DocKey,
	)

	if err := handlers.Serve(ctx, cfg.MediaAddr, h, sugar); err != nil {
		sugar.Errorw("Server failed", "error", err)
	}
}
