package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	appcfg "github.com/park285/Cheese-RPS-bot/internal/config"
	"github.com/park285/Cheese-RPS-bot/internal/httpapi"
	"github.com/park285/Cheese-RPS-bot/internal/obslog"
	"github.com/park285/Cheese-RPS-bot/internal/rpsbuilder"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger, err := obslog.Init(cfg.Log)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("rps_server_exit", zap.Error(err))
	}
}

func run(cfg *appcfg.AppConfig, logger *zap.Logger) error {
	engine, err := rpsbuilder.NewEngine(cfg, logger)
	if err != nil {
		return fmt.Errorf("engine init: %w", err)
	}

	app := httpapi.New(engine.Round, httpapi.Options{
		BodyLimit:    cfg.BodyLimitBytes,
		AllowOrigins: cfg.CORSAllowOrigin,
		StaticDir:    cfg.StaticDir,
		AIProvider:   engine.Opponent.ProviderName(),
		Model:        engine.Opponent.ModelName(),
	}, logger.Named("http"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("rps_server_listen", zap.String("addr", addr))
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("rps_server_shutdown")
		return app.ShutdownWithTimeout(10 * time.Second)
	})
	return g.Wait()
}
