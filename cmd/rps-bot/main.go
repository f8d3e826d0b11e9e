package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"go.uber.org/zap"

	"github.com/park285/Cheese-RPS-bot/internal/adapter/rpspresenter"
	appcfg "github.com/park285/Cheese-RPS-bot/internal/config"
	"github.com/park285/Cheese-RPS-bot/internal/irisfast"
	"github.com/park285/Cheese-RPS-bot/internal/msgcat"
	"github.com/park285/Cheese-RPS-bot/internal/obslog"
	"github.com/park285/Cheese-RPS-bot/internal/rpsbuilder"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.RequireBot(); err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger, err := obslog.Init(cfg.Log)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	headers := irisHeaders(cfg)
	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))

	deps, err := rpsbuilder.New(cfg, quartz.NewReal(), logger)
	if err != nil {
		logger.Fatal("rps_init_failed", zap.Error(err))
	}
	defer deps.Close()

	cat, err := msgcat.New(cfg.MsgLocale, cfg.MsgOverrideDir)
	if err != nil {
		logger.Fatal("msgcat_init_failed", zap.Error(err))
	}
	presenter := rpspresenter.NewPresenter(
		func(room, message string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return client.SendMessage(ctx, room, message)
		},
		rpspresenter.NewFormatter(prefixProvider{prefix: cfg.BotPrefix}, cat),
	)

	b := &bot{
		prefix:     cfg.BotPrefix,
		sessions:   deps.Session,
		difficulty: deps.Round.Difficulty(),
		presenter:  presenter,
		logger:     logger.Named("bot"),
	}

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, logger.Named("iris_ws"))
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("iris_ws_state", zap.String("state", string(state)))
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		// off the websocket read loop
		go b.handle(context.Background(), msg)
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		logger.Fatal("iris_ws_connect_failed", zap.Error(err))
	}
	cancel()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	_ = ws.Close(closeCtx)
}

func irisHeaders(cfg *appcfg.AppConfig) irisfast.HeaderProvider {
	return func() map[string]string {
		h := map[string]string{}
		if cfg.XUserID != "" {
			h["X-User-Id"] = cfg.XUserID
		}
		if cfg.XUserEmail != "" {
			h["X-User-Email"] = cfg.XUserEmail
		}
		if cfg.XSessionID != "" {
			h["X-Session-Id"] = cfg.XSessionID
		}
		return h
	}
}

type prefixProvider struct{ prefix string }

func (p prefixProvider) Prefix() string { return p.prefix }
