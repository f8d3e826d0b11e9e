package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-RPS-bot/internal/rps"
)

const (
	SourceModel    = "model"
	SourceFallback = "fallback"

	defaultTimeout = 8 * time.Second
)

type Config struct {
	Timeout time.Duration
	Vision  bool
}

// Opponent asks the provider for a prediction and falls back to the
// frequency predictor on any failure.
type Opponent struct {
	provider Provider
	cfg      Config
	logger   *zap.Logger
}

type Result struct {
	Prediction rps.Prediction
	Source     string
	Provider   string
	Latency    time.Duration
}

// NewOpponent accepts a nil provider; every round then uses the fallback.
func NewOpponent(provider Provider, cfg Config, logger *zap.Logger) *Opponent {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opponent{provider: provider, cfg: cfg, logger: logger}
}

func (o *Opponent) ProviderName() string {
	if o.provider == nil {
		return "none"
	}
	return o.provider.Name()
}

func (o *Opponent) ModelName() string {
	if o.provider == nil {
		return ""
	}
	return o.provider.Model()
}

func (o *Opponent) Vision() bool { return o.cfg.Vision }

// Predict always returns a usable prediction.
func (o *Opponent) Predict(ctx context.Context, rc RoundContext) Result {
	start := time.Now()
	if o.provider == nil {
		return o.fallback(rc, "disabled", ErrProviderDisabled, start)
	}

	pred, err := o.ask(ctx, rc)
	if err != nil {
		reason := "provider_error"
		switch {
		case ctx.Err() != nil:
			reason = "canceled"
		case errors.Is(err, context.DeadlineExceeded):
			reason = "timeout"
		}
		return o.fallback(rc, reason, err, start)
	}
	return Result{Prediction: pred, Source: SourceModel, Provider: o.provider.Name(), Latency: time.Since(start)}
}

func (o *Opponent) ask(ctx context.Context, rc RoundContext) (pred rps.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	text, err := o.provider.Generate(callCtx, Request{
		System: SystemPrompt(o.cfg.Vision),
		User:   UserPrompt(rc),
		Schema: PredictionSchema(o.cfg.Vision),
	})
	if err != nil {
		// providers like fasthttp do not wrap the ctx error
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			return rps.Prediction{}, fmt.Errorf("%w after %s: %w", context.DeadlineExceeded, o.cfg.Timeout, err)
		}
		return rps.Prediction{}, err
	}
	return Decode(text, o.cfg.Vision)
}

func (o *Opponent) fallback(rc RoundContext, reason string, err error, start time.Time) Result {
	if reason == "disabled" {
		o.logger.Debug("oracle_fallback", zap.String("reason", reason))
	} else {
		o.logger.Warn("oracle_fallback",
			zap.String("reason", reason),
			zap.String("provider", o.ProviderName()),
			zap.Error(err),
		)
	}
	return Result{
		Prediction: rps.Fallback(rc.History, o.cfg.Vision),
		Source:     SourceFallback,
		Provider:   o.ProviderName(),
		Latency:    time.Since(start),
	}
}
