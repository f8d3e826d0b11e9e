package rpsbuilder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coder/quartz"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/park285/Cheese-RPS-bot/internal/config"
	"github.com/park285/Cheese-RPS-bot/internal/oracle"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/internal/service/cache"
	"github.com/park285/Cheese-RPS-bot/internal/service/round"
	"github.com/park285/Cheese-RPS-bot/internal/service/session"
)

// Engine is the stateless part: provider, opponent and round orchestrator.
type Engine struct {
	Opponent *oracle.Opponent
	Round    *round.Service
}

// Deps adds the session layer used by the chat bot.
type Deps struct {
	*Engine
	Session *session.Service
	Cache   *cache.CacheService
	Repo    session.Repository

	db *sql.DB
}

// NewProvider picks the LLM provider from config. "none" returns (nil, nil).
func NewProvider(cfg *config.AppConfig) (oracle.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		p, err := oracle.NewGemini(oracle.GeminiConfig{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini: %w", err)
		}
		return p, nil
	case config.ProviderOpenAI:
		p, err := oracle.NewOpenAI(oracle.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai: %w", err)
		}
		return p, nil
	case config.ProviderNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
}

// NewEngine wires provider → opponent → round service.
func NewEngine(cfg *config.AppConfig, logger *zap.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.RequireLLM(); err != nil {
		return nil, err
	}
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}

	opponent := oracle.NewOpponent(provider, oracle.Config{Timeout: cfg.LLMTimeout, Vision: cfg.LLMVision}, logger.Named("oracle"))
	roundSvc, err := round.NewService(opponent, rps.NewSource(cfg.RandomSeed), round.Config{
		Difficulty:         cfg.Difficulty,
		DefaultPersonality: cfg.DefaultPersonality,
		RequirePersonality: cfg.RequirePersonality,
	}, logger.Named("round"))
	if err != nil {
		return nil, err
	}

	logger.Info("rps_engine_ready",
		zap.String("provider", opponent.ProviderName()),
		zap.String("model", opponent.ModelName()),
		zap.Bool("vision", cfg.LLMVision),
	)
	return &Engine{Opponent: opponent, Round: roundSvc}, nil
}

// New builds the full bot dependency graph. Redis is required; without
// DATABASE_URL the round log and profiles stay in memory.
func New(cfg *config.AppConfig, clock quartz.Clock, logger *zap.Logger) (*Deps, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	engine, err := NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL is required for rps sessions")
	}
	cacheSvc, err := cache.NewFromURL(cfg.RedisURL, logger.Named("cache"))
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	deps := &Deps{Engine: engine, Cache: cacheSvc}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cacheSvc.Ping(ctx); err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := openPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.db = db
		deps.Repo = session.NewRepository(db)
	} else {
		logger.Warn("rps_repository_memory", zap.String("reason", "DATABASE_URL not set"))
		deps.Repo = session.NewMemoryRepository()
	}

	svc, err := session.NewService(engine.Round, cacheSvc, deps.Repo, clock, session.Config{
		SessionTTL:   cfg.SessionTTL,
		HistoryLimit: cfg.HistoryLimit,
		DrawPolicy:   cfg.DrawPolicy,
		AllowedRooms: append([]string(nil), cfg.AllowedRooms...),
	}, logger.Named("session"))
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Session = svc
	return deps, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := session.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	return errors.Join(errs...)
}
