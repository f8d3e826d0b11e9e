package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/park285/Cheese-RPS-bot/internal/obslog"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

type AppConfig struct {
	// HTTP server
	Port            int
	StaticDir       string
	BodyLimitBytes  int
	CORSAllowOrigin string

	// LLM
	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	LLMTimeout    time.Duration
	LLMVision     bool

	// Engine
	Difficulty         rps.DifficultyPolicy
	DrawPolicy         rps.DrawPolicy
	RequirePersonality bool
	DefaultPersonality rps.Personality
	RandomSeed         int64

	// Storage
	RedisURL     string
	DatabaseURL  string
	SessionTTL   time.Duration
	HistoryLimit int

	// Iris bot
	IrisBaseURL    string
	IrisWSURL      string
	BotPrefix      string
	XUserID        string
	XUserEmail     string
	XSessionID     string
	AllowedRooms   []string
	MsgLocale      string
	MsgOverrideDir string

	Log obslog.Options
}

// Load reads .env when present, then the environment. Per-binary requirements are checked by the Require* methods.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads only the process environment.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:               8080,
		BodyLimitBytes:     10 * 1024,
		CORSAllowOrigin:    "*",
		GeminiModel:        "gemini-1.5-flash",
		LLMTimeout:         8 * time.Second,
		Difficulty:         rps.DefaultDifficulty(),
		DrawPolicy:         rps.DrawKeepStreaks,
		DefaultPersonality: rps.Friendly,
		SessionTTL:         24 * time.Hour,
		HistoryLimit:       40,
		MsgLocale:          "ko",
		Log: obslog.Options{
			Level:   "info",
			Format:  "legacy",
			Console: true,
		},
	}

	setInt(&cfg.Port, "PORT")
	cfg.StaticDir = env("STATIC_DIR")
	setInt(&cfg.BodyLimitBytes, "BODY_LIMIT_BYTES")
	if v := env("CORS_ALLOW_ORIGINS"); v != "" {
		cfg.CORSAllowOrigin = v
	}

	// LLM
	cfg.GeminiAPIKey = firstNonEmpty(env("GEMINI_API_KEY"), env("API_KEY"))
	if v := env("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	cfg.GeminiBaseURL = env("GEMINI_BASE_URL")
	cfg.OpenAIAPIKey = firstNonEmpty(env("OPENAI_API_KEY"), env("OPENROUTER_API_KEY"))
	cfg.OpenAIBaseURL = env("OPENAI_BASE_URL")
	cfg.OpenAIModel = env("OPENAI_MODEL")
	if n, ok := positiveInt("LLM_TIMEOUT"); ok {
		cfg.LLMTimeout = time.Duration(n) * time.Second
	}
	setBool(&cfg.LLMVision, "LLM_VISION")

	provider := strings.ToLower(env("LLM_PROVIDER"))
	switch provider {
	case ProviderGemini, ProviderOpenAI, ProviderNone:
		cfg.LLMProvider = provider
	case "":
		switch {
		case cfg.GeminiAPIKey != "":
			cfg.LLMProvider = ProviderGemini
		case cfg.OpenAIAPIKey != "":
			cfg.LLMProvider = ProviderOpenAI
		default:
			cfg.LLMProvider = ProviderNone
		}
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be gemini, openai or none: %q", provider)
	}

	// Engine tuning
	setInt(&cfg.Difficulty.HardWinStreak, "RPS_HARD_WIN_STREAK")
	setInt(&cfg.Difficulty.EasyLoseStreak, "RPS_EASY_LOSE_STREAK")
	setFloat(&cfg.Difficulty.FollowEasy, "RPS_FOLLOW_EASY")
	setFloat(&cfg.Difficulty.FollowMedium, "RPS_FOLLOW_MEDIUM")
	setFloat(&cfg.Difficulty.FollowHard, "RPS_FOLLOW_HARD")
	if err := cfg.Difficulty.Validate(); err != nil {
		return nil, fmt.Errorf("difficulty: %w", err)
	}
	dp, err := rps.ParseDrawPolicy(env("RPS_DRAW_POLICY"))
	if err != nil {
		return nil, err
	}
	cfg.DrawPolicy = dp
	setBool(&cfg.RequirePersonality, "RPS_REQUIRE_PERSONALITY")
	if v := env("RPS_DEFAULT_PERSONALITY"); v != "" {
		p, err := rps.ParsePersonality(v)
		if err != nil {
			return nil, fmt.Errorf("RPS_DEFAULT_PERSONALITY: %w", err)
		}
		cfg.DefaultPersonality = p
	}
	if v := env("RPS_RANDOM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.RandomSeed = n
		}
	}

	// Storage
	cfg.RedisURL = env("REDIS_URL")
	cfg.DatabaseURL = env("DATABASE_URL")
	if n, ok := positiveInt("RPS_SESSION_TTL"); ok {
		cfg.SessionTTL = time.Duration(n) * time.Second
	}
	setInt(&cfg.HistoryLimit, "RPS_HISTORY_LIMIT")
	if cfg.HistoryLimit > rps.MaxHistory {
		cfg.HistoryLimit = rps.MaxHistory
	}

	// Iris
	cfg.IrisBaseURL = env("IRIS_BASE_URL")
	cfg.IrisWSURL = env("IRIS_WS_URL")
	cfg.BotPrefix = env("BOT_PREFIX")
	cfg.XUserID = env("X_USER_ID")
	cfg.XUserEmail = env("X_USER_EMAIL")
	cfg.XSessionID = env("X_SESSION_ID")
	cfg.AllowedRooms = splitList(env("ALLOWED_ROOMS"))
	if v := env("MSG_LOCALE"); v != "" {
		cfg.MsgLocale = strings.ToLower(v)
	}
	cfg.MsgOverrideDir = env("MSG_OVERRIDE_DIR")

	// Logging
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	setBool(&cfg.Log.Console, "LOG_TO_CONSOLE")
	setBool(&cfg.Log.Caller, "LOG_CALLER")
	toFile := false
	setBool(&toFile, "LOG_TO_FILE")
	if toFile {
		cfg.Log.File = firstNonEmpty(env("LOG_FILE"), "logs/rps.log")
	}

	return cfg, nil
}

// RequireBot checks the keys the KakaoTalk bot cannot start without.
func (c *AppConfig) RequireBot() error {
	if c.IrisBaseURL == "" {
		return errors.New("IRIS_BASE_URL is required")
	}
	if c.IrisWSURL == "" {
		return errors.New("IRIS_WS_URL is required")
	}
	if c.BotPrefix == "" {
		return errors.New("BOT_PREFIX is required")
	}
	if c.RedisURL == "" {
		return errors.New("REDIS_URL is required")
	}
	return nil
}

// RequireLLM checks that the selected provider has credentials.
func (c *AppConfig) RequireLLM() error {
	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for openai provider")
		}
	}
	return nil
}

// ModelName is the model the selected provider will call.
func (c *AppConfig) ModelName() string {
	switch c.LLMProvider {
	case ProviderGemini:
		return c.GeminiModel
	case ProviderOpenAI:
		if c.OpenAIModel == "" {
			return "gpt-4o-mini"
		}
		return c.OpenAIModel
	}
	return ""
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func positiveInt(k string) (int, bool) {
	v := env(k)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// bad numbers keep the default
func setInt(dst *int, k string) {
	if n, ok := positiveInt(k); ok {
		*dst = n
	}
}

func setFloat(dst *float64, k string) {
	v := env(k)
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func setBool(dst *bool, k string) {
	v := env(k)
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
