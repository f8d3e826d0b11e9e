package round

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-RPS-bot/internal/oracle"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/pkg/rpsdto"
)

var ErrNotConfigured = errors.New("round service not configured")

// Predictor never fails; it falls back internally.
type Predictor interface {
	Predict(ctx context.Context, rc oracle.RoundContext) oracle.Result
}

type Config struct {
	Difficulty         rps.DifficultyPolicy
	DefaultPersonality rps.Personality
	RequirePersonality bool
}

// Service runs one round: validate, predict, resolve, respond.
// It holds no per-session state and never persists anything.
type Service struct {
	predictor Predictor
	src       rps.Source
	cfg       Config
	logger    *zap.Logger
}

// Round is a validated play request.
type Round struct {
	PlayerMove  rps.Move
	History     rps.History
	Stats       rps.Stats
	Personality rps.Personality
	Intent      string
	Biometric   *rps.BiometricSignal
}

type Result struct {
	Round      Round
	Tier       rps.Tier
	Prediction rps.Prediction
	AIMove     rps.Move
	Winner     rps.Outcome
	Followed   bool
	Source     string
	Provider   string
	Latency    time.Duration
}

func NewService(predictor Predictor, src rps.Source, cfg Config, logger *zap.Logger) (*Service, error) {
	if predictor == nil {
		return nil, fmt.Errorf("predictor is required")
	}
	if src == nil {
		src = rps.NewSource(0)
	}
	if cfg.Difficulty == (rps.DifficultyPolicy{}) {
		cfg.Difficulty = rps.DefaultDifficulty()
	}
	if err := cfg.Difficulty.Validate(); err != nil {
		return nil, fmt.Errorf("difficulty policy: %w", err)
	}
	if cfg.DefaultPersonality == "" {
		cfg.DefaultPersonality = rps.Friendly
	}
	if !cfg.DefaultPersonality.Valid() {
		return nil, fmt.Errorf("invalid default personality: %s", cfg.DefaultPersonality)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{predictor: predictor, src: src, cfg: cfg, logger: logger}, nil
}

func (s *Service) Difficulty() rps.DifficultyPolicy { return s.cfg.Difficulty }

// PlayRequest decodes a wire payload and plays it.
func (s *Service) PlayRequest(ctx context.Context, req rpsdto.PlayRequest) (*Result, error) {
	r, err := s.Decode(req)
	if err != nil {
		s.logger.Info("round_validation_failed", zap.String("reason", err.Error()))
		return nil, err
	}
	return s.play(ctx, r)
}

// Play validates a typed round and plays it.
func (s *Service) Play(ctx context.Context, r Round) (*Result, error) {
	valid, err := s.Validate(r)
	if err != nil {
		s.logger.Info("round_validation_failed", zap.String("reason", err.Error()))
		return nil, err
	}
	return s.play(ctx, valid)
}

func (s *Service) play(ctx context.Context, r Round) (*Result, error) {
	if s == nil || s.predictor == nil || s.src == nil {
		return nil, ErrNotConfigured
	}

	tier := s.cfg.Difficulty.Tier(r.Stats.WinStreak, r.Stats.LoseStreak)
	res := s.predictor.Predict(ctx, oracle.RoundContext{
		History:     r.History,
		Stats:       r.Stats,
		Personality: r.Personality,
		Tier:        tier,
		Intent:      r.Intent,
		Biometric:   r.Biometric,
	})
	if !res.Prediction.PredictedMove.Valid() {
		return nil, fmt.Errorf("predictor returned invalid move %q", res.Prediction.PredictedMove)
	}

	resolution := rps.ResolveAIMove(res.Prediction, tier, s.cfg.Difficulty, s.src)
	winner := rps.Winner(r.PlayerMove, resolution.Move)

	s.logger.Debug("round_played",
		zap.String("player_move", string(r.PlayerMove)),
		zap.String("ai_move", string(resolution.Move)),
		zap.String("winner", string(winner)),
		zap.String("tier", string(tier)),
		zap.String("source", res.Source),
		zap.Bool("followed", resolution.Followed),
	)

	return &Result{
		Round:      r,
		Tier:       tier,
		Prediction: res.Prediction,
		AIMove:     resolution.Move,
		Winner:     winner,
		Followed:   resolution.Followed,
		Source:     res.Source,
		Provider:   res.Provider,
		Latency:    res.Latency,
	}, nil
}

func (r *Result) Response() rpsdto.PlayResponse {
	return rpsdto.PlayResponse{
		AIMove:              string(r.AIMove),
		PredictedPlayerMove: string(r.Prediction.PredictedMove),
		Confidence:          r.Prediction.Confidence,
		Winner:              string(r.Winner),
		PlayerStyle:         r.Prediction.PlayerStyle,
		Explanation:         r.Prediction.Explanation,
		CoachTip:            r.Prediction.CoachTip,
		DifficultyLevel:     string(r.Tier),
		EmotionalState:      string(r.Prediction.EmotionalState),
		MindGameEvent:       string(r.Prediction.MindGameEvent),
	}
}
