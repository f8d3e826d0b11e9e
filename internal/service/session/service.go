package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Cheese-RPS-bot/internal/domain"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/internal/service/cache"
	"github.com/park285/Cheese-RPS-bot/internal/service/round"
)

var (
	ErrSessionNotFound = errors.New("rps session not found")
	ErrProfileNotFound = errors.New("rps profile not found")
	ErrRoomNotAllowed  = errors.New("rps room not allowed")
	ErrSessionBusy     = errors.New("rps session busy")
)

const (
	profileCacheTTL     = 6 * time.Hour
	defaultHistoryLimit = 40
	defaultSessionTTL   = 24 * time.Hour
	maxRecentRounds     = 50
	maxIntentRunes      = 280

	// longer than one round including the model call
	sessionLockTTL  = 30 * time.Second
	sessionLockWait = 20 * time.Second
)

// RoundPlayer is the orchestrator as seen by the session layer.
type RoundPlayer interface {
	Play(ctx context.Context, r round.Round) (*round.Result, error)
}

type SessionMeta struct {
	SessionID string
	Room      string
	Sender    string
}

type sessionIdentity struct {
	SessionID  string
	RoomHash   string
	PlayerHash string
}

type Config struct {
	SessionTTL   time.Duration
	HistoryLimit int
	DrawPolicy   rps.DrawPolicy
	AllowedRooms []string
}

// Session is the per-player state kept between rounds.
type Session struct {
	SessionUUID  string          `json:"session_uuid"`
	PlayerHash   string          `json:"player_hash"`
	RoomHash     string          `json:"room_hash"`
	PlayerName   string          `json:"player_name,omitempty"`
	Personality  rps.Personality `json:"personality,omitempty"`
	Intent       string          `json:"intent,omitempty"`
	History      rps.History     `json:"history"`
	Stats        rps.Stats       `json:"stats"`
	StartedAt    time.Time       `json:"started_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	LastRoundEnd time.Time       `json:"last_round_end,omitempty"`
}

type PlayOutcome struct {
	Result  *round.Result
	Session *Session
	Profile *domain.PlayerProfile
	RoundID int64
}

type Service struct {
	rounds       RoundPlayer
	cache        *cache.CacheService
	repo         Repository
	clock        quartz.Clock
	cfg          Config
	allowedRooms map[string]struct{}
	lockWait     time.Duration
	logger       *zap.Logger
}

func NewService(rounds RoundPlayer, cacheSvc *cache.CacheService, repo Repository, clock quartz.Clock, cfg Config, logger *zap.Logger) (*Service, error) {
	if rounds == nil {
		return nil, fmt.Errorf("round service is required")
	}
	if cacheSvc == nil {
		return nil, fmt.Errorf("cache service is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("rps repository is required")
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > rps.MaxHistory {
		cfg.HistoryLimit = defaultHistoryLimit
	}
	if cfg.DrawPolicy == "" {
		cfg.DrawPolicy = rps.DrawKeepStreaks
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	allowedRooms := make(map[string]struct{})
	for _, room := range cfg.AllowedRooms {
		normalized := strings.ToLower(strings.TrimSpace(room))
		if normalized == "" {
			continue
		}
		allowedRooms[normalized] = struct{}{}
	}

	return &Service{
		rounds:       rounds,
		cache:        cacheSvc,
		repo:         repo,
		clock:        clock,
		cfg:          cfg,
		allowedRooms: allowedRooms,
		lockWait:     sessionLockWait,
		logger:       logger,
	}, nil
}

// Play runs one round for the player and commits state only on success.
func (s *Service) Play(ctx context.Context, meta SessionMeta, moveInput string) (*PlayOutcome, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}

	move, err := rps.ParseMove(moveInput)
	if err != nil {
		return nil, &round.ValidationError{Reason: round.ReasonPlayerMove}
	}

	identity := deriveIdentity(meta)
	unlock, err := s.lockSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.loadOrCreate(ctx, identity, meta)
	if err != nil {
		return nil, err
	}

	req := round.Round{
		PlayerMove:  move,
		History:     sess.History.Recent(s.cfg.HistoryLimit),
		Stats:       sess.Stats,
		Personality: sess.Personality,
		Intent:      sess.Intent,
	}
	if !sess.LastRoundEnd.IsZero() {
		req.Biometric = &rps.BiometricSignal{HesitationMs: hesitationMillis(s.clock.Since(sess.LastRoundEnd))}
	}

	result, err := s.rounds.Play(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sess.Stats = sess.Stats.Apply(result.Winner, s.cfg.DrawPolicy)
	sess.History = sess.History.Prepend(rps.RoundRecord{Player: move, AI: result.AIMove, Winner: result.Winner})
	sess.LastRoundEnd = now
	if err := s.saveSession(ctx, identity.SessionID, sess); err != nil {
		return nil, fmt.Errorf("save rps session: %w", err)
	}

	out := &PlayOutcome{Result: result, Session: sess}
	out.RoundID, out.Profile = s.recordRound(ctx, identity, sess, result, req, now)
	return out, nil
}

// Status returns the current session, or ErrSessionNotFound.
func (s *Service) Status(ctx context.Context, meta SessionMeta) (*Session, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	sess, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) SetPersonality(ctx context.Context, meta SessionMeta, input string) (*Session, error) {
	p, err := rps.ParsePersonality(input)
	if err != nil {
		return nil, &round.ValidationError{Reason: round.ReasonPersonality}
	}
	sess, err := s.update(ctx, meta, func(sess *Session) { sess.Personality = p })
	if err != nil {
		return nil, err
	}
	s.rememberPersonality(ctx, deriveIdentity(meta), p)
	return sess, nil
}

// SetIntent stores the onboarding answer sent with every later round.
func (s *Service) SetIntent(ctx context.Context, meta SessionMeta, text string) (*Session, error) {
	text = strings.TrimSpace(text)
	if len([]rune(text)) > maxIntentRunes {
		return nil, &round.ValidationError{Reason: round.ReasonOnboarding}
	}
	return s.update(ctx, meta, func(sess *Session) { sess.Intent = text })
}

// Reset drops the session; lifetime profile and round log are kept.
func (s *Service) Reset(ctx context.Context, meta SessionMeta) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return err
	}
	sessionID := deriveIdentity(meta).SessionID
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.deleteSession(ctx, sessionID)
}

func (s *Service) History(ctx context.Context, meta SessionMeta, limit int) ([]*domain.RoundLog, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxRecentRounds {
		limit = 10
	}
	identity := deriveIdentity(meta)
	return s.repo.GetRecentRounds(ctx, identity.PlayerHash, identity.RoomHash, limit)
}

func (s *Service) Profile(ctx context.Context, meta SessionMeta) (*domain.PlayerProfile, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	return s.fetchProfile(ctx, deriveIdentity(meta))
}

func (s *Service) update(ctx context.Context, meta SessionMeta, mutate func(*Session)) (*Session, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ensureRoomAllowed(meta); err != nil {
		return nil, err
	}
	identity := deriveIdentity(meta)
	unlock, err := s.lockSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := s.loadOrCreate(ctx, identity, meta)
	if err != nil {
		return nil, err
	}
	mutate(sess)
	if err := s.saveSession(ctx, identity.SessionID, sess); err != nil {
		return nil, fmt.Errorf("save rps session: %w", err)
	}
	return sess, nil
}

func (s *Service) loadOrCreate(ctx context.Context, identity sessionIdentity, meta SessionMeta) (*Session, error) {
	sess, err := s.loadSession(ctx, identity.SessionID)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}

	now := s.clock.Now()
	sess = &Session{
		SessionUUID: uuid.NewString(),
		PlayerHash:  identity.PlayerHash,
		RoomHash:    identity.RoomHash,
		PlayerName:  strings.TrimSpace(meta.Sender),
		StartedAt:   now,
	}
	// carry over the personality picked before a reset
	if profile, err := s.fetchProfile(ctx, identity); err == nil && profile.PreferredPersonality != "" {
		if p := rps.Personality(profile.PreferredPersonality); p.Valid() {
			sess.Personality = p
		}
	}
	return sess, nil
}

// recordRound writes the round log and profile. Failures are logged only;
// the round already counts once the session is saved.
func (s *Service) recordRound(ctx context.Context, identity sessionIdentity, sess *Session, result *round.Result, req round.Round, playedAt time.Time) (int64, *domain.PlayerProfile) {
	entry := &domain.RoundLog{
		RoundUUID:        uuid.NewString(),
		SessionUUID:      sess.SessionUUID,
		PlayerHash:       identity.PlayerHash,
		RoomHash:         identity.RoomHash,
		PlayerMove:       string(result.Round.PlayerMove),
		AIMove:           string(result.AIMove),
		Winner:           string(result.Winner),
		PredictedMove:    string(result.Prediction.PredictedMove),
		Confidence:       result.Prediction.Confidence,
		Tier:             string(result.Tier),
		Personality:      string(result.Round.Personality),
		PlayerStyle:      result.Prediction.PlayerStyle,
		EmotionalState:   string(result.Prediction.EmotionalState),
		MindGameEvent:    string(result.Prediction.MindGameEvent),
		PredictionSource: result.Source,
		Followed:         result.Followed,
		ModelLatency:     result.Latency,
		PlayedAt:         playedAt,
	}
	if req.Biometric != nil {
		entry.HesitationMs = req.Biometric.HesitationMs
	}

	id, err := s.repo.InsertRound(ctx, entry)
	if err != nil {
		s.logger.Warn("rps_round_persist_failed", zap.String("session", sess.SessionUUID), zap.Error(err))
	}

	profile, err := s.repo.AddProfileRound(ctx, ProfileRound{
		PlayerHash:  identity.PlayerHash,
		RoomHash:    identity.RoomHash,
		Personality: string(result.Round.Personality),
		Result:      resultType(result.Winner),
		PlayedAt:    playedAt,
	})
	if err != nil {
		s.logger.Warn("rps_profile_persist_failed", zap.Error(err))
		return id, nil
	}
	s.cacheProfile(ctx, identity, profile)
	return id, profile
}

func (s *Service) rememberPersonality(ctx context.Context, identity sessionIdentity, p rps.Personality) {
	profile, err := s.repo.SetPreferredPersonality(ctx, identity.PlayerHash, identity.RoomHash, string(p))
	if err != nil {
		s.logger.Warn("rps_profile_persist_failed", zap.Error(err))
		return
	}
	if profile == nil {
		return
	}
	s.cacheProfile(ctx, identity, profile)
}

// lockSession serializes rounds and edits of one session across bot instances.
func (s *Service) lockSession(ctx context.Context, sessionID string) (func(), error) {
	unlock, err := s.cache.Lock(ctx, s.sessionLockKey(sessionID), sessionLockTTL, s.lockWait)
	if errors.Is(err, cache.ErrLockHeld) {
		s.logger.Info("rps_session_busy", zap.String("session", sessionID))
		return nil, ErrSessionBusy
	}
	if err != nil {
		return nil, fmt.Errorf("lock rps session: %w", err)
	}
	return unlock, nil
}

func (s *Service) ensureReady() error {
	switch {
	case s.rounds == nil:
		return fmt.Errorf("round service not configured")
	case s.cache == nil:
		return fmt.Errorf("cache service not configured")
	case s.repo == nil:
		return fmt.Errorf("rps repository not configured")
	default:
		return nil
	}
}

func (s *Service) ensureRoomAllowed(meta SessionMeta) error {
	if len(s.allowedRooms) == 0 {
		return nil
	}

	room := strings.ToLower(strings.TrimSpace(meta.Room))
	if room == "" {
		room = "unknown-room"
	}
	if _, ok := s.allowedRooms[room]; ok {
		return nil
	}

	s.logger.Info("rps room access denied",
		zap.String("room", room),
		zap.String("sender", strings.TrimSpace(meta.Sender)),
	)
	return ErrRoomNotAllowed
}

func (s *Service) sessionKey(sessionID string) string {
	return "rps:session:" + hashString(strings.TrimSpace(sessionID))
}

func (s *Service) sessionLockKey(sessionID string) string {
	return "rps:lock:" + hashString(strings.TrimSpace(sessionID))
}

func (s *Service) profileCacheKey(identity sessionIdentity) string {
	return "rps:profile:" + identity.PlayerHash + ":" + identity.RoomHash
}

func (s *Service) loadSession(ctx context.Context, sessionID string) (*Session, error) {
	payload := &Session{}
	if err := s.cache.Get(ctx, s.sessionKey(sessionID), payload); err != nil {
		return nil, err
	}
	if payload.SessionUUID == "" {
		return nil, nil
	}
	return payload, nil
}

func (s *Service) saveSession(ctx context.Context, sessionID string, payload *Session) error {
	if payload == nil {
		return fmt.Errorf("cannot save nil rps session payload")
	}
	payload.UpdatedAt = s.clock.Now()
	if err := s.cache.Set(ctx, s.sessionKey(sessionID), payload, s.cfg.SessionTTL); err != nil {
		return err
	}
	s.logger.Debug("session_saved", zap.String("session", payload.SessionUUID), zap.Int("rounds", len(payload.History)))
	return nil
}

func (s *Service) deleteSession(ctx context.Context, sessionID string) error {
	return s.cache.Del(ctx, s.sessionKey(sessionID))
}

func (s *Service) fetchProfile(ctx context.Context, identity sessionIdentity) (*domain.PlayerProfile, error) {
	profile := &domain.PlayerProfile{}
	if err := s.cache.Get(ctx, s.profileCacheKey(identity), profile); err != nil {
		return nil, err
	}
	if profile.PlayerHash != "" {
		return profile, nil
	}

	stored, err := s.repo.GetProfile(ctx, identity.PlayerHash, identity.RoomHash)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrProfileNotFound
	}
	s.cacheProfile(ctx, identity, stored)
	return stored, nil
}

func (s *Service) cacheProfile(ctx context.Context, identity sessionIdentity, profile *domain.PlayerProfile) {
	if profile == nil {
		return
	}
	if err := s.cache.Set(ctx, s.profileCacheKey(identity), profile, profileCacheTTL); err != nil {
		s.logger.Warn("failed to cache rps profile", zap.Error(err))
	}
}

func deriveIdentity(meta SessionMeta) sessionIdentity {
	room := strings.ToLower(strings.TrimSpace(meta.Room))
	sender := strings.ToLower(strings.TrimSpace(meta.Sender))

	identity := sessionIdentity{
		SessionID:  strings.ToLower(strings.TrimSpace(meta.SessionID)),
		RoomHash:   hashString(room),
		PlayerHash: hashString(room + ":" + sender),
	}
	if identity.SessionID == "" {
		identity.SessionID = identity.PlayerHash
	}
	return identity
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func hesitationMillis(d time.Duration) int {
	ms := d.Milliseconds()
	switch {
	case ms < 0:
		return 0
	case ms > math.MaxInt32:
		return math.MaxInt32
	}
	return int(ms)
}

func resultType(winner rps.Outcome) string {
	switch winner {
	case rps.OutcomePlayer:
		return resultWin
	case rps.OutcomeAI:
		return resultLoss
	default:
		return resultDraw
	}
}
