package round

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/pkg/rpsdto"
)

const (
	ReasonPlayerMove   = "Invalid or missing playerMove"
	ReasonHistoryType  = "History must be an array"
	ReasonHistorySize  = "History array too large"
	ReasonHistoryEntry = "Invalid history entry"
	ReasonStats        = "Invalid stats object"
	ReasonPersonality  = "Invalid personality"
	ReasonOnboarding   = "Invalid onboardingAnswer"
	ReasonBiometric    = "Invalid biometric signal"

	maxOnboardingRunes = 280
)

// ValidationError rejects a round before anything else runs.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Body is the wire form {valid:false, error:<reason>}.
func (e *ValidationError) Body() rpsdto.ValidationError {
	return rpsdto.ValidationError{Valid: false, Error: e.Reason}
}

func reject(reason string) error { return &ValidationError{Reason: reason} }

// Decode turns a raw HTTP payload into a Round. Field checks run in a
// fixed order so the first failing field is reported.
func (s *Service) Decode(req rpsdto.PlayRequest) (Round, error) {
	var r Round

	var move string
	if !decodeString(req.PlayerMove, &move) {
		return Round{}, reject(ReasonPlayerMove)
	}
	r.PlayerMove = rps.Move(move)
	if !r.PlayerMove.Valid() {
		return Round{}, reject(ReasonPlayerMove)
	}

	trimmed := bytes.TrimSpace(req.History)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Round{}, reject(ReasonHistoryType)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return Round{}, reject(ReasonHistoryType)
	}
	if len(entries) > rps.MaxHistory {
		return Round{}, reject(ReasonHistorySize)
	}
	r.History = make(rps.History, 0, len(entries))
	for _, raw := range entries {
		var rec rps.RoundRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return Round{}, reject(ReasonHistoryEntry)
		}
		r.History = append(r.History, rec)
	}

	stats, ok := decodeStats(req.Stats)
	if !ok {
		return Round{}, reject(ReasonStats)
	}
	r.Stats = stats

	if !isNull(req.Personality) {
		var p string
		if !decodeString(req.Personality, &p) {
			return Round{}, reject(ReasonPersonality)
		}
		r.Personality = rps.Personality(p)
	}

	if !isNull(req.OnboardingAnswer) {
		if !decodeString(req.OnboardingAnswer, &r.Intent) {
			return Round{}, reject(ReasonOnboarding)
		}
	}

	if !isNull(req.Biometric) {
		bio, ok := decodeBiometric(req.Biometric)
		if !ok {
			return Round{}, reject(ReasonBiometric)
		}
		r.Biometric = bio
	}

	return s.Validate(r)
}

// Validate checks a typed round and fills the default personality.
func (s *Service) Validate(r Round) (Round, error) {
	if !r.PlayerMove.Valid() {
		return Round{}, reject(ReasonPlayerMove)
	}
	if len(r.History) > rps.MaxHistory {
		return Round{}, reject(ReasonHistorySize)
	}
	for _, rec := range r.History {
		if !rec.Player.Valid() || !rec.AI.Valid() || (rec.Winner != "" && !rec.Winner.Valid()) {
			return Round{}, reject(ReasonHistoryEntry)
		}
	}
	if err := r.Stats.Validate(); err != nil {
		return Round{}, reject(ReasonStats)
	}
	switch {
	case r.Personality == "" && s.cfg.RequirePersonality:
		return Round{}, reject(ReasonPersonality)
	case r.Personality == "":
		r.Personality = s.cfg.DefaultPersonality
	case !r.Personality.Valid():
		return Round{}, reject(ReasonPersonality)
	}
	r.Intent = strings.TrimSpace(r.Intent)
	if len([]rune(r.Intent)) > maxOnboardingRunes {
		return Round{}, reject(ReasonOnboarding)
	}
	if r.Biometric != nil {
		if err := r.Biometric.Validate(); err != nil {
			return Round{}, reject(ReasonBiometric)
		}
		bio := r.Biometric.Normalize()
		r.Biometric = &bio
	}
	return r, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func decodeString(raw json.RawMessage, dst *string) bool {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || t[0] != '"' {
		return false
	}
	return json.Unmarshal(t, dst) == nil
}

// stats.wins must be present and numeric; the other counters default to 0.
func decodeStats(raw json.RawMessage) (rps.Stats, bool) {
	t := bytes.TrimSpace(raw)
	if len(t) == 0 || t[0] != '{' {
		return rps.Stats{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(t, &fields); err != nil {
		return rps.Stats{}, false
	}
	if _, ok := fields["wins"]; !ok {
		return rps.Stats{}, false
	}
	var st rps.Stats
	targets := map[string]*int{
		"wins":       &st.Wins,
		"losses":     &st.Losses,
		"draws":      &st.Draws,
		"winStreak":  &st.WinStreak,
		"loseStreak": &st.LoseStreak,
	}
	for name, dst := range targets {
		v, ok := fields[name]
		if !ok || isNull(v) {
			if name == "wins" {
				return rps.Stats{}, false
			}
			continue
		}
		n, ok := decodeCount(v)
		if !ok {
			return rps.Stats{}, false
		}
		*dst = n
	}
	return st, true
}

func decodeBiometric(raw json.RawMessage) (*rps.BiometricSignal, bool) {
	var fields map[string]json.RawMessage
	if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] != '{' || json.Unmarshal(t, &fields) != nil {
		return nil, false
	}
	bio := &rps.BiometricSignal{}
	for name, dst := range map[string]*int{"hesitationMs": &bio.HesitationMs, "movementScore": &bio.MovementScore} {
		v, ok := fields[name]
		if !ok || isNull(v) {
			continue
		}
		n, ok := decodeCount(v)
		if !ok {
			return nil, false
		}
		*dst = n
	}
	if v, ok := fields["inferredEmotion"]; ok && !isNull(v) {
		var e string
		if !decodeString(v, &e) {
			return nil, false
		}
		bio.InferredEmotion = rps.Emotion(e)
	}
	return bio, true
}

// decodeCount accepts any JSON number with an integral value (1, 1.0, 1e2).
func decodeCount(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if math.Trunc(f) != f || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
