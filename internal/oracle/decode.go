package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/park285/Cheese-RPS-bot/internal/rps"
)

var (
	ErrEmptyResponse         = errors.New("empty model response")
	ErrInvalidProviderOutput = errors.New("invalid model output")
)

type rawPrediction struct {
	PredictedMove  *string  `json:"predicted_player_move"`
	Confidence     *float64 `json:"prediction_confidence"`
	AIMove         *string  `json:"ai_move"`
	PlayerStyle    *string  `json:"player_style"`
	EmotionalState *string  `json:"emotional_state"`
	MindGameEvent  *string  `json:"mind_game_event"`
	Explanation    *string  `json:"explanation"`
	CoachTip       *string  `json:"coach_tip"`
}

// Sanitize strips markdown fences and surrounding prose from model text.
func Sanitize(text string) string {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// Decode parses model text and validates it against the closed schema.
// Enum values must match exactly. With vision, emotional_state and
// mind_game_event are required; without it they are not part of the schema
// and are dropped.
func Decode(text string, vision bool) (rps.Prediction, error) {
	cleaned := Sanitize(text)
	if cleaned == "" {
		return rps.Prediction{}, ErrEmptyResponse
	}

	var raw rawPrediction
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return rps.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidProviderOutput, err)
	}

	if raw.PredictedMove == nil {
		return rps.Prediction{}, missing(fieldPredictedMove)
	}
	move := rps.Move(*raw.PredictedMove)
	if !move.Valid() {
		return rps.Prediction{}, invalid(fieldPredictedMove, *raw.PredictedMove)
	}

	if raw.Confidence == nil {
		return rps.Prediction{}, missing(fieldConfidence)
	}
	conf := *raw.Confidence
	if math.IsNaN(conf) || conf < 0 || conf > 100 {
		return rps.Prediction{}, invalid(fieldConfidence, fmt.Sprint(conf))
	}

	if raw.AIMove != nil && !rps.Move(*raw.AIMove).Valid() {
		return rps.Prediction{}, invalid(fieldAIMove, *raw.AIMove)
	}

	style, err := requireText(fieldPlayerStyle, raw.PlayerStyle)
	if err != nil {
		return rps.Prediction{}, err
	}
	explanation, err := requireText(fieldExplanation, raw.Explanation)
	if err != nil {
		return rps.Prediction{}, err
	}
	tip, err := requireText(fieldCoachTip, raw.CoachTip)
	if err != nil {
		return rps.Prediction{}, err
	}

	pred := rps.Prediction{
		PredictedMove: move,
		Confidence:    int(math.Round(conf)),
		PlayerStyle:   style,
		Explanation:   explanation,
		CoachTip:      tip,
	}

	if !vision {
		return pred, nil
	}

	if raw.EmotionalState == nil {
		return rps.Prediction{}, missing(fieldEmotionalState)
	}
	es := rps.EmotionalState(*raw.EmotionalState)
	if !es.Valid() {
		return rps.Prediction{}, invalid(fieldEmotionalState, *raw.EmotionalState)
	}
	pred.EmotionalState = es

	if raw.MindGameEvent == nil {
		return rps.Prediction{}, missing(fieldMindGameEvent)
	}
	ev := rps.MindGameEvent(*raw.MindGameEvent)
	if !ev.Valid() {
		return rps.Prediction{}, invalid(fieldMindGameEvent, *raw.MindGameEvent)
	}
	pred.MindGameEvent = ev

	return pred, nil
}

func requireText(field string, v *string) (string, error) {
	if v == nil {
		return "", missing(field)
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return "", fmt.Errorf("%w: empty %s", ErrInvalidProviderOutput, field)
	}
	return s, nil
}

func missing(field string) error {
	return fmt.Errorf("%w: missing %s", ErrInvalidProviderOutput, field)
}

func invalid(field, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidProviderOutput, field, value)
}
