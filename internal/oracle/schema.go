package oracle

import (
	"encoding/json"
	"strings"

	"github.com/park285/Cheese-RPS-bot/internal/rps"
)

const (
	fieldPredictedMove  = "predicted_player_move"
	fieldConfidence     = "prediction_confidence"
	fieldAIMove         = "ai_move"
	fieldPlayerStyle    = "player_style"
	fieldEmotionalState = "emotional_state"
	fieldMindGameEvent  = "mind_game_event"
	fieldExplanation    = "explanation"
	fieldCoachTip       = "coach_tip"
)

// Schema is the subset of JSON Schema both providers understand.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Ordering    []string           `json:"-"`
}

// PredictionSchema describes the structured answer. vision adds the
// emotional-state, mind-game and ai_move fields.
func PredictionSchema(vision bool) *Schema {
	s := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			fieldPredictedMove: {Type: "string", Enum: moveNames()},
			fieldConfidence:    {Type: "integer", Description: "0-100"},
			fieldPlayerStyle:   {Type: "string", Enum: append([]string(nil), rps.PlayerStyles...)},
			fieldExplanation:   {Type: "string", Description: "short, personality driven"},
			fieldCoachTip:      {Type: "string", Description: "tactical advice"},
		},
		Ordering: []string{fieldPredictedMove, fieldConfidence, fieldPlayerStyle, fieldExplanation, fieldCoachTip},
	}
	if vision {
		s.Properties[fieldAIMove] = &Schema{Type: "string", Enum: moveNames(), Description: "the move that beats the predicted move"}
		s.Properties[fieldEmotionalState] = &Schema{Type: "string", Enum: enumNames(rps.EmotionalStates)}
		s.Properties[fieldMindGameEvent] = &Schema{Type: "string", Enum: enumNames(rps.MindGameEvents)}
		s.Ordering = []string{fieldPredictedMove, fieldConfidence, fieldAIMove, fieldPlayerStyle, fieldEmotionalState, fieldMindGameEvent, fieldExplanation, fieldCoachTip}
	}
	s.Required = append([]string(nil), s.Ordering...)
	return s
}

// Gemini wants upper-case type names and an explicit property ordering.
func (s *Schema) geminiJSON() map[string]any {
	out := map[string]any{"type": strings.ToUpper(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for k, v := range s.Properties {
			props[k] = v.geminiJSON()
		}
		out["properties"] = props
		out["propertyOrdering"] = s.Ordering
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}

// Strict OpenAI schemas must close the object.
func (s *Schema) openAIJSON() (json.RawMessage, error) {
	var conv func(*Schema) map[string]any
	conv = func(n *Schema) map[string]any {
		out := map[string]any{"type": n.Type}
		if n.Description != "" {
			out["description"] = n.Description
		}
		if len(n.Enum) > 0 {
			out["enum"] = n.Enum
		}
		if n.Type == "object" {
			props := make(map[string]any, len(n.Properties))
			for k, v := range n.Properties {
				props[k] = conv(v)
			}
			out["properties"] = props
			out["required"] = n.Required
			out["additionalProperties"] = false
		}
		return out
	}
	return json.Marshal(conv(s))
}

func moveNames() []string {
	return enumNames(rps.Moves)
}

func enumNames[T ~string](vals []T) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}
