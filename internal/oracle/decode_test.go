package oracle

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/Cheese-RPS-bot/internal/rps"
)

const validBase = `{"predicted_player_move":"paper","prediction_confidence":72,"player_style":"pattern","explanation":"You love paper.","coach_tip":"Switch it up."}`

const validVision = `{"predicted_player_move":"rock","prediction_confidence":55,"ai_move":"paper","player_style":"tilted","emotional_state":"frustrated","mind_game_event":"bluff_round","explanation":"I see you.","coach_tip":"Breathe."}`

func TestDecodeValid(t *testing.T) {
	pred, err := Decode(validBase, false)
	require.NoError(t, err)
	assert.Equal(t, rps.Paper, pred.PredictedMove)
	assert.Equal(t, 72, pred.Confidence)
	assert.Equal(t, "pattern", pred.PlayerStyle)
	assert.Empty(t, pred.EmotionalState)
	assert.Empty(t, pred.MindGameEvent)

	pred, err = Decode(validVision, true)
	require.NoError(t, err)
	assert.Equal(t, rps.EmotionFrustrated, pred.EmotionalState)
	assert.Equal(t, rps.MindGameBluffRound, pred.MindGameEvent)
}

func TestDecodeStripsFences(t *testing.T) {
	fixtures := []string{
		"```json\n" + validBase + "\n```",
		"```\n" + validBase + "\n```",
		"  " + validBase + "  ",
		"Here is my answer:\n" + validBase + "\nGood luck!",
	}
	for _, f := range fixtures {
		pred, err := Decode(f, false)
		require.NoError(t, err, f)
		assert.Equal(t, rps.Paper, pred.PredictedMove)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"fence only":       "```json\n```",
		"not json":         "I think you will play rock",
		"truncated":        `{"predicted_player_move":"rock","prediction_confidence":`,
		"lizard":           `{"predicted_player_move":"lizard","prediction_confidence":50,"player_style":"x","explanation":"e","coach_tip":"c"}`,
		"missing move":     `{"prediction_confidence":50,"player_style":"x","explanation":"e","coach_tip":"c"}`,
		"missing conf":     `{"predicted_player_move":"rock","player_style":"x","explanation":"e","coach_tip":"c"}`,
		"conf too high":    `{"predicted_player_move":"rock","prediction_confidence":150,"player_style":"x","explanation":"e","coach_tip":"c"}`,
		"conf negative":    `{"predicted_player_move":"rock","prediction_confidence":-1,"player_style":"x","explanation":"e","coach_tip":"c"}`,
		"conf as string":   `{"predicted_player_move":"rock","prediction_confidence":"high","player_style":"x","explanation":"e","coach_tip":"c"}`,
		"blank style":      `{"predicted_player_move":"rock","prediction_confidence":50,"player_style":" ","explanation":"e","coach_tip":"c"}`,
		"missing tip":      `{"predicted_player_move":"rock","prediction_confidence":50,"player_style":"x","explanation":"e"}`,
		"bad ai move":      `{"predicted_player_move":"rock","prediction_confidence":50,"ai_move":"spock","player_style":"x","explanation":"e","coach_tip":"c"}`,
		"upper case move":  `{"predicted_player_move":"ROCK","prediction_confidence":50,"player_style":"x","explanation":"e","coach_tip":"c"}`,
		"padded move":      `{"predicted_player_move":" rock ","prediction_confidence":50,"player_style":"x","explanation":"e","coach_tip":"c"}`,
		"upper case ai":    `{"predicted_player_move":"rock","prediction_confidence":50,"ai_move":"Paper","player_style":"x","explanation":"e","coach_tip":"c"}`,
		"move wrong type":  `{"predicted_player_move":1,"prediction_confidence":50,"player_style":"x","explanation":"e","coach_tip":"c"}`,
	}
	for name, text := range cases {
		_, err := Decode(text, false)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidProviderOutput) || errors.Is(err, ErrEmptyResponse), "%s: %v", name, err)
	}
}

func TestDecodeVisionRequiresTags(t *testing.T) {
	_, err := Decode(validBase, true)
	require.ErrorIs(t, err, ErrInvalidProviderOutput)
}

func TestDecodeVisionRejectsTagsOutsideDomain(t *testing.T) {
	cases := map[string]string{
		"bad emotion":     strings.Replace(validVision, `"frustrated"`, `"sad"`, 1),
		"bad mind game":   strings.Replace(validVision, `"bluff_round"`, `"gaslight"`, 1),
		"upper emotion":   strings.Replace(validVision, `"frustrated"`, `"FRUSTRATED"`, 1),
		"mixed mind game": strings.Replace(validVision, `"bluff_round"`, `"Bluff_Round"`, 1),
	}
	for name, text := range cases {
		_, err := Decode(text, true)
		require.ErrorIs(t, err, ErrInvalidProviderOutput, name)
	}
}

func TestDecodeDropsTagsWithoutVision(t *testing.T) {
	text := `{"predicted_player_move":"rock","prediction_confidence":50,"player_style":"x","emotional_state":"sad","mind_game_event":"gaslight","explanation":"e","coach_tip":"c"}`
	pred, err := Decode(text, false)
	require.NoError(t, err)
	assert.Empty(t, pred.EmotionalState)
	assert.Empty(t, pred.MindGameEvent)
}

func TestDecodeRoundsConfidence(t *testing.T) {
	text := `{"predicted_player_move":"scissors","prediction_confidence":40.6,"player_style":"random","explanation":"e","coach_tip":"c"}`
	pred, err := Decode(text, false)
	require.NoError(t, err)
	assert.Equal(t, rps.Scissors, pred.PredictedMove)
	assert.Equal(t, 41, pred.Confidence)
}

func TestPredictionSchemaShape(t *testing.T) {
	base := PredictionSchema(false)
	assert.Len(t, base.Required, 5)
	assert.NotContains(t, base.Properties, fieldMindGameEvent)

	vision := PredictionSchema(true)
	assert.Len(t, vision.Required, 8)
	assert.Equal(t, []string{"none", "bluff_round", "psychological_pressure", "confidence_trap"}, vision.Properties[fieldMindGameEvent].Enum)

	raw, err := vision.openAIJSON()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"additionalProperties":false`)

	gem := vision.geminiJSON()
	assert.Equal(t, "OBJECT", gem["type"])
}
