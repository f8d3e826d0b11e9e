package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/park285/Cheese-RPS-bot/internal/rps"
)

const lastMovesWindow = 5

// RoundContext is everything the model sees for one round.
type RoundContext struct {
	History     rps.History
	Stats       rps.Stats
	Personality rps.Personality
	Tier        rps.Tier
	Intent      string
	Biometric   *rps.BiometricSignal
}

const baseSystemPrompt = `You are a Rock Paper Scissors AI opponent. Predict the player's NEXT move from their history and stats.
Write the explanation in the voice of the given personality:
- Friendly: warm and encouraging.
- Competitive: confident trash talk, never rude.
- Coach: analytical, point out the habit you noticed.
Output strict JSON only, no markdown.`

const visionSystemPrompt = `You are a behavioral AI opponent using both move history and emotional context. You adapt difficulty and generate mind-game events. Output strict JSON only.

Inputs:
- History & Stats: use pattern matching.
- Biometrics:
  * Hesitation: <1000ms (impulsive/confident), >3000ms (hesitant/calculating).
  * Emotion: Agitated (likely to play randomly or repeat), Calm (likely to stick to strategy).

Mind games (trigger occasionally based on context):
- "bluff_round": claim you predicted X when you predicted Y.
- "confidence_trap": use their confidence against them.
- "psychological_pressure": taunt a hesitation.
- "none": standard play.

Write the explanation in the voice of the given personality (Friendly, Competitive or Coach).`

// SystemPrompt returns the instruction for the chosen schema variant.
func SystemPrompt(vision bool) string {
	if vision {
		return visionSystemPrompt
	}
	return baseSystemPrompt
}

// UserPrompt embeds the round context as plain text.
func UserPrompt(rc RoundContext) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- Mode: %s | Difficulty: %s\n", rc.Personality, rc.Tier)
	if intent := strings.TrimSpace(rc.Intent); intent != "" {
		fmt.Fprintf(&b, "- Player Intent: %s\n", intent)
	}
	fmt.Fprintf(&b, "- Stats: W%d/L%d/D%d Streak: W%d/L%d\n",
		rc.Stats.Wins, rc.Stats.Losses, rc.Stats.Draws, rc.Stats.WinStreak, rc.Stats.LoseStreak)
	if bio := rc.Biometric; bio != nil {
		fmt.Fprintf(&b, "- BIOMETRICS: Hesitation: %dms. Inferred Emotion: %s. Movement Score: %d.\n",
			bio.HesitationMs, bio.InferredEmotion, bio.MovementScore)
	}
	fmt.Fprintf(&b, "- History: %s\n", rps.Summarize(rc.History))
	fmt.Fprintf(&b, "- Last %d: %s\n", lastMovesWindow, lastMovesJSON(rc.History))
	b.WriteString("\nAnalyze signals. Predict next move. Explain.")
	return b.String()
}

func lastMovesJSON(h rps.History) string {
	recent := h.Recent(lastMovesWindow)
	if len(recent) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(recent)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
