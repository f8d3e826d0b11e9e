package rps

import "fmt"

const (
	FallbackColdConfidence    = 30
	FallbackPatternConfidence = 60
)

// Fallback predicts the most frequent player move over the whole history.
// Ties go to the earliest move in Moves. With vision the narrative tags are
// filled so the result has the same fields as a vision model answer.
func Fallback(h History, vision bool) Prediction {
	if len(h) == 0 {
		return withTags(Prediction{
			PredictedMove: Rock,
			Confidence:    FallbackColdConfidence,
			PlayerStyle:   "random",
			Explanation:   "I'm still learning your patterns.",
			CoachTip:      "Play a few more rounds!",
		}, vision)
	}

	counts := h.Counts()
	predicted := Moves[0]
	for _, mv := range Moves[1:] {
		if counts[mv] > counts[predicted] {
			predicted = mv
		}
	}

	return withTags(Prediction{
		PredictedMove: predicted,
		Confidence:    FallbackPatternConfidence,
		PlayerStyle:   "pattern",
		Explanation:   fmt.Sprintf("You seem to favor %s.", predicted),
		CoachTip:      "Try mixing up your moves.",
	}, vision)
}

func withTags(p Prediction, vision bool) Prediction {
	if vision {
		p.EmotionalState = EmotionNeutral
		p.MindGameEvent = MindGameNone
	}
	return p
}
