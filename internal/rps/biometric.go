package rps

import "fmt"

type Emotion string

const (
	EmotionAgitated    Emotion = "Agitated"
	EmotionCalmFocused Emotion = "Calm/Focused"
)

const (
	AgitationThreshold = 20

	movementSampleStride = 16
	movementDivisor      = 500
	maxMovementScore     = 100
)

// BiometricSignal is per-round context only. It is never stored.
type BiometricSignal struct {
	HesitationMs    int     `json:"hesitationMs"`
	MovementScore   int     `json:"movementScore"`
	InferredEmotion Emotion `json:"inferredEmotion"`
}

func (b BiometricSignal) Validate() error {
	if b.HesitationMs < 0 {
		return fmt.Errorf("hesitation must be >= 0: %d", b.HesitationMs)
	}
	if b.MovementScore < 0 || b.MovementScore > maxMovementScore {
		return fmt.Errorf("movement score out of range 0-100: %d", b.MovementScore)
	}
	switch b.InferredEmotion {
	case "", EmotionAgitated, EmotionCalmFocused:
	default:
		return fmt.Errorf("unknown emotion: %s", b.InferredEmotion)
	}
	return nil
}

// Normalize fills a missing emotion from the movement score.
func (b BiometricSignal) Normalize() BiometricSignal {
	if b.InferredEmotion == "" {
		b.InferredEmotion = InferEmotion(b.MovementScore)
	}
	return b
}

func InferEmotion(movement int) Emotion {
	if movement > AgitationThreshold {
		return EmotionAgitated
	}
	return EmotionCalmFocused
}

// MovementScore compares two RGBA frames on the red channel of every
// fourth pixel. Frames of different length are compared on the shared prefix.
func MovementScore(prev, cur []byte) int {
	n := len(prev)
	if len(cur) < n {
		n = len(cur)
	}
	diff := 0
	for i := 0; i < n; i += movementSampleStride {
		d := int(cur[i]) - int(prev[i])
		if d < 0 {
			d = -d
		}
		diff += d
	}
	score := diff / movementDivisor
	if score > maxMovementScore {
		return maxMovementScore
	}
	return score
}
