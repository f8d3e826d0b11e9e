package rps

type EmotionalState string

const (
	EmotionCalm       EmotionalState = "calm"
	EmotionFrustrated EmotionalState = "frustrated"
	EmotionExcited    EmotionalState = "excited"
	EmotionNeutral    EmotionalState = "neutral"
)

var EmotionalStates = []EmotionalState{EmotionCalm, EmotionFrustrated, EmotionExcited, EmotionNeutral}

func (e EmotionalState) Valid() bool {
	for _, v := range EmotionalStates {
		if e == v {
			return true
		}
	}
	return false
}

// MindGameEvent is narrative only. It never changes move selection.
type MindGameEvent string

const (
	MindGameNone                  MindGameEvent = "none"
	MindGameBluffRound            MindGameEvent = "bluff_round"
	MindGamePsychologicalPressure MindGameEvent = "psychological_pressure"
	MindGameConfidenceTrap        MindGameEvent = "confidence_trap"
)

var MindGameEvents = []MindGameEvent{MindGameNone, MindGameBluffRound, MindGamePsychologicalPressure, MindGameConfidenceTrap}

func (m MindGameEvent) Valid() bool {
	for _, v := range MindGameEvents {
		if m == v {
			return true
		}
	}
	return false
}

// PlayerStyles are hints offered to the model; any non-empty tag is accepted back.
var PlayerStyles = []string{
	"pattern", "rock-biased", "paper-biased", "scissors-biased",
	"reactive-to-loss", "random", "tilted", "confident",
}

type Prediction struct {
	PredictedMove  Move
	Confidence     int
	PlayerStyle    string
	Explanation    string
	CoachTip       string
	EmotionalState EmotionalState
	MindGameEvent  MindGameEvent
}
