package rpsdto

import "encoding/json"

// PlayRequest keeps loosely-typed fields raw so the orchestrator can
// report which one is wrong.
type PlayRequest struct {
	PlayerMove       json.RawMessage `json:"playerMove"`
	History          json.RawMessage `json:"history"`
	Stats            json.RawMessage `json:"stats"`
	Personality      json.RawMessage `json:"personality,omitempty"`
	OnboardingAnswer json.RawMessage `json:"onboardingAnswer,omitempty"`
	Biometric        json.RawMessage `json:"biometric,omitempty"`
}

type PlayResponse struct {
	AIMove              string `json:"aiMove"`
	PredictedPlayerMove string `json:"predictedPlayerMove"`
	Confidence          int    `json:"confidence"`
	Winner              string `json:"winner"`
	PlayerStyle         string `json:"playerStyle"`
	Explanation         string `json:"explanation"`
	CoachTip            string `json:"coachTip"`
	DifficultyLevel     string `json:"difficultyLevel"`
	EmotionalState      string `json:"emotionalState,omitempty"`
	MindGameEvent       string `json:"mindGameEvent,omitempty"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	AIProvider string `json:"ai_provider"`
	Model      string `json:"model,omitempty"`
	Timestamp  string `json:"timestamp"`
}
