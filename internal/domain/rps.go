package domain

import "time"

// RoundLog is one persisted round.
type RoundLog struct {
	ID               int64
	RoundUUID        string
	SessionUUID      string
	PlayerHash       string
	RoomHash         string
	PlayerMove       string
	AIMove           string
	Winner           string
	PredictedMove    string
	Confidence       int
	Tier             string
	Personality      string
	PlayerStyle      string
	EmotionalState   string
	MindGameEvent    string
	PredictionSource string
	Followed         bool
	HesitationMs     int
	ModelLatency     time.Duration
	PlayedAt         time.Time
}

// PlayerProfile aggregates every round a player played in a room.
type PlayerProfile struct {
	PlayerHash           string
	RoomHash             string
	PreferredPersonality string
	RoundsPlayed         int
	Wins                 int
	Losses               int
	Draws                int
	Streak               int
	StreakType           string
	BestWinStreak        int
	LastPlayedAt         time.Time
	UpdatedAt            time.Time
	CreatedAt            time.Time
}
