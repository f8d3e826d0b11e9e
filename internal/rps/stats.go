package rps

import (
	"fmt"
	"strings"
)

type Stats struct {
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	Draws      int `json:"draws"`
	WinStreak  int `json:"winStreak"`
	LoseStreak int `json:"loseStreak"`
}

// DrawPolicy decides what a draw does to the streaks.
type DrawPolicy string

const (
	DrawKeepStreaks  DrawPolicy = "keep"
	DrawResetStreaks DrawPolicy = "reset"
)

func ParseDrawPolicy(s string) (DrawPolicy, error) {
	switch p := DrawPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DrawKeepStreaks, nil
	case DrawKeepStreaks, DrawResetStreaks:
		return p, nil
	}
	return "", fmt.Errorf("unknown draw policy: %s", s)
}

func (s Stats) Validate() error {
	if s.Wins < 0 || s.Losses < 0 || s.Draws < 0 || s.WinStreak < 0 || s.LoseStreak < 0 {
		return fmt.Errorf("stats must be non-negative")
	}
	return nil
}

func (s Stats) Rounds() int { return s.Wins + s.Losses + s.Draws }

// Apply returns the stats after one round. Winner's streak grows, the other resets.
func (s Stats) Apply(o Outcome, policy DrawPolicy) Stats {
	switch o {
	case OutcomePlayer:
		s.Wins++
		s.WinStreak++
		s.LoseStreak = 0
	case OutcomeAI:
		s.Losses++
		s.LoseStreak++
		s.WinStreak = 0
	case OutcomeDraw:
		s.Draws++
		if policy == DrawResetStreaks {
			s.WinStreak = 0
			s.LoseStreak = 0
		}
	}
	return s
}
