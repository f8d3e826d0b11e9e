package rps

import (
	"fmt"
	"strings"
)

type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

func (t Tier) Valid() bool {
	switch t {
	case TierEasy, TierMedium, TierHard:
		return true
	}
	return false
}

// DifficultyPolicy maps streaks to a tier and a tier to the chance of
// playing the counter of the prediction.
type DifficultyPolicy struct {
	HardWinStreak  int
	EasyLoseStreak int
	FollowEasy     float64
	FollowMedium   float64
	FollowHard     float64
}

func DefaultDifficulty() DifficultyPolicy {
	return DifficultyPolicy{
		HardWinStreak:  2,
		EasyLoseStreak: 2,
		FollowEasy:     0.4,
		FollowMedium:   0.7,
		FollowHard:     0.9,
	}
}

func (p DifficultyPolicy) Validate() error {
	switch {
	case p.HardWinStreak < 1:
		return fmt.Errorf("hard win streak must be >= 1: %d", p.HardWinStreak)
	case p.EasyLoseStreak < 1:
		return fmt.Errorf("easy lose streak must be >= 1: %d", p.EasyLoseStreak)
	}
	for _, t := range []Tier{TierEasy, TierMedium, TierHard} {
		if v := p.FollowProbability(t); v < 0 || v > 1 {
			return fmt.Errorf("follow probability for %s out of range [0,1]: %f", t, v)
		}
	}
	return nil
}

// Tier is hard while the player is on a win streak and easy on a losing streak.
func (p DifficultyPolicy) Tier(winStreak, loseStreak int) Tier {
	if winStreak >= p.HardWinStreak {
		return TierHard
	}
	if loseStreak >= p.EasyLoseStreak {
		return TierEasy
	}
	return TierMedium
}

func (p DifficultyPolicy) FollowProbability(t Tier) float64 {
	switch t {
	case TierEasy:
		return p.FollowEasy
	case TierHard:
		return p.FollowHard
	default:
		return p.FollowMedium
	}
}

// ShouldFollow draws one sample in [0,1) and compares it to the tier's probability.
func (p DifficultyPolicy) ShouldFollow(t Tier, src Source) bool {
	return src.Float64() < p.FollowProbability(t)
}

func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tier: %s", s)
	}
	return t, nil
}
