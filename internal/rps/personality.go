package rps

import (
	"fmt"
	"strings"
)

// Personality only changes the tone of generated text.
type Personality string

const (
	Friendly    Personality = "Friendly"
	Competitive Personality = "Competitive"
	Coach       Personality = "Coach"
)

var Personalities = []Personality{Friendly, Competitive, Coach}

func (p Personality) Valid() bool {
	switch p {
	case Friendly, Competitive, Coach:
		return true
	}
	return false
}

// ParsePersonality is case-insensitive and also takes the Korean labels.
func ParsePersonality(s string) (Personality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "friendly", "친절":
		return Friendly, nil
	case "competitive", "승부", "승부사":
		return Competitive, nil
	case "coach", "코치":
		return Coach, nil
	}
	return "", fmt.Errorf("unknown personality: %s", s)
}
