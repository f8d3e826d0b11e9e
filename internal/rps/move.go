package rps

import (
	"fmt"
	"strings"
)

// Move is one hand: rock, paper or scissors.
type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// Moves is the enumeration order used for tallies and tie-breaks.
var Moves = []Move{Rock, Paper, Scissors}

// ErrInvalidMove is wrapped by ParseMove.
var ErrInvalidMove = fmt.Errorf("invalid move")

var moveAliases = map[string]Move{
	"rock":     Rock,
	"r":        Rock,
	"바위":       Rock,
	"묵":        Rock,
	"paper":    Paper,
	"p":        Paper,
	"보":        Paper,
	"빠":        Paper,
	"scissors": Scissors,
	"s":        Scissors,
	"가위":       Scissors,
	"찌":        Scissors,
}

func (m Move) Valid() bool {
	switch m {
	case Rock, Paper, Scissors:
		return true
	}
	return false
}

func (m Move) String() string { return string(m) }

// ParseMove accepts canonical names plus short and Korean aliases.
func ParseMove(s string) (Move, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if mv, ok := moveAliases[key]; ok {
		return mv, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMove, s)
}

// Counter returns the move that beats m.
func Counter(m Move) Move {
	switch m {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	case Scissors:
		return Rock
	}
	return ""
}

// Beats reports whether a beats b.
func Beats(a, b Move) bool {
	return a.Valid() && Counter(b) == a
}

// Outcome names the winner of a round.
type Outcome string

const (
	OutcomePlayer Outcome = "player"
	OutcomeAI     Outcome = "ai"
	OutcomeDraw   Outcome = "draw"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomePlayer, OutcomeAI, OutcomeDraw:
		return true
	}
	return false
}

func Winner(player, ai Move) Outcome {
	if player == ai {
		return OutcomeDraw
	}
	if Beats(player, ai) {
		return OutcomePlayer
	}
	return OutcomeAI
}
