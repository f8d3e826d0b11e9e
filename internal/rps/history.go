package rps

import (
	"fmt"
	"strings"
)

const (
	// MaxHistory is the most rounds a history keeps.
	MaxHistory    = 50
	SummaryWindow = 10
	NoHistory     = "No history."
)

// RoundRecord is one completed round. Never mutated after creation.
type RoundRecord struct {
	Player Move    `json:"player"`
	AI     Move    `json:"ai"`
	Winner Outcome `json:"winner"`
}

// History is most-recent-first.
type History []RoundRecord

// Prepend returns a new history with r in front, truncated to MaxHistory.
func (h History) Prepend(r RoundRecord) History {
	n := len(h) + 1
	if n > MaxHistory {
		n = MaxHistory
	}
	out := make(History, 0, n)
	out = append(out, r)
	out = append(out, h[:n-1]...)
	return out
}

// Recent returns at most n of the newest entries.
func (h History) Recent(n int) History {
	if n < 0 {
		n = 0
	}
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}

// Counts tallies player moves. Entries with unknown moves are skipped.
func (h History) Counts() map[Move]int {
	counts := map[Move]int{Rock: 0, Paper: 0, Scissors: 0}
	for _, r := range h {
		if _, ok := counts[r.Player]; ok {
			counts[r.Player]++
		}
	}
	return counts
}

// Summarize renders a prompt-sized digest with only move labels.
func Summarize(h History) string {
	if len(h) == 0 {
		return NoHistory
	}
	recent := h.Recent(SummaryWindow)
	counts := recent.Counts()
	pairs := make([]string, 0, len(recent))
	for _, r := range recent {
		pairs = append(pairs, fmt.Sprintf("P:%s/AI:%s", r.Player, r.AI))
	}
	return fmt.Sprintf("Rounds: %d. Last %d R:%d, P:%d, S:%d. Recent: %s",
		len(h), len(recent), counts[Rock], counts[Paper], counts[Scissors], strings.Join(pairs, ", "))
}
