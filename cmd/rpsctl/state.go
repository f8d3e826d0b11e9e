package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/park285/Cheese-RPS-bot/internal/rps"
)

// localState is what the play command keeps between runs.
type localState struct {
	History     rps.History     `json:"history"`
	Stats       rps.Stats       `json:"stats"`
	Personality rps.Personality `json:"personality,omitempty"`
	Intent      string          `json:"intent,omitempty"`
}

// loadState returns an empty state when path does not exist.
func loadState(path string) (*localState, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &localState{History: rps.History{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var st localState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", path, err)
	}
	if err := st.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("state %s: %w", path, err)
	}
	if len(st.History) > rps.MaxHistory {
		st.History = st.History[:rps.MaxHistory]
	}
	return &st, nil
}

// saveState writes through a temp file so a crash never leaves half a file.
func saveState(path string, st *localState) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// record applies a finished round.
func (st *localState) record(player, ai rps.Move, winner rps.Outcome, policy rps.DrawPolicy) {
	st.Stats = st.Stats.Apply(winner, policy)
	st.History = st.History.Prepend(rps.RoundRecord{Player: player, AI: ai, Winner: winner})
}
