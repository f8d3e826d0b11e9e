package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/park285/Cheese-RPS-bot/internal/adapter/rpspresenter"
	"github.com/park285/Cheese-RPS-bot/internal/msgcat"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/internal/rpsbuilder"
	"github.com/park285/Cheese-RPS-bot/internal/service/round"
	"github.com/park285/Cheese-RPS-bot/internal/service/session"
)

type PlayCmd struct {
	Move        string `required:"" short:"m" help:"rock, paper or scissors (r/p/s, 바위/보/가위)"`
	State       string `default:"rps-state.json" help:"JSON file holding history and stats"`
	Personality string `help:"Friendly, Competitive or Coach"`
	Intent      string `help:"Onboarding answer sent with the round"`
	JSON        bool   `name:"json" help:"Print the raw API response"`
	Reset       bool   `help:"Start from an empty state"`
}

func (cmd *PlayCmd) Run(rt *runtime) error {
	move, err := rps.ParseMove(cmd.Move)
	if err != nil {
		return err
	}
	st := &localState{History: rps.History{}}
	if !cmd.Reset {
		if st, err = loadState(cmd.State); err != nil {
			return err
		}
	}
	if cmd.Personality != "" {
		p, err := rps.ParsePersonality(cmd.Personality)
		if err != nil {
			return err
		}
		st.Personality = p
	}
	if cmd.Intent != "" {
		st.Intent = cmd.Intent
	}

	engine, err := rpsbuilder.NewEngine(rt.cfg, rt.logger)
	if err != nil {
		return err
	}
	res, err := engine.Round.Play(context.Background(), round.Round{
		PlayerMove:  move,
		History:     st.History.Recent(rt.cfg.HistoryLimit),
		Stats:       st.Stats,
		Personality: st.Personality,
		Intent:      st.Intent,
	})
	if err != nil {
		return err
	}

	st.record(move, res.AIMove, res.Winner, rt.cfg.DrawPolicy)
	if err := saveState(cmd.State, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Response())
	}
	cat, err := msgcat.New(rt.cfg.MsgLocale, rt.cfg.MsgOverrideDir)
	if err != nil {
		return err
	}
	f := rpspresenter.NewFormatter(nil, cat)
	fmt.Println(f.Round(&session.PlayOutcome{Result: res, Session: &session.Session{Stats: st.Stats}}))
	fmt.Printf("(source=%s provider=%s latency=%s)\n", res.Source, res.Provider, res.Latency.Round(time.Millisecond))
	return nil
}
