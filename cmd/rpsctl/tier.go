package main

import "fmt"

type TierCmd struct {
	Win  int `help:"Current win streak" default:"0"`
	Lose int `help:"Current lose streak" default:"0"`
}

func (cmd *TierCmd) Run(rt *runtime) error {
	if cmd.Win < 0 || cmd.Lose < 0 {
		return fmt.Errorf("streaks must be non-negative")
	}
	policy := rt.cfg.Difficulty
	t := policy.Tier(cmd.Win, cmd.Lose)
	fmt.Printf("tier=%s follow=%.2f\n", t, policy.FollowProbability(t))
	return nil
}
