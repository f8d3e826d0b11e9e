package main

import (
	"context"
	"fmt"
	"time"

	"github.com/park285/Cheese-RPS-bot/internal/irisfast"
	"github.com/park285/Cheese-RPS-bot/internal/oracle"
	"github.com/park285/Cheese-RPS-bot/internal/rps"
	"github.com/park285/Cheese-RPS-bot/internal/rpsbuilder"
)

type CheckCmd struct {
	SkipIris bool `help:"Do not probe the Iris bridge"`
	SkipLLM  bool `name:"skip-llm" help:"Do not call the LLM provider"`
}

func (cmd *CheckCmd) Run(rt *runtime) error {
	failed := 0

	if !cmd.SkipIris {
		if rt.cfg.IrisBaseURL == "" {
			fmt.Println("iris: IRIS_BASE_URL not set; skipped")
		} else {
			client := irisfast.NewClient(rt.cfg.IrisBaseURL,
				irisfast.WithTimeout(8*time.Second),
				irisfast.WithHeaderProvider(func() map[string]string {
					return map[string]string{
						"X-User-Id":    rt.cfg.XUserID,
						"X-User-Email": rt.cfg.XUserEmail,
						"X-Session-Id": rt.cfg.XSessionID,
					}
				}),
			)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			cfg, err := client.GetConfig(ctx)
			cancel()
			if err != nil {
				failed++
				fmt.Printf("iris: /config error: %v\n", err)
			} else {
				fmt.Printf("iris: /config ok port=%d polling=%d rate=%d endpoint=%s\n", cfg.Port, cfg.PollingSpeed, cfg.MessageRate, cfg.WebserverEndpoint)
			}
		}
	}

	if !cmd.SkipLLM {
		engine, err := rpsbuilder.NewEngine(rt.cfg, rt.logger)
		if err != nil {
			return err
		}
		res := engine.Opponent.Predict(context.Background(), oracle.RoundContext{
			History:     rps.History{{Player: rps.Rock, AI: rps.Paper, Winner: rps.OutcomeAI}},
			Personality: rps.Coach,
			Tier:        rps.TierMedium,
		})
		fmt.Printf("llm: provider=%s model=%s source=%s latency=%s predicted=%s\n",
			res.Provider, engine.Opponent.ModelName(), res.Source, res.Latency.Round(time.Millisecond), res.Prediction.PredictedMove)
		if engine.Opponent.ProviderName() != "none" && res.Source != oracle.SourceModel {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
