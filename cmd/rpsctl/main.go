package main

import (
	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	appcfg "github.com/park285/Cheese-RPS-bot/internal/config"
	"github.com/park285/Cheese-RPS-bot/internal/obslog"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	LogLevel string           `help:"Log level (default warn)"`

	Play  PlayCmd  `cmd:"" help:"Play one round against the configured opponent, keeping state in a JSON file"`
	Check CheckCmd `cmd:"" help:"Probe the Iris bridge and the LLM provider"`
	Tier  TierCmd  `cmd:"" help:"Show the difficulty tier for a streak"`
}

// runtime is bound into every command's Run.
type runtime struct {
	cfg    *appcfg.AppConfig
	logger *zap.Logger
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rpsctl"),
		kong.Description("Rock-paper-scissors opponent tooling"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)

	cfg, err := appcfg.Load()
	ctx.FatalIfErrorf(err)
	// warn and above unless --log-level is set
	cfg.Log.Console = true
	cfg.Log.Level = "warn"
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	logger, err := obslog.Init(cfg.Log)
	ctx.FatalIfErrorf(err)
	defer obslog.Sync()

	ctx.FatalIfErrorf(ctx.Run(&runtime{cfg: cfg, logger: logger}))
}
