package config

import (
	"strings"

	"market-replay-go/strategy"
)

// Validate ensures required fields are present. 所有问题合并成一个 ErrInvalid 返回。
func Validate(cfg AppConfig) error {
	var problems []string
	add := func(msg string) { problems = append(problems, msg) }

	if cfg.Data.Pattern == "" && len(cfg.Data.Files) == 0 {
		add("data.pattern or data.files is required")
	}
	if cfg.Data.TickSize <= 0 {
		add("data.tick_size must be > 0")
	}
	if cfg.Data.LotSize <= 0 {
		add("data.lot_size must be > 0")
	}
	if cfg.Replay.Speed <= 0 {
		add("replay.speed must be > 0")
	}
	if cfg.Replay.PollMs < 0 || cfg.Replay.TelemetryMs < 0 {
		add("replay.poll_ms/telemetry_ms must be >= 0")
	}
	if cfg.Server.CommandRate < 0 {
		add("server.command_rate must be >= 0")
	}
	if _, err := strategy.ParseKind(cfg.Strategy.Kind); err != nil {
		add("strategy.kind: " + err.Error())
	} else if _, err := cfg.StrategyConfig(); err != nil {
		add(err.Error())
	}
	if err := ValidateParams(cfg); err != nil {
		add(err.Error())
	}

	if len(problems) == 0 {
		return nil
	}
	return ErrInvalid(strings.Join(problems, "; "))
}
