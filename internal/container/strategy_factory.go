package container

import (
	"fmt"

	"market-replay-go/infrastructure/logger"
	"market-replay-go/strategy"
	"market-replay-go/strategy/marketmaker"
	"market-replay-go/strategy/momentum"
	"market-replay-go/strategy/prediction"
)

// BuildStrategy 按配置变体创建策略
func BuildStrategy(cfg strategy.Config, log *logger.Logger) (strategy.Strategy, error) {
	if cfg == nil {
		return nil, fmt.Errorf("strategy config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", cfg.Kind(), err)
	}
	switch c := cfg.(type) {
	case strategy.MarketMakerConfig:
		return marketmaker.New(c, log), nil
	case strategy.MomentumConfig:
		return momentum.New(c, log), nil
	case strategy.PredictionConfig:
		return prediction.New(c, log), nil
	default:
		return nil, fmt.Errorf("unsupported strategy config %T", cfg)
	}
}
