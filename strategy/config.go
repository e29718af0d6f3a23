package strategy

import (
	"errors"
	"fmt"
)

// Kind 策略类型
type Kind string

const (
	KindMarketMaker Kind = "market_maker"
	KindMomentum    Kind = "momentum"
	KindPrediction  Kind = "prediction"
)

// DisplayName 展示名
func (k Kind) DisplayName() string {
	switch k {
	case KindMarketMaker:
		return "Market Making"
	case KindMomentum:
		return "Momentum"
	case KindPrediction:
		return "ML Prediction"
	default:
		return string(k)
	}
}

// ParseKind 解析策略类型
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMarketMaker, KindMomentum, KindPrediction:
		return Kind(s), nil
	case "mm", "market-maker":
		return KindMarketMaker, nil
	}
	return "", fmt.Errorf("unknown strategy kind %q", s)
}

// Config 是策略选择的封闭和类型，只有本包内的三个变体。
type Config interface {
	Kind() Kind
	Capital() float64
	Validate() error
	sealed()
}

var errNonPositive = errors.New("must be positive")

func positive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s %w (got %v)", name, errNonPositive, v)
	}
	return nil
}

// MarketMakerConfig 做市策略参数
type MarketMakerConfig struct {
	Gamma               float64 `yaml:"gamma" json:"gamma"`
	Kappa               float64 `yaml:"kappa" json:"kappa"` // 仅保留，定价未使用
	MaxInventory        float64 `yaml:"max_inventory" json:"max_inventory"`
	VolatilityThreshold float64 `yaml:"volatility_threshold" json:"volatility_threshold"`
	OrderSize           float64 `yaml:"order_size" json:"order_size"`
	DepthLevels         int     `yaml:"depth_levels" json:"depth_levels"`
	OrderLayers         int     `yaml:"order_layers" json:"order_layers"`
	InitialCapital      float64 `yaml:"initial_capital" json:"initial_capital"`
	// EvalInterval 每隔多少次有效更新检查并补单
	EvalInterval int `yaml:"eval_interval" json:"eval_interval"`
}

// DefaultMarketMaker 默认做市参数
func DefaultMarketMaker() MarketMakerConfig {
	return MarketMakerConfig{
		Gamma:               0.001,
		Kappa:               0.1,
		MaxInventory:        5,
		VolatilityThreshold: 5,
		OrderSize:           0.01,
		DepthLevels:         20,
		OrderLayers:         2,
		InitialCapital:      10000,
		EvalInterval:        10,
	}
}

func (MarketMakerConfig) Kind() Kind         { return KindMarketMaker }
func (c MarketMakerConfig) Capital() float64 { return c.InitialCapital }
func (MarketMakerConfig) sealed()            {}

func (c MarketMakerConfig) Validate() error {
	if c.Gamma < 0 {
		return fmt.Errorf("gamma must be non-negative (got %v)", c.Gamma)
	}
	if err := positive("max_inventory", c.MaxInventory); err != nil {
		return err
	}
	if err := positive("order_size", c.OrderSize); err != nil {
		return err
	}
	if err := positive("initial_capital", c.InitialCapital); err != nil {
		return err
	}
	if c.DepthLevels <= 0 || c.OrderLayers <= 0 || c.EvalInterval <= 0 {
		return fmt.Errorf("depth_levels, order_layers and eval_interval must be positive")
	}
	return nil
}

// MomentumConfig 动量策略参数
type MomentumConfig struct {
	LookbackPeriod    int     `yaml:"lookback_period" json:"lookback_period"`
	MomentumThreshold float64 `yaml:"momentum_threshold" json:"momentum_threshold"`
	PositionSize      float64 `yaml:"position_size" json:"position_size"`
	StopLossPct       float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TakeProfitPct     float64 `yaml:"take_profit_pct" json:"take_profit_pct"`
	InitialCapital    float64 `yaml:"initial_capital" json:"initial_capital"`
	EvalInterval      int     `yaml:"eval_interval" json:"eval_interval"`
}

// DefaultMomentum 默认动量参数
func DefaultMomentum() MomentumConfig {
	return MomentumConfig{
		LookbackPeriod:    100,
		MomentumThreshold: 0.002,
		PositionSize:      0.05,
		StopLossPct:       0.01,
		TakeProfitPct:     0.02,
		InitialCapital:    10000,
		EvalInterval:      10,
	}
}

func (MomentumConfig) Kind() Kind         { return KindMomentum }
func (c MomentumConfig) Capital() float64 { return c.InitialCapital }
func (MomentumConfig) sealed()            {}

func (c MomentumConfig) Validate() error {
	if c.LookbackPeriod < 2 {
		return fmt.Errorf("lookback_period must be at least 2 (got %d)", c.LookbackPeriod)
	}
	for name, v := range map[string]float64{
		"momentum_threshold": c.MomentumThreshold,
		"position_size":      c.PositionSize,
		"stop_loss_pct":      c.StopLossPct,
		"take_profit_pct":    c.TakeProfitPct,
		"initial_capital":    c.InitialCapital,
	} {
		if err := positive(name, v); err != nil {
			return err
		}
	}
	if c.EvalInterval <= 0 {
		return fmt.Errorf("eval_interval must be positive")
	}
	return nil
}

// PredictionConfig 预测策略参数
type PredictionConfig struct {
	PositionSize        float64 `yaml:"position_size" json:"position_size"`
	StopLossPct         float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	TakeProfitPct       float64 `yaml:"take_profit_pct" json:"take_profit_pct"`
	InitialCapital      float64 `yaml:"initial_capital" json:"initial_capital"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold"`
	LearningRate        float64 `yaml:"learning_rate" json:"learning_rate"`
	WarmupSamples       int     `yaml:"warmup_samples" json:"warmup_samples"`
	EvalInterval        int     `yaml:"eval_interval" json:"eval_interval"`
}

// DefaultPrediction 默认预测参数
func DefaultPrediction() PredictionConfig {
	return PredictionConfig{
		PositionSize:        0.05,
		StopLossPct:         0.005,
		TakeProfitPct:       0.01,
		InitialCapital:      10000,
		ConfidenceThreshold: 0.001,
		LearningRate:        0.001,
		WarmupSamples:       1000,
		EvalInterval:        10,
	}
}

func (PredictionConfig) Kind() Kind         { return KindPrediction }
func (c PredictionConfig) Capital() float64 { return c.InitialCapital }
func (PredictionConfig) sealed()            {}

func (c PredictionConfig) Validate() error {
	for name, v := range map[string]float64{
		"position_size":   c.PositionSize,
		"stop_loss_pct":   c.StopLossPct,
		"take_profit_pct": c.TakeProfitPct,
		"initial_capital": c.InitialCapital,
		"learning_rate":   c.LearningRate,
	} {
		if err := positive(name, v); err != nil {
			return err
		}
	}
	if c.ConfidenceThreshold < 0 {
		return fmt.Errorf("confidence_threshold must be non-negative")
	}
	if c.WarmupSamples < 0 || c.EvalInterval <= 0 {
		return fmt.Errorf("warmup_samples must be >= 0 and eval_interval positive")
	}
	return nil
}
