package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"market-replay-go/gateway"
	"market-replay-go/infrastructure/logger"
	"market-replay-go/sim"
	"market-replay-go/strategy"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Log      logger.Config  `yaml:"log"`
	Data     DataConfig     `yaml:"data"`
	Replay   ReplayConfig   `yaml:"replay"`
	Strategy StrategyBlock  `yaml:"strategy"`
	Server   gateway.Config `yaml:"server"`
}

// DataConfig 数据文件与合约精度
type DataConfig struct {
	Pattern  string   `yaml:"pattern"` // glob，例如 data/*.csv
	Files    []string `yaml:"files"`   // 显式列表，排在 glob 结果之前
	TickSize float64  `yaml:"tick_size"`
	LotSize  float64  `yaml:"lot_size"`
	MakerFee float64  `yaml:"maker_fee"` // 负数为返佣
	TakerFee float64  `yaml:"taker_fee"`
}

// ReplayConfig 回放控制参数
type ReplayConfig struct {
	Speed          float64 `yaml:"speed"`
	Autostart      bool    `yaml:"autostart"`        // 启动后立即发送 Start
	ExitOnComplete bool    `yaml:"exit_on_complete"` // 全部文件回放完后退出进程
	UpdateInterval uint64  `yaml:"update_interval"`  // 策略未声明间隔时的默认值
	PollMs         int     `yaml:"poll_ms"`
	TelemetryMs    int     `yaml:"telemetry_ms"`
}

// StrategyBlock 策略选择与三种策略的参数；只有 kind 对应的那一块生效
type StrategyBlock struct {
	Kind        string                     `yaml:"kind"`
	MarketMaker strategy.MarketMakerConfig `yaml:"market_maker"`
	Momentum    strategy.MomentumConfig    `yaml:"momentum"`
	Prediction  strategy.PredictionConfig  `yaml:"prediction"`
}

// Default 返回全部字段都有默认值的配置，YAML 只需覆盖需要修改的部分
func Default() AppConfig {
	simDefaults := sim.DefaultConfig()
	return AppConfig{
		Log: logger.DefaultConfig(),
		Data: DataConfig{
			TickSize: simDefaults.TickSize,
			LotSize:  simDefaults.LotSize,
			MakerFee: simDefaults.MakerFee,
			TakerFee: simDefaults.TakerFee,
		},
		Replay: ReplayConfig{
			Speed:          1,
			UpdateInterval: strategy.DefaultUpdateInterval,
			PollMs:         16,
			TelemetryMs:    33,
		},
		Strategy: StrategyBlock{
			Kind:        string(strategy.KindMarketMaker),
			MarketMaker: strategy.DefaultMarketMaker(),
			Momentum:    strategy.DefaultMomentum(),
			Prediction:  strategy.DefaultPrediction(),
		},
		Server: gateway.DefaultConfig(),
	}
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then applies REPLAY_* env overrides if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, Validate(cfg)
}

// ApplyEnv 用环境变量覆盖倍速、策略和数据 glob
func ApplyEnv(cfg *AppConfig) error {
	if v := os.Getenv("REPLAY_SPEED"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return ErrInvalid(fmt.Sprintf("REPLAY_SPEED %q is not a number", v))
		}
		cfg.Replay.Speed = speed
	}
	if v := os.Getenv("REPLAY_STRATEGY"); v != "" {
		cfg.Strategy.Kind = v
	}
	if v := os.Getenv("REPLAY_DATA_PATTERN"); v != "" {
		cfg.Data.Pattern = v
	}
	return nil
}

// StrategyConfig 按 kind 取出对应的参数块
func (c AppConfig) StrategyConfig() (strategy.Config, error) {
	kind, err := strategy.ParseKind(c.Strategy.Kind)
	if err != nil {
		return nil, err
	}
	var sc strategy.Config
	switch kind {
	case strategy.KindMarketMaker:
		sc = c.Strategy.MarketMaker
	case strategy.KindMomentum:
		sc = c.Strategy.Momentum
	case strategy.KindPrediction:
		sc = c.Strategy.Prediction
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", kind, err)
	}
	return sc, nil
}

// SimConfig 回放模拟器参数
func (c AppConfig) SimConfig() sim.Config {
	return sim.Config{
		TickSize: c.Data.TickSize,
		LotSize:  c.Data.LotSize,
		MakerFee: c.Data.MakerFee,
		TakerFee: c.Data.TakerFee,
	}
}

// ResolveFiles 展开数据文件列表
func (c AppConfig) ResolveFiles() ([]string, error) {
	return sim.ResolveFiles(c.Data.Files, c.Data.Pattern)
}
