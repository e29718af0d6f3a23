package container

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"market-replay-go/config"
	"market-replay-go/gateway"
	"market-replay-go/infrastructure/logger"
	"market-replay-go/infrastructure/monitor"
	"market-replay-go/internal/engine"
	"market-replay-go/posttrade"
	"market-replay-go/sim"
	"market-replay-go/strategy"
	"market-replay-go/telemetry"
)

const (
	commandBuffer   = 64
	responseBuffer  = 64
	telemetryBuffer = 256
)

// Container 依赖注入容器，构建回放会话的全部组件并管理其生命周期
type Container struct {
	// 配置
	cfg        config.AppConfig
	configPath string

	// 基础设施
	logger   *logger.Logger
	monitor  *monitor.Monitor
	analyzer *posttrade.Analyzer

	// 通道
	commands  chan engine.Command
	responses chan engine.Response
	telemetry chan telemetry.PerformanceData

	// 核心组件
	runID    string
	strat    strategy.Strategy
	ctrl     *engine.Controller
	runner   *engine.Runner
	hub      *gateway.Hub
	server   *gateway.Server
	reloader *config.Reloader

	opener    sim.Opener
	lifecycle *LifecycleManager
}

// Option 容器可选项
type Option func(*Container)

// WithLogger 使用已有 logger，不再按配置创建
func WithLogger(l *logger.Logger) Option { return func(c *Container) { c.logger = l } }

// WithOpener 替换数据文件打开方式
func WithOpener(o sim.Opener) Option { return func(c *Container) { c.opener = o } }

// WithRunID 指定会话 id，默认随机生成
func WithRunID(id string) Option { return func(c *Container) { c.runID = id } }

// New 读取配置文件创建容器，配置文件同时用于热更新
func New(configPath string, opts ...Option) (*Container, error) {
	cfg, err := config.LoadWithEnvOverrides(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	c := NewWithConfig(cfg, opts...)
	c.configPath = configPath
	return c, nil
}

// NewWithConfig 用已加载的配置创建容器，不启用热更新
func NewWithConfig(cfg config.AppConfig, opts ...Option) *Container {
	c := &Container{
		cfg:       cfg,
		commands:  make(chan engine.Command, commandBuffer),
		responses: make(chan engine.Response, responseBuffer),
		telemetry: make(chan telemetry.PerformanceData, telemetryBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runID == "" {
		c.runID = uuid.NewString()
	}
	return c
}

// Build 构建所有组件
func (c *Container) Build() error {
	if err := c.buildInfrastructure(); err != nil {
		return fmt.Errorf("build infrastructure failed: %w", err)
	}
	if err := c.buildEngine(); err != nil {
		return fmt.Errorf("build engine failed: %w", err)
	}
	if err := c.buildGateway(); err != nil {
		return fmt.Errorf("build gateway failed: %w", err)
	}
	c.registerLifecycleComponents()
	c.logger.Info("container built",
		zap.String("run_id", c.runID),
		zap.String("strategy", c.strat.Name()))
	return nil
}

func (c *Container) buildInfrastructure() error {
	if c.logger == nil {
		l, err := logger.New(c.cfg.Log)
		if err != nil {
			return fmt.Errorf("create logger failed: %w", err)
		}
		c.logger = l
	}
	c.monitor = monitor.New(monitor.DefaultConfig())
	c.analyzer = posttrade.NewAnalyzer(c.logger)
	c.lifecycle = NewLifecycleManager(c.logger)
	return nil
}

func (c *Container) buildEngine() error {
	sc, err := c.cfg.StrategyConfig()
	if err != nil {
		return err
	}
	c.strat, err = BuildStrategy(sc, c.logger)
	if err != nil {
		return err
	}
	files, err := c.cfg.ResolveFiles()
	if err != nil {
		return err
	}
	if c.opener == nil {
		c.opener = sim.NewOpener(c.cfg.SimConfig())
	}

	c.ctrl = engine.NewController(c.commands, c.responses, c.logger)
	c.runner, err = engine.NewRunner(c.strat, files, c.ctrl, c.opener, c.telemetry, c.logger,
		engine.WithRunID(c.runID),
		engine.WithUpdateInterval(c.cfg.Replay.UpdateInterval),
		engine.WithAnalyzer(c.analyzer),
		engine.WithDropHook(c.monitor.RecordDropped),
		engine.WithFinishHook(func(_ posttrade.Summary, outcome string) {
			c.monitor.RecordFileFinished(outcome)
		}),
		engine.WithPollEvery(time.Duration(c.cfg.Replay.PollMs)*time.Millisecond),
		engine.WithTelemetryEvery(time.Duration(c.cfg.Replay.TelemetryMs)*time.Millisecond),
	)
	if err != nil {
		return err
	}

	// 初始倍速和自动开始都走指令通道，与操作员指令同序
	if c.cfg.Replay.Speed != engine.DefaultSpeed {
		c.commands <- engine.SetSpeed{Speed: c.cfg.Replay.Speed}
	}
	if c.cfg.Replay.Autostart {
		c.commands <- engine.Start{}
	}

	if c.configPath != "" {
		c.reloader, err = config.NewReloader(c.configPath, c.cfg, c.commands, c.logger)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) buildGateway() error {
	if c.cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is empty")
	}
	c.hub = gateway.NewHub(c.logger)
	c.server = gateway.NewServer(c.cfg.Server, c.hub, c.commands, c.logger,
		gateway.WithMetrics(c.monitor, c.monitor.Handler()))
	return nil
}

func (c *Container) registerLifecycleComponents() {
	c.lifecycle.Register(componentFunc{"runner", c.runner.Run})
	c.lifecycle.Register(componentFunc{"gateway", c.server.Run})
	c.lifecycle.Register(componentFunc{"telemetry_pump", c.pumpTelemetry})
	c.lifecycle.Register(componentFunc{"response_pump", c.pumpResponses})
	if c.reloader != nil {
		c.lifecycle.Register(componentFunc{"config_reloader", c.reloader.Run})
	}
}

// Run 运行到 ctx 结束；配置了 exit_on_complete 时回放完成后返回
func (c *Container) Run(ctx context.Context) error {
	c.logger.Info("starting container...")

	// 外部退出先停控制器，再让各组件收尾
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			c.stopSession()
			cancel()
		case <-runCtx.Done():
		}
	}()

	err := c.lifecycle.RunAll(runCtx)
	c.logSessionTotals()
	return err
}

// stopSession 收到退出信号时把控制器置为停止，并同步到指标和观察端
func (c *Container) stopSession() {
	if c.ctrl.State() == engine.StateCompleted {
		return
	}
	c.ctrl.Stop()
	c.monitor.UpdateControlState(int(engine.StateStopped))
	msg, err := gateway.EncodeResponse(engine.StateChanged{State: engine.StateStopped})
	if err != nil {
		c.logger.Warn("encode stop response failed", zap.Error(err))
		return
	}
	c.hub.Broadcast(msg)
}

// Stop 刷新日志
func (c *Container) Stop() error {
	if c.logger != nil {
		c.logger.Info("container stopped")
		return c.logger.Close()
	}
	return nil
}

// HealthCheck 所有组件都在运行时返回 nil
func (c *Container) HealthCheck() error {
	return c.lifecycle.CheckHealth()
}

// Commands 操作员指令入口
func (c *Container) Commands() chan<- engine.Command { return c.commands }

// Analyzer 文件统计
func (c *Container) Analyzer() *posttrade.Analyzer { return c.analyzer }

// Monitor 指标
func (c *Container) Monitor() *monitor.Monitor { return c.monitor }

// Controller 控制器，只读查询使用
func (c *Container) Controller() *engine.Controller { return c.ctrl }

// Logger 容器使用的 logger
func (c *Container) Logger() *logger.Logger { return c.logger }

// RunID 会话 id
func (c *Container) RunID() string { return c.runID }

// pumpTelemetry 把遥测送到指标和所有观察端
func (c *Container) pumpTelemetry(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case pd := <-c.telemetry:
			c.monitor.ObservePerformance(pd)
			c.monitor.UpdateSpeed(c.ctrl.SpeedMultiplier())
			msg, err := gateway.EncodePerformance(pd)
			if err != nil {
				c.logger.Warn("encode telemetry failed", zap.Error(err))
				continue
			}
			c.hub.Broadcast(msg)
		}
	}
}

// pumpResponses 把指令回应广播出去；exit_on_complete 时在 Completed 后结束会话
func (c *Container) pumpResponses(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-c.responses:
			c.monitor.RecordResponse(r.ResponseType())
			c.monitor.UpdateControlState(int(c.ctrl.State()))
			c.monitor.UpdateSpeed(c.ctrl.SpeedMultiplier())
			c.logger.LogControl("response_"+r.ResponseType(), map[string]interface{}{
				"state": c.ctrl.State().String(),
			})
			if msg, err := gateway.EncodeResponse(r); err == nil {
				c.hub.Broadcast(msg)
			}
			if _, done := r.(engine.Completed); done && c.cfg.Replay.ExitOnComplete {
				return ErrCompleted
			}
		}
	}
}

func (c *Container) logSessionTotals() {
	t := c.analyzer.Totals()
	c.logger.Info("session totals",
		zap.String("run_id", c.runID),
		zap.Int("files", t.Files),
		zap.Float64("total_pnl", t.TotalPnL),
		zap.Int("trades", t.NumTrades),
		zap.Float64("win_rate", t.WinRate()))
}
