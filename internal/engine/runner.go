package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"market-replay-go/infrastructure/logger"
	"market-replay-go/market"
	"market-replay-go/posttrade"
	"market-replay-go/sim"
	"market-replay-go/strategy"
	"market-replay-go/telemetry"
)

const (
	// TickDuration 每次推进的模拟时间
	TickDuration = 100 * time.Millisecond

	startPollTimeout = 100 * time.Millisecond
	pausePollTimeout = 50 * time.Millisecond
	idlePollTimeout  = 200 * time.Millisecond

	defaultPollEvery      = 16 * time.Millisecond
	defaultTelemetryEvery = 33 * time.Millisecond
)

var (
	ErrNoFiles     = errors.New("no data files")
	ErrNilStrategy = errors.New("strategy is nil")
)

// SpeedParams 把倍速换算为每批推进次数和批间等待：
// >=100 每批 100 次不等待；[10,100) 每批 ceil(speed/10) 次等 1ms；其余每批 1 次等 10/speed ms。
func SpeedParams(speed float64) (int, time.Duration) {
	switch {
	case speed >= 100:
		return 100, 0
	case speed >= 10:
		return int(math.Ceil(speed / 10)), time.Millisecond
	}
	if speed < MinSpeed {
		speed = MinSpeed
	}
	// 整毫秒截断，加一个极小量吸收 10/0.1 之类的浮点误差
	ms := int(10/speed + 1e-9)
	return 1, time.Duration(ms) * time.Millisecond
}

type fileOutcome int

const (
	fileEnded fileOutcome = iota
	fileStopped
	fileSkipped
)

func (o fileOutcome) String() string {
	switch o {
	case fileStopped:
		return "stopped"
	case fileSkipped:
		return "skipped"
	default:
		return "ended"
	}
}

// Runner 依次回放数据文件，驱动策略并节流输出遥测。
// Run 所在的 goroutine 独占模拟器和策略状态。
type Runner struct {
	strat     strategy.Strategy
	files     []string
	ctrl      *Controller
	open      sim.Opener
	telemetry chan<- telemetry.PerformanceData
	log       *logger.Logger

	runID            string
	fallbackInterval uint64
	analyzer         *posttrade.Analyzer
	onDrop           func()
	onFinish         func(posttrade.Summary, string)
	sleep            func(time.Duration)
	pollLimiter      *rate.Limiter
	telemetryLimiter *rate.Limiter
}

// RunnerOption 执行器可选项
type RunnerOption func(*Runner)

// WithRunID 遥测中携带的会话 id
func WithRunID(id string) RunnerOption { return func(r *Runner) { r.runID = id } }

// WithUpdateInterval 策略未声明调用间隔时使用的默认值
func WithUpdateInterval(n uint64) RunnerOption {
	return func(r *Runner) { r.fallbackInterval = n }
}

// WithAnalyzer 文件结束时把统计交给 analyzer
func WithAnalyzer(a *posttrade.Analyzer) RunnerOption {
	return func(r *Runner) { r.analyzer = a }
}

// WithDropHook 遥测因通道满被丢弃时回调
func WithDropHook(fn func()) RunnerOption { return func(r *Runner) { r.onDrop = fn } }

// WithFinishHook 每个文件结束后回调，outcome 为 ended、stopped 或 skipped
func WithFinishHook(fn func(s posttrade.Summary, outcome string)) RunnerOption {
	return func(r *Runner) { r.onFinish = fn }
}

// WithPollEvery 运行中检查指令的间隔，0 表示每批都检查
func WithPollEvery(d time.Duration) RunnerOption {
	return func(r *Runner) { r.pollLimiter = newLimiter(d) }
}

// WithTelemetryEvery 遥测输出间隔，0 表示每批都输出
func WithTelemetryEvery(d time.Duration) RunnerOption {
	return func(r *Runner) { r.telemetryLimiter = newLimiter(d) }
}

// WithSleep 替换批间等待，测试中使用
func WithSleep(fn func(time.Duration)) RunnerOption { return func(r *Runner) { r.sleep = fn } }

func newLimiter(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

// NewRunner 创建执行器
func NewRunner(
	strat strategy.Strategy,
	files []string,
	ctrl *Controller,
	open sim.Opener,
	out chan<- telemetry.PerformanceData,
	log *logger.Logger,
	opts ...RunnerOption,
) (*Runner, error) {
	if strat == nil {
		return nil, ErrNilStrategy
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if ctrl == nil || open == nil {
		return nil, fmt.Errorf("controller and opener are required")
	}
	if log == nil {
		log = logger.Nop()
	}
	r := &Runner{
		strat:            strat,
		files:            append([]string(nil), files...),
		ctrl:             ctrl,
		open:             open,
		telemetry:        out,
		log:              log.Named("runner"),
		fallbackInterval: strategy.DefaultUpdateInterval,
		sleep:            pause,
		pollLimiter:      newLimiter(defaultPollEvery),
		telemetryLimiter: newLimiter(defaultTelemetryEvery),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
		return
	}
	runtime.Gosched()
}

// Files 当前文件列表
func (r *Runner) Files() []string { return append([]string(nil), r.files...) }

// Run 回放全部文件。结束后继续处理指令直到 ctx 结束，由宿主决定何时退出。
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("runner started",
		zap.String("strategy", r.strat.Name()),
		zap.Int("files", len(r.files)),
		zap.String("run_id", r.runID))

	for i := 0; i < len(r.files); i++ {
		if !r.waitForStart(ctx) {
			break
		}
		// 新列表替换尚未开始的文件，空列表表示不再回放
		if next, ok := r.ctrl.PendingFiles(); ok {
			r.files = append(r.files[:i:i], next...)
			r.log.Info("file list replaced", zap.Strings("remaining", next))
			if i >= len(r.files) {
				break
			}
		}
		path := r.files[i]
		r.log.Info("running file",
			zap.Int("index", i+1),
			zap.Int("total", len(r.files)),
			zap.String("file", path))

		outcome, err := r.runFile(ctx, path)
		if err != nil {
			r.log.LogError(err, map[string]interface{}{"file": path})
			r.ctrl.ReportError(err.Error())
			continue
		}
		if outcome == fileStopped {
			break
		}
	}

	if !r.ctrl.ShouldStop() && ctx.Err() == nil {
		r.ctrl.MarkCompleted()
		r.log.Info("all files processed")
	}
	for ctx.Err() == nil {
		r.ctrl.ProcessCommands(idlePollTimeout)
	}
	return nil
}

// waitForStart 等到 Running；停止或 ctx 结束返回 false
func (r *Runner) waitForStart(ctx context.Context) bool {
	for {
		if ctx.Err() != nil || r.ctrl.ShouldStop() {
			return false
		}
		if r.ctrl.IsRunning() {
			return true
		}
		r.ctrl.ProcessCommands(startPollTimeout)
	}
}

func (r *Runner) runFile(ctx context.Context, path string) (fileOutcome, error) {
	s, err := r.open(path)
	if err != nil {
		return fileEnded, fmt.Errorf("open %s: %w", path, err)
	}
	defer s.Close()

	if fs, ok := r.strat.(strategy.FileStarter); ok {
		fs.OnFileStart(path)
	}
	st := &strategy.State{}
	interval := strategy.UpdateInterval(r.strat, r.fallbackInterval)
	depth := strategy.OrderbookDepth(r.strat)
	ended := false

	for {
		if ended {
			return r.finish(s, st, path, fileEnded), nil
		}
		if ctx.Err() != nil || r.ctrl.ShouldStop() {
			return r.finish(s, st, path, fileStopped), nil
		}
		if r.ctrl.ShouldSkip() {
			return r.finish(s, st, path, fileSkipped), nil
		}
		if !r.ctrl.IsRunning() {
			r.ctrl.ProcessCommands(pausePollTimeout)
			continue
		}
		if r.pollLimiter.Allow() {
			r.ctrl.ProcessCommands(0)
			if r.ctrl.ShouldStop() {
				continue
			}
		}

		batch, delay := SpeedParams(r.ctrl.SpeedMultiplier())
		for n := 0; n < batch; n++ {
			out, err := s.Advance(int64(TickDuration))
			if err != nil {
				r.log.Warn("simulator error, ending file", zap.String("file", path), zap.Error(err))
				ended = true
				break
			}
			if out == sim.EndOfData {
				ended = true
				break
			}
			if !market.Valid(s.Depth()) {
				continue
			}
			st.UpdateCount++
			if st.UpdateCount%interval != 0 {
				continue
			}
			if err := r.strat.OnTick(strategy.NewTickContext(s), st); err != nil {
				r.log.Warn("tick failed", zap.Uint64("update", st.UpdateCount), zap.Error(err))
			}
		}

		if r.telemetryLimiter.Allow() {
			r.publish(s, st, depth)
		}
		r.sleep(delay)
	}
}

// finish 平仓、回调并汇报统计。被停止时不调用 OnFileEnd。
func (r *Runner) finish(s sim.Simulator, st *strategy.State, path string, outcome fileOutcome) fileOutcome {
	if pc, ok := r.strat.(strategy.PositionCloser); ok {
		if err := pc.ClosePosition(strategy.NewTickContext(s), st); err != nil {
			r.log.Warn("close position failed", zap.String("file", path), zap.Error(err))
		}
	}
	if outcome != fileStopped {
		if fe, ok := r.strat.(strategy.FileEnder); ok {
			fe.OnFileEnd(st)
		}
	}
	if outcome == fileSkipped {
		r.ctrl.ResetSkip()
	}
	r.publish(s, st, strategy.OrderbookDepth(r.strat))

	summary := posttrade.Summarize(path, r.strat.Name(), r.strat.InitialCapital(), st, outcome == fileStopped)
	if r.analyzer != nil {
		r.analyzer.Report(summary)
	}
	if r.onFinish != nil {
		r.onFinish(summary, outcome.String())
	}
	r.log.Info("file finished",
		zap.String("file", path),
		zap.Stringer("outcome", outcome),
		zap.Uint64("updates", st.UpdateCount),
		zap.Float64("total_pnl", summary.TotalPnL))
	return outcome
}

// publish 非阻塞发送一份遥测，盘口无效时跳过
func (r *Runner) publish(s sim.Simulator, st *strategy.State, depth int) {
	if r.telemetry == nil {
		return
	}
	d := s.Depth()
	if !market.Valid(d) {
		return
	}
	bids, asks := market.Levels(d, depth)
	pd := telemetry.PerformanceData{
		RunID:            r.runID,
		Timestamp:        float64(st.UpdateCount) * TickDuration.Seconds(),
		Equity:           st.Equity(r.strat.InitialCapital()),
		RealizedPnL:      st.RealizedPnL,
		UnrealizedPnL:    st.UnrealizedPnL,
		Position:         st.Position,
		MidPrice:         market.Mid(d),
		StrategyName:     r.strat.Name(),
		NumTrades:        st.NumTrades,
		WinningTrades:    st.WinningTrades,
		TotalFills:       st.TotalFills,
		TotalOrders:      st.TotalOrders,
		PositionHoldTime: st.AvgHoldTime,
		LatencyMicros:    telemetry.LatencyMicros,
		Bids:             bids,
		Asks:             asks,
	}
	select {
	case r.telemetry <- pd:
	default:
		if r.onDrop != nil {
			r.onDrop()
		}
	}
}
