package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"market-replay-go/infrastructure/logger"
)

// Controller 在操作员和执行线程之间传递指令和状态。
// 状态、倍速和标志都可以从任意 goroutine 无锁读取；
// 指令只由执行线程通过 ProcessCommands 消费。
type Controller struct {
	commands  <-chan Command
	responses chan<- Response
	log       *logger.Logger

	state      stateCell
	speed      *speedCell
	shouldStop atomic.Bool
	shouldSkip atomic.Bool

	mu           sync.Mutex
	pendingFiles []string
	hasPending   bool
}

// NewController 创建控制器，初始为 Paused、1 倍速。
func NewController(commands <-chan Command, responses chan<- Response, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop()
	}
	c := &Controller{
		commands:  commands,
		responses: responses,
		log:       log.Named("controller"),
		speed:     newSpeedCell(),
	}
	c.state.Store(StatePaused)
	return c
}

func (c *Controller) State() ControlState      { return c.state.Load() }
func (c *Controller) IsRunning() bool          { return c.state.Load() == StateRunning }
func (c *Controller) SpeedMultiplier() float64 { return c.speed.Load() }
func (c *Controller) ShouldStop() bool         { return c.shouldStop.Load() }
func (c *Controller) ShouldSkip() bool         { return c.shouldSkip.Load() }
func (c *Controller) ResetSkip()               { c.shouldSkip.Store(false) }

// PendingFiles 取走最近一次 ChangeFiles 的文件列表，只返回一次
func (c *Controller) PendingFiles() ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasPending {
		return nil, false
	}
	files := c.pendingFiles
	c.pendingFiles, c.hasPending = nil, false
	return files, true
}

// ProcessCommands 最多等待 timeout 取一条指令并处理，处理了返回 true。
// timeout<=0 时只做非阻塞检查。指令通道关闭后不再读取。
func (c *Controller) ProcessCommands(timeout time.Duration) bool {
	var (
		cmd Command
		ok  bool
	)
	if timeout <= 0 {
		select {
		case cmd, ok = <-c.commands:
		default:
			return false
		}
	} else {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case cmd, ok = <-c.commands:
		case <-timer.C:
			return false
		}
	}
	if !ok {
		c.log.Debug("command channel closed")
		c.commands = nil
		return false
	}
	c.apply(cmd)
	return true
}

// apply 任何状态下都接受任何指令，每条指令恰好一次状态变更和一条回应
func (c *Controller) apply(cmd Command) {
	c.log.LogControl(cmd.CommandType(), map[string]interface{}{"state": c.State().String()})

	switch v := cmd.(type) {
	case Start:
		c.state.Store(StateRunning)
		c.shouldStop.Store(false)
		c.respond(StateChanged{State: StateRunning})
	case Pause:
		c.state.Store(StatePaused)
		c.respond(StateChanged{State: StatePaused})
	case Stop:
		c.state.Store(StateStopped)
		c.shouldStop.Store(true)
		c.respond(StateChanged{State: StateStopped})
	case SetSpeed:
		c.respond(SpeedChanged{Speed: c.speed.Store(v.Speed)})
	case ChangeFiles:
		files := append([]string(nil), v.Files...)
		c.mu.Lock()
		c.pendingFiles, c.hasPending = files, true
		c.mu.Unlock()
		c.respond(FilesChanged{Files: files})
	case Skip:
		c.shouldSkip.Store(true)
		c.respond(Skipped{})
	case Reset:
		c.state.Store(StatePaused)
		c.shouldStop.Store(false)
		c.shouldSkip.Store(false)
		c.speed.Store(DefaultSpeed)
		c.respond(StateChanged{State: StatePaused})
	}
}

// Stop 不经过指令通道直接停止，不发送回应
func (c *Controller) Stop() {
	c.state.Store(StateStopped)
	c.shouldStop.Store(true)
	c.log.LogControl("stop_direct", nil)
}

// MarkCompleted 所有文件回放完毕且未被停止时由执行器调用
func (c *Controller) MarkCompleted() {
	c.state.Store(StateCompleted)
	c.respond(Completed{})
	c.log.LogControl("completed", nil)
}

// ReportError 向操作员发送错误回应
func (c *Controller) ReportError(msg string) {
	c.respond(ErrorResponse{Message: msg})
}

// respond 非阻塞发送；通道满或无人接收时丢弃
func (c *Controller) respond(r Response) {
	if c.responses == nil {
		return
	}
	select {
	case c.responses <- r:
	default:
		c.log.Warn("response dropped, operator gone?", zap.String("type", r.ResponseType()))
	}
}
