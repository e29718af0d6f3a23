package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// ControlState 操作员控制状态
type ControlState int32

const (
	// StatePaused 暂停（初始状态）
	StatePaused ControlState = iota
	// StateRunning 运行
	StateRunning
	// StateStopped 停止，同一会话内不会恢复
	StateStopped
	// StateCompleted 所有文件都已回放完
	StateCompleted
)

// String 返回状态名称
func (s ControlState) String() string {
	switch s {
	case StatePaused:
		return "PAUSED"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

func (s ControlState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ControlState) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "PAUSED":
		*s = StatePaused
	case "RUNNING":
		*s = StateRunning
	case "STOPPED":
		*s = StateStopped
	case "COMPLETED":
		*s = StateCompleted
	default:
		return fmt.Errorf("unknown control state %q", b)
	}
	return nil
}

// stateCell 可无锁读取的控制状态
type stateCell struct{ v atomic.Int32 }

func (c *stateCell) Load() ControlState   { return ControlState(c.v.Load()) }
func (c *stateCell) Store(s ControlState) { c.v.Store(int32(s)) }

const (
	MinSpeed     = 0.01
	MaxSpeed     = 100.0
	DefaultSpeed = 1.0
)

// ClampSpeed 把倍速限制在 [MinSpeed, MaxSpeed]，NaN 视为最小值
func ClampSpeed(x float64) float64 {
	if !(x >= MinSpeed) {
		return MinSpeed
	}
	if x > MaxSpeed {
		return MaxSpeed
	}
	return x
}

// speedCell 倍速，写入时总是先限幅
type speedCell struct{ p atomic.Pointer[float64] }

func newSpeedCell() *speedCell {
	c := &speedCell{}
	c.Store(DefaultSpeed)
	return c
}

func (c *speedCell) Load() float64 { return *c.p.Load() }

// Store 存入限幅后的值并返回
func (c *speedCell) Store(x float64) float64 {
	v := ClampSpeed(x)
	c.p.Store(&v)
	return v
}
