package sim

import (
	"errors"

	"market-replay-go/market"
	"market-replay-go/order"
)

// TickOutcome 一次推进的结果
type TickOutcome int

const (
	// Data 推进后仍有后续数据
	Data TickOutcome = iota
	// EndOfData 数据已耗尽；这是正常结束信号，不是错误
	EndOfData
)

func (o TickOutcome) String() string {
	if o == EndOfData {
		return "END_OF_DATA"
	}
	return "DATA"
}

var (
	ErrUnknownOrder = errors.New("unknown order")
	ErrInvalidOrder = errors.New("invalid order")
	ErrClosed       = errors.New("simulator closed")
)

// Simulator 是策略看到的市场：只读深度、下单撤单和时间推进。
// 实例只归执行线程所有，不做跨 goroutine 同步保证。
type Simulator interface {
	// Advance 将模拟时钟推进 ns 纳秒
	Advance(ns int64) (TickOutcome, error)
	Depth() market.Depth
	SubmitBuy(id int64, price, qty float64, tif order.TimeInForce, kind order.Kind) error
	SubmitSell(id int64, price, qty float64, tif order.TimeInForce, kind order.Kind) error
	Cancel(id int64) error
	// Orders 返回 id -> 订单的拷贝
	Orders() map[int64]order.Order
	// ClearInactive 清理已离开订单簿的订单
	ClearInactive()
	CurrentTimestamp() int64
	Close() error
}

// Opener 为一个数据文件创建新的模拟器
type Opener func(path string) (Simulator, error)
