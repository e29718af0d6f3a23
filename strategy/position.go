package strategy

import (
	"fmt"

	"market-replay-go/order"
)

// Signal 方向信号
type Signal int

const (
	Neutral Signal = iota
	Long
	Short
)

func (s Signal) String() string {
	switch s {
	case Long:
		return "LONG"
	case Short:
		return "SHORT"
	default:
		return "NEUTRAL"
	}
}

// closeFeeRate 平仓时按开平两边名义价值计的手续费
const closeFeeRate = 0.0001

// Position 单向持仓的开平仓记账，供趋势类策略复用。
// 开仓和平仓都以对手最优价提交 GTC 限价单，立即成交才算数。
type Position struct {
	Side    Signal
	Entry   float64
	Qty     float64
	EntryTs int64

	nextID    int64
	totalHold float64
}

// IsFlat 是否空仓
func (p *Position) IsFlat() bool { return p.Side == Neutral }

// Reset 清空持仓，不改变订单 id 序列
func (p *Position) Reset() {
	p.Side, p.Entry, p.Qty, p.EntryTs = Neutral, 0, 0, 0
	p.totalHold = 0
}

func (p *Position) orderID() int64 {
	p.nextID++
	return p.nextID
}

// PnLPct 按持仓方向计算的收益率
func (p *Position) PnLPct(mid float64) float64 {
	if p.Entry == 0 {
		return 0
	}
	switch p.Side {
	case Long:
		return (mid - p.Entry) / p.Entry
	case Short:
		return (p.Entry - mid) / p.Entry
	}
	return 0
}

// ShouldExit 止损或止盈
func (p *Position) ShouldExit(mid, stopLoss, takeProfit float64) bool {
	if p.IsFlat() || p.Entry == 0 {
		return false
	}
	pct := p.PnLPct(mid)
	return pct <= -stopLoss || pct >= takeProfit
}

// Unrealized 未实现盈亏
func (p *Position) Unrealized(mid float64) float64 {
	switch p.Side {
	case Long:
		return (mid - p.Entry) * p.Qty
	case Short:
		return (p.Entry - mid) * p.Qty
	}
	return 0
}

// Mark 把持仓写回状态
func (p *Position) Mark(st *State, mid float64) {
	st.MidPrice = mid
	st.EntryPrice = p.Entry
	switch p.Side {
	case Long:
		st.Position = p.Qty
	case Short:
		st.Position = -p.Qty
	default:
		st.Position = 0
	}
	st.UnrealizedPnL = p.Unrealized(mid)
}

// Open 以对手最优价开仓，返回是否成交。
func (p *Position) Open(ctx *TickContext, st *State, side Signal, size float64) (bool, error) {
	if !p.IsFlat() {
		return false, fmt.Errorf("position already open (%s)", p.Side)
	}
	if side == Neutral {
		return false, nil
	}
	ctx.ClearInactive()
	id := p.orderID()
	var err error
	if side == Long {
		err = ctx.SubmitBuy(ctx.BestAsk(), size, id)
	} else {
		err = ctx.SubmitSell(ctx.BestBid(), size, id)
	}
	if err != nil {
		return false, fmt.Errorf("open %s: %w", side, err)
	}
	st.TotalOrders++

	o, ok := ctx.Orders()[id]
	if !ok || o.Status != order.StatusFilled {
		// 未立即成交的开仓单撤掉，不留挂单
		_ = ctx.Cancel(id)
		return false, nil
	}
	p.Side = side
	p.Entry = o.Price
	p.Qty = o.Quantity
	p.EntryTs = ctx.Timestamp()
	st.TotalFills++
	return true, nil
}

// Close 以对手最优价平仓，返回净盈亏和是否成交。
// 净盈亏扣除按开平名义价值计算的手续费，盈利计入胜场。
func (p *Position) Close(ctx *TickContext, st *State) (float64, bool, error) {
	if p.IsFlat() {
		return 0, false, nil
	}
	ctx.ClearInactive()
	id := p.orderID()
	var err error
	if p.Side == Long {
		err = ctx.SubmitSell(ctx.BestBid(), p.Qty, id)
	} else {
		err = ctx.SubmitBuy(ctx.BestAsk(), p.Qty, id)
	}
	if err != nil {
		return 0, false, fmt.Errorf("close %s: %w", p.Side, err)
	}
	st.TotalOrders++

	o, ok := ctx.Orders()[id]
	if !ok || o.Status != order.StatusFilled {
		_ = ctx.Cancel(id)
		return 0, false, nil
	}
	exit := o.Price
	var gross float64
	if p.Side == Long {
		gross = (exit - p.Entry) * p.Qty
	} else {
		gross = (p.Entry - exit) * p.Qty
	}
	fee := (exit*p.Qty + p.Entry*p.Qty) * closeFeeRate
	net := gross - fee

	st.RealizedPnL += net
	st.TotalFills++
	st.NumTrades++
	if net > 0 {
		st.WinningTrades++
	}
	p.totalHold += float64(ctx.Timestamp()-p.EntryTs) / 1e9
	st.AvgHoldTime = p.totalHold / float64(st.NumTrades)

	p.Side, p.Entry, p.Qty, p.EntryTs = Neutral, 0, 0, 0
	st.Position, st.EntryPrice, st.UnrealizedPnL = 0, 0, 0
	return net, true, nil
}
