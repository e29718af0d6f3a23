package strategy

import (
	"market-replay-go/market"
	"market-replay-go/order"
	"market-replay-go/sim"
)

// TickContext 包装模拟器，供 OnTick 读取行情和下单。
// 最优价在第一次访问时缓存，同一 tick 内的下单不会刷新缓存。
type TickContext struct {
	sim    sim.Simulator
	cached bool
	bid    float64
	ask    float64
}

// NewTickContext 创建上下文
func NewTickContext(s sim.Simulator) *TickContext {
	return &TickContext{sim: s}
}

func (c *TickContext) ensure() {
	if c.cached {
		return
	}
	d := c.sim.Depth()
	c.bid = market.BestBid(d)
	c.ask = market.BestAsk(d)
	c.cached = true
}

// Depth 原始深度视图
func (c *TickContext) Depth() market.Depth { return c.sim.Depth() }

// Valid 盘口是否两侧都有报价
func (c *TickContext) Valid() bool { return market.Valid(c.sim.Depth()) }

func (c *TickContext) TickSize() float64 { return c.sim.Depth().TickSize() }

func (c *TickContext) BestBid() float64 {
	c.ensure()
	return c.bid
}

func (c *TickContext) BestAsk() float64 {
	c.ensure()
	return c.ask
}

func (c *TickContext) MidPrice() float64 {
	c.ensure()
	return (c.bid + c.ask) / 2
}

func (c *TickContext) Spread() float64 {
	c.ensure()
	return c.ask - c.bid
}

// BidQty 第 level 个 tick 的买量（0 为最优买价）
func (c *TickContext) BidQty(level int) float64 {
	d := c.sim.Depth()
	return d.BidQtyAtTick(d.BestBidTick() - int64(level))
}

// AskQty 第 level 个 tick 的卖量（0 为最优卖价）
func (c *TickContext) AskQty(level int) float64 {
	d := c.sim.Depth()
	return d.AskQtyAtTick(d.BestAskTick() + int64(level))
}

// Levels 提取前 n 个 tick 的有量档位
func (c *TickContext) Levels(n int) (bids, asks []market.Level) {
	return market.Levels(c.sim.Depth(), n)
}

// Timestamp 当前模拟时间（纳秒）
func (c *TickContext) Timestamp() int64 { return c.sim.CurrentTimestamp() }

// Submit 按指定方向、有效方式和类型下单
func (c *TickContext) Submit(side order.Side, id int64, price, qty float64, tif order.TimeInForce, kind order.Kind) error {
	if side == order.Buy {
		return c.sim.SubmitBuy(id, price, qty, tif, kind)
	}
	return c.sim.SubmitSell(id, price, qty, tif, kind)
}

// SubmitBuy 提交 GTC 限价买单
func (c *TickContext) SubmitBuy(price, qty float64, id int64) error {
	return c.sim.SubmitBuy(id, price, qty, order.GTC, order.Limit)
}

// SubmitSell 提交 GTC 限价卖单
func (c *TickContext) SubmitSell(price, qty float64, id int64) error {
	return c.sim.SubmitSell(id, price, qty, order.GTC, order.Limit)
}

func (c *TickContext) Cancel(id int64) error { return c.sim.Cancel(id) }

func (c *TickContext) Orders() map[int64]order.Order { return c.sim.Orders() }

func (c *TickContext) ClearInactive() { c.sim.ClearInactive() }
