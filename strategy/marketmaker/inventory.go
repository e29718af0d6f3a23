package marketmaker

import (
	"math"

	"market-replay-go/order"
)

// costBasis 按加权平均成本跟踪库存。
// 减仓部分按均价结算已实现盈亏，反手后剩余部分以成交价为新均价。
type costBasis struct {
	qty float64 // 带符号库存
	avg float64
}

// apply 记入一笔成交，返回本次结算的已实现盈亏。
func (c *costBasis) apply(side order.Side, price, qty float64) float64 {
	if qty <= 0 {
		return 0
	}
	signed := qty
	if side == order.Sell {
		signed = -qty
	}

	// 同向加仓或空仓开仓
	if c.qty == 0 || (c.qty > 0) == (signed > 0) {
		held := math.Abs(c.qty)
		c.avg = (held*c.avg + qty*price) / (held + qty)
		c.qty += signed
		return 0
	}

	closed := math.Min(qty, math.Abs(c.qty))
	var realized float64
	if c.qty > 0 {
		realized = closed * (price - c.avg)
	} else {
		realized = closed * (c.avg - price)
	}
	c.qty += signed
	switch {
	case math.Abs(c.qty) < 1e-12:
		c.qty, c.avg = 0, 0
	case qty > closed:
		c.avg = price
	}
	return realized
}

// unrealized 按中间价计算的浮动盈亏
func (c *costBasis) unrealized(mid float64) float64 {
	if c.qty == 0 {
		return 0
	}
	return c.qty * (mid - c.avg)
}

func (c *costBasis) reset() { c.qty, c.avg = 0, 0 }
