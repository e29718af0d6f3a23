package marketmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"market-replay-go/order"
)

func TestCostBasis(t *testing.T) {
	type fill struct {
		side  order.Side
		price float64
		qty   float64
	}
	tests := []struct {
		name         string
		fills        []fill
		wantQty      float64
		wantAvg      float64
		wantRealized float64
	}{
		{
			name:    "同向加仓取加权均价",
			fills:   []fill{{order.Buy, 100, 1}, {order.Buy, 102, 1}},
			wantQty: 2, wantAvg: 101,
		},
		{
			name:         "部分减仓按均价结算",
			fills:        []fill{{order.Buy, 100, 2}, {order.Sell, 103, 1}},
			wantQty:      1,
			wantAvg:      100,
			wantRealized: 3,
		},
		{
			name:         "空头平仓",
			fills:        []fill{{order.Sell, 100, 1}, {order.Buy, 98, 1}},
			wantRealized: 2,
		},
		{
			name:         "反手后剩余部分以成交价为均价",
			fills:        []fill{{order.Buy, 100, 1}, {order.Sell, 101, 3}},
			wantQty:      -2,
			wantAvg:      101,
			wantRealized: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c costBasis
			var realized float64
			for _, f := range tt.fills {
				realized += c.apply(f.side, f.price, f.qty)
			}
			assert.InDelta(t, tt.wantQty, c.qty, 1e-12)
			assert.InDelta(t, tt.wantAvg, c.avg, 1e-12)
			assert.InDelta(t, tt.wantRealized, realized, 1e-12)
		})
	}
}

func TestCostBasisKeepsEquityIdentity(t *testing.T) {
	// 现金流 + 库存市值 = 已实现 + 浮动盈亏
	var c costBasis
	var cash, realized float64
	fills := []struct {
		side  order.Side
		price float64
		qty   float64
	}{
		{order.Buy, 100, 0.5},
		{order.Buy, 99, 0.25},
		{order.Sell, 101, 1},
		{order.Buy, 100.5, 0.1},
	}
	for _, f := range fills {
		if f.side == order.Buy {
			cash -= f.price * f.qty
		} else {
			cash += f.price * f.qty
		}
		realized += c.apply(f.side, f.price, f.qty)
	}
	mid := 100.2
	assert.InDelta(t, cash+c.qty*mid, realized+c.unrealized(mid), 1e-9)
}
