package marketmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-replay-go/order"
)

func TestReservationPrice(t *testing.T) {
	tests := []struct {
		name      string
		mid       float64
		inventory float64
		gamma     float64
		vol       float64
		want      float64
	}{
		{"零库存等于中间价", 100.01, 0, 0.001, 0, 100.01},
		{"零波动等于中间价", 100.01, 5, 0.001, 0, 100.01},
		{"多头库存压低报价中心", 100.01, 5, 0.001, 10, 99.51},
		{"空头库存抬高报价中心", 100.01, -5, 0.001, 10, 100.51},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ReservationPrice(tt.mid, tt.inventory, tt.gamma, tt.vol), 1e-9)
		})
	}
}

func TestReservationPriceDecreasesWithInventory(t *testing.T) {
	prev := ReservationPrice(100, -10, 0.001, 3)
	for inv := -9.0; inv <= 10; inv++ {
		cur := ReservationPrice(100, inv, 0.001, 3)
		assert.Less(t, cur, prev, "inventory %v", inv)
		prev = cur
	}
}

func TestOrderIDs(t *testing.T) {
	assert.Equal(t, int64(0), OrderID(order.Buy, 0))
	assert.Equal(t, int64(1), OrderID(order.Sell, 0))
	assert.Equal(t, int64(4), OrderID(order.Buy, 2))
	assert.Equal(t, int64(5), OrderID(order.Sell, 2))
}

func TestQuotesLayers(t *testing.T) {
	p := Pricing{
		Reservation: 100.01,
		HalfSpread:  HalfSpread(0.01),
		Tick:        0.01,
		Size:        0.01,
	}
	quotes := p.Quotes(2)
	require.Len(t, quotes, 4)

	want := []struct {
		id    int64
		side  order.Side
		price float64
		size  float64
	}{
		{0, order.Buy, 99.96, 0.01},
		{1, order.Sell, 100.06, 0.01},
		{2, order.Buy, 99.95, 0.01 / 1.5},
		{3, order.Sell, 100.07, 0.01 / 1.5},
	}
	for i, w := range want {
		assert.Equal(t, w.id, quotes[i].ID)
		assert.Equal(t, w.side, quotes[i].Side)
		assert.InDelta(t, w.price, quotes[i].Price, 1e-9)
		assert.InDelta(t, w.size, quotes[i].Size, 1e-12)
	}
}

func TestImbalanceOffset(t *testing.T) {
	p := Pricing{HalfSpread: 0.05, Imbalance: 1}
	assert.InDelta(t, 0.005, p.Offset(), 1e-12)

	p.Imbalance = -0.5
	assert.InDelta(t, -0.0025, p.Offset(), 1e-12)

	// 买盘更重时买价上移、卖价下移
	base := Pricing{Reservation: 100, HalfSpread: 0.5, Tick: 0.01, Size: 1}
	skewed := base
	skewed.Imbalance = 1
	assert.Greater(t, skewed.QuoteFor(order.Buy, 0).Price, base.QuoteFor(order.Buy, 0).Price)
	assert.Less(t, skewed.QuoteFor(order.Sell, 0).Price, base.QuoteFor(order.Sell, 0).Price)
}
