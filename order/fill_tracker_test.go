package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-replay-go/order"
)

func TestTrackerRegisterThenFill(t *testing.T) {
	tr := order.NewTracker()
	tr.Register(0, order.Buy, 100.0, 0.01, 0)
	tr.Register(1, order.Sell, 100.1, 0.01, 0)

	before := tr.Stats()
	rec, ok := tr.MarkFilled(0)
	require.True(t, ok)
	assert.Equal(t, order.Buy, rec.Side)
	assert.Equal(t, 0.01, rec.Qty)

	after := tr.Stats()
	assert.Equal(t, before.FilledCount+1, after.FilledCount)
	assert.InDelta(t, 0.01, after.BuyVolume, 1e-12)
	assert.Zero(t, after.SellVolume)
	assert.Equal(t, 1, after.ActiveCount)
	assert.False(t, tr.Has(0))
}

func TestTrackerMarkFilledUnknown(t *testing.T) {
	tr := order.NewTracker()
	_, ok := tr.MarkFilled(42)
	assert.False(t, ok)
	assert.Zero(t, tr.Stats().FilledCount)
}

func TestTrackerSlotReuseAfterFill(t *testing.T) {
	tr := order.NewTracker()
	tr.Register(3, order.Sell, 101, 0.02, 1)
	_, ok := tr.MarkFilled(3)
	require.True(t, ok)

	tr.Register(3, order.Sell, 101.5, 0.015, 1)
	require.True(t, tr.Has(3))
	rec, _ := tr.Get(3)
	assert.Equal(t, 101.5, rec.Price)
	assert.Equal(t, 1, tr.Stats().ActiveCount)

	rec, ok = tr.MarkFilled(3)
	require.True(t, ok)
	assert.Equal(t, 0.015, rec.Qty)
	st := tr.Stats()
	assert.Equal(t, 2, st.FilledCount)
	assert.InDelta(t, 0.035, st.SellVolume, 1e-12)
}

func TestTrackerClear(t *testing.T) {
	tr := order.NewTracker()
	tr.Register(0, order.Buy, 1, 1, 0)
	tr.Register(1, order.Sell, 2, 1, 0)
	tr.MarkFilled(1)
	tr.Clear()
	st := tr.Stats()
	assert.Zero(t, st.ActiveCount)
	assert.Equal(t, 1, st.FilledCount)
}
