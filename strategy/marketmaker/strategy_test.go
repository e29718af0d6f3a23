package marketmaker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-replay-go/order"
	"market-replay-go/sim/simtest"
	"market-replay-go/strategy"
)

func newTestMM(t *testing.T) (*Strategy, *simtest.Fake, *strategy.State) {
	t.Helper()
	cfg := strategy.DefaultMarketMaker()
	mm := New(cfg, nil)
	f := simtest.New(0.01, 1000)
	f.SetQuote(100.00, 1, 100.02, 1)
	mm.OnFileStart("test.csv")
	return mm, f, &strategy.State{}
}

func tick(t *testing.T, mm *Strategy, f *simtest.Fake, st *strategy.State, count uint64) {
	t.Helper()
	st.UpdateCount = count
	require.NoError(t, mm.OnTick(strategy.NewTickContext(f), st))
}

func TestInitialOrdersPlacedOnFirstValidBook(t *testing.T) {
	mm, f, st := newTestMM(t)
	tick(t, mm, f, st, 1)

	require.Len(t, f.Submitted, 4)
	assert.Equal(t, 4, st.TotalOrders)
	assert.Equal(t, 4, mm.Tracker().Stats().ActiveCount)

	for _, o := range f.Submitted {
		assert.Equal(t, order.GTX, o.TIF)
		assert.Equal(t, order.StatusActive, o.Status)
	}
	assert.InDelta(t, 99.96, f.Submitted[0].Price, 1e-9)
	assert.InDelta(t, 100.06, f.Submitted[1].Price, 1e-9)
	assert.InDelta(t, 100.01, st.MidPrice, 1e-9)
}

func TestRefillAccountsBuyFill(t *testing.T) {
	mm, f, st := newTestMM(t)
	tick(t, mm, f, st, 1)
	f.Fill(0)

	// 未到检查间隔时不记账
	tick(t, mm, f, st, 5)
	assert.Zero(t, st.Position)

	tick(t, mm, f, st, 10)
	cost := 99.96 * 0.01
	assert.InDelta(t, 0.01, st.Position, 1e-12)
	assert.InDelta(t, cost*rebateRate, st.RealizedPnL, 1e-9, "opening fill books only the rebate")
	assert.InDelta(t, 0.01*(100.01-99.96), st.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 99.96, st.EntryPrice, 1e-9)
	assert.Equal(t, 1, st.TotalFills)
	assert.Equal(t, 5, st.TotalOrders)

	stats := mm.Tracker().Stats()
	assert.Equal(t, 1, stats.FilledCount)
	assert.InDelta(t, 0.01, stats.BuyVolume, 1e-12)
	assert.True(t, mm.Tracker().Has(0), "slot is re-registered after refill")

	last := f.Submitted[len(f.Submitted)-1]
	assert.Equal(t, int64(0), last.ID)
	assert.Equal(t, order.Buy, last.Side)
	assert.Less(t, last.Quantity, 0.01, "size shrinks with inventory")
}

func TestRefillAccountsSellFill(t *testing.T) {
	mm, f, st := newTestMM(t)
	tick(t, mm, f, st, 1)
	f.Fill(3)
	tick(t, mm, f, st, 10)

	qty := 0.01 / 1.5
	revenue := 100.07 * qty
	assert.InDelta(t, -qty, st.Position, 1e-12)
	assert.InDelta(t, revenue*rebateRate, st.RealizedPnL, 1e-9)
	assert.InDelta(t, -qty*(100.01-100.07), st.UnrealizedPnL, 1e-9)
	assert.InDelta(t, qty, mm.Tracker().Stats().SellVolume, 1e-12)
}

func TestRefillResubmitsVacatedSlots(t *testing.T) {
	mm, f, st := newTestMM(t)
	tick(t, mm, f, st, 1)
	f.SetStatus(1, order.StatusExpired)
	f.Remove(2)
	tick(t, mm, f, st, 10)

	require.Len(t, f.Submitted, 6)
	ids := []int64{f.Submitted[4].ID, f.Submitted[5].ID}
	assert.ElementsMatch(t, []int64{1, 2}, ids)
	assert.Zero(t, st.Position)
	assert.Zero(t, st.TotalFills)
}

func TestSubmitErrorsAreIgnored(t *testing.T) {
	mm, f, st := newTestMM(t)
	f.SubmitErr = errors.New("rejected")
	tick(t, mm, f, st, 1)
	assert.Zero(t, st.TotalOrders)

	f.SubmitErr = nil
	tick(t, mm, f, st, 10)
	assert.Equal(t, 4, st.TotalOrders)
}

func TestFilledOrderCountedOnce(t *testing.T) {
	mm, f, st := newTestMM(t)
	tick(t, mm, f, st, 1)
	f.Fill(0)
	f.SubmitErr = errors.New("rejected")
	tick(t, mm, f, st, 10)
	tick(t, mm, f, st, 20)
	assert.InDelta(t, 0.01, st.Position, 1e-12)
	assert.Equal(t, 1, st.TotalFills)
}

func TestClosePositionFlattensInventory(t *testing.T) {
	mm, f, st := newTestMM(t)
	tick(t, mm, f, st, 1)
	f.Fill(0)
	tick(t, mm, f, st, 10)
	before := st.RealizedPnL
	equity := st.Equity(mm.InitialCapital())

	require.NoError(t, mm.ClosePosition(strategy.NewTickContext(f), st))
	assert.Zero(t, st.Position)
	assert.Zero(t, st.UnrealizedPnL)
	assert.InDelta(t, before+(100.00-99.96)*0.01, st.RealizedPnL, 1e-9)
	// 以买一平仓，权益只差半个价差
	assert.InDelta(t, equity-(100.01-100.00)*0.01, st.Equity(mm.InitialCapital()), 1e-9)

	orders := f.Orders()
	assert.Equal(t, order.StatusCanceled, orders[2].Status)
	assert.Equal(t, order.StatusFilled, orders[closeOrderID].Status)
}

func TestClosePositionWithoutInventory(t *testing.T) {
	mm, f, st := newTestMM(t)
	tick(t, mm, f, st, 1)
	require.NoError(t, mm.ClosePosition(strategy.NewTickContext(f), st))
	_, ok := f.Orders()[closeOrderID]
	assert.False(t, ok)
}

func TestClosePositionBooksFillsSinceLastCheck(t *testing.T) {
	mm, f, st := newTestMM(t)
	tick(t, mm, f, st, 1)
	// 成交发生在两次检查之间，平仓时库存仍显示为零
	f.Fill(0)
	require.Zero(t, st.Position)

	require.NoError(t, mm.ClosePosition(strategy.NewTickContext(f), st))
	assert.Equal(t, 2, st.TotalFills, "layer fill and the flattening order")
	assert.Zero(t, st.Position)
	assert.Equal(t, 1, mm.Tracker().Stats().FilledCount)

	cost := 99.96 * 0.01
	assert.InDelta(t, cost*rebateRate+(100.00-99.96)*0.01, st.RealizedPnL, 1e-9)
	assert.Equal(t, order.StatusFilled, f.Orders()[closeOrderID].Status)
}

func TestStrategyMetadata(t *testing.T) {
	mm := New(strategy.DefaultMarketMaker(), nil)
	assert.Equal(t, "Market Making", mm.Name())
	assert.Equal(t, 10000.0, mm.InitialCapital())
	assert.Equal(t, 20, strategy.OrderbookDepth(mm))
	assert.Equal(t, uint64(1), strategy.UpdateInterval(mm, 10))
}
