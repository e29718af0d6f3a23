package momentum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-replay-go/sim/simtest"
	"market-replay-go/strategy"
)

func testConfig() strategy.MomentumConfig {
	cfg := strategy.DefaultMomentum()
	cfg.LookbackPeriod = 5
	cfg.MomentumThreshold = 0.01
	cfg.EvalInterval = 1
	return cfg
}

func feed(t *testing.T, s *Strategy, f *simtest.Fake, st *strategy.State, mids ...float64) {
	t.Helper()
	for _, mid := range mids {
		f.SetQuote(mid-0.01, 1, mid+0.01, 1)
		f.Clock += 100_000_000
		st.UpdateCount++
		require.NoError(t, s.OnTick(strategy.NewTickContext(f), st))
	}
}

func TestMomentumEntersOnUptrend(t *testing.T) {
	s := New(testConfig(), nil)
	f := simtest.New(0.01, 1000)
	st := &strategy.State{}
	s.OnFileStart("a.csv")

	feed(t, s, f, st, 100, 100.5, 101, 101.5, 102)
	assert.Equal(t, strategy.Long, s.Position().Side)
	assert.InDelta(t, 102.01, s.Position().Entry, 1e-9)
	assert.InDelta(t, 0.05, st.Position, 1e-12)
	assert.Equal(t, 1, st.TotalOrders)
	assert.Equal(t, 1, st.TotalFills)
}

func TestMomentumTakeProfit(t *testing.T) {
	s := New(testConfig(), nil)
	f := simtest.New(0.01, 1000)
	st := &strategy.State{}

	feed(t, s, f, st, 100, 100.5, 101, 101.5, 102)
	require.Equal(t, strategy.Long, s.Position().Side)

	feed(t, s, f, st, 104.5)
	assert.True(t, isFlat(s.Position()))
	assert.Equal(t, 1, st.NumTrades)
	assert.Equal(t, 1, st.WinningTrades)
	assert.Greater(t, st.RealizedPnL, 0.0)
}

func TestMomentumReverseSignalCloses(t *testing.T) {
	cfg := testConfig()
	cfg.StopLossPct = 0.5
	cfg.TakeProfitPct = 0.5
	s := New(cfg, nil)
	f := simtest.New(0.01, 1000)
	st := &strategy.State{}

	feed(t, s, f, st, 100, 99.5, 99, 98.5, 98)
	require.Equal(t, strategy.Short, s.Position().Side)

	feed(t, s, f, st, 99, 100, 101, 102, 103)
	assert.Equal(t, 1, st.NumTrades)
	// 平空之后的下一次评估会按新信号开多
	assert.Equal(t, strategy.Long, s.Position().Side)
}

func TestMomentumEvaluatesOnInterval(t *testing.T) {
	cfg := testConfig()
	cfg.EvalInterval = 10
	s := New(cfg, nil)
	f := simtest.New(0.01, 1000)
	st := &strategy.State{}

	feed(t, s, f, st, 100, 100.5, 101, 101.5, 102, 102.5, 103, 103.5, 104)
	assert.True(t, isFlat(s.Position()))
	assert.True(t, s.Indicator().IsReady(), "indicator is fed every update")
	assert.Zero(t, st.TotalOrders)
}

func TestMomentumClosePosition(t *testing.T) {
	s := New(testConfig(), nil)
	f := simtest.New(0.01, 1000)
	st := &strategy.State{}
	feed(t, s, f, st, 100, 100.5, 101, 101.5, 102)
	require.False(t, isFlat(s.Position()))

	require.NoError(t, s.ClosePosition(strategy.NewTickContext(f), st))
	assert.True(t, isFlat(s.Position()))
	assert.Zero(t, st.Position)
	assert.Equal(t, 1, st.NumTrades)
}

// isFlat binds the returned Position to an addressable variable so the
// pointer-receiver IsFlat method can be called on it.
func isFlat(p strategy.Position) bool { return p.IsFlat() }
