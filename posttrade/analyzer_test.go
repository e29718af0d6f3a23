package posttrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-replay-go/strategy"
)

func TestSummarize(t *testing.T) {
	st := &strategy.State{
		RealizedPnL:   150,
		UnrealizedPnL: -50,
		Position:      0.5,
		MidPrice:      100,
		NumTrades:     4,
		WinningTrades: 1,
		TotalOrders:   8,
		TotalFills:    6,
		AvgHoldTime:   2.5,
		UpdateCount:   1234,
	}
	s := Summarize("a.csv", "Momentum", 10000, st, true)
	assert.Equal(t, 10100.0, s.FinalEquity)
	assert.Equal(t, 100.0, s.TotalPnL)
	assert.InDelta(t, 1.0, s.ReturnPct, 1e-12)
	assert.Equal(t, 25.0, s.WinRate)
	assert.Equal(t, 75.0, s.FillRatio)
	assert.True(t, s.Stopped)
	assert.Equal(t, uint64(1234), s.Updates)
}

func TestSummarizeZeroCapital(t *testing.T) {
	s := Summarize("a.csv", "x", 0, &strategy.State{RealizedPnL: 5}, false)
	assert.Zero(t, s.ReturnPct)
}

func TestAnalyzerTotals(t *testing.T) {
	a := NewAnalyzer(nil)
	a.Report(Summary{File: "a", TotalPnL: 10, NumTrades: 2, WinningTrades: 2, TotalOrders: 4, TotalFills: 4})
	a.Report(Summary{File: "b", TotalPnL: -4, NumTrades: 2, TotalOrders: 3, TotalFills: 2})

	require.Len(t, a.Summaries(), 2)
	tot := a.Totals()
	assert.Equal(t, 2, tot.Files)
	assert.Equal(t, 6.0, tot.TotalPnL)
	assert.Equal(t, 50.0, tot.WinRate())
	assert.Equal(t, 7, tot.TotalOrders)
	assert.Zero(t, Totals{}.WinRate())
}
