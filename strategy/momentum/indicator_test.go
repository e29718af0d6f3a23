package momentum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-replay-go/strategy"
)

func TestIndicatorMomentum(t *testing.T) {
	ind := NewIndicator(5, 0.01)
	for _, p := range []float64{100, 101, 102, 103, 104, 105} {
		ind.Update(p)
	}
	m, ok := ind.Momentum()
	require.True(t, ok)
	assert.InDelta(t, 0.05, m, 1e-4)
	assert.True(t, ind.IsReady())

	// 超出窗口后丢弃最早价格
	ind.Update(106)
	m, _ = ind.Momentum()
	assert.InDelta(t, (106.0-101)/101, m, 1e-9)
	assert.Equal(t, 6, ind.Len())
}

func TestIndicatorSignal(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   strategy.Signal
	}{
		{"上涨做多", []float64{100, 102, 104, 106, 108, 110}, strategy.Long},
		{"下跌做空", []float64{110, 108, 106, 104, 102, 100}, strategy.Short},
		{"横盘观望", []float64{100, 100.1, 99.9, 100, 100.2, 100.3}, strategy.Neutral},
		{"数据不足", []float64{100}, strategy.Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := NewIndicator(5, 0.01)
			for _, p := range tt.prices {
				ind.Update(p)
			}
			assert.Equal(t, tt.want, ind.Signal())
		})
	}
}

func TestIndicatorReturnStats(t *testing.T) {
	ind := NewIndicator(10, 0.01)
	_, ok := ind.Volatility()
	assert.False(t, ok)

	for _, p := range []float64{100, 110, 99} {
		ind.Update(p)
	}
	avg, ok := ind.AverageReturn()
	require.True(t, ok)
	assert.InDelta(t, (0.1+(-0.1))/2, avg, 1e-9)
	vol, ok := ind.Volatility()
	require.True(t, ok)
	assert.InDelta(t, 0.1, vol, 1e-9)
	assert.False(t, ind.IsReady())
}
