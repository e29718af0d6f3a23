package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-replay-go/strategy"
)

func TestDefaultsValidate(t *testing.T) {
	for _, cfg := range []strategy.Config{
		strategy.DefaultMarketMaker(),
		strategy.DefaultMomentum(),
		strategy.DefaultPrediction(),
	} {
		assert.NoError(t, cfg.Validate(), cfg.Kind())
		assert.Equal(t, 10000.0, cfg.Capital())
	}
}

func TestMarketMakerDefaults(t *testing.T) {
	c := strategy.DefaultMarketMaker()
	assert.Equal(t, 0.001, c.Gamma)
	assert.Equal(t, 5.0, c.MaxInventory)
	assert.Equal(t, 20, c.DepthLevels)
	assert.Equal(t, 2, c.OrderLayers)
	assert.Equal(t, 0.01, c.OrderSize)
}

func TestConfigValidateRejects(t *testing.T) {
	mm := strategy.DefaultMarketMaker()
	mm.OrderLayers = 0
	assert.Error(t, mm.Validate())

	mo := strategy.DefaultMomentum()
	mo.StopLossPct = 0
	assert.Error(t, mo.Validate())

	pr := strategy.DefaultPrediction()
	pr.LearningRate = -1
	assert.Error(t, pr.Validate())
}

func TestParseKind(t *testing.T) {
	k, err := strategy.ParseKind("momentum")
	require.NoError(t, err)
	assert.Equal(t, strategy.KindMomentum, k)

	k, err = strategy.ParseKind("mm")
	require.NoError(t, err)
	assert.Equal(t, "Market Making", k.DisplayName())

	_, err = strategy.ParseKind("grid")
	assert.Error(t, err)
}

func TestStateDerivedFigures(t *testing.T) {
	st := strategy.State{RealizedPnL: 12, UnrealizedPnL: -2, NumTrades: 4, WinningTrades: 3, TotalOrders: 10, TotalFills: 5}
	assert.Equal(t, 10010.0, st.Equity(10000))
	assert.Equal(t, 75.0, st.WinRate())
	assert.Equal(t, 50.0, st.FillRatio())

	var empty strategy.State
	assert.Zero(t, empty.WinRate())
	assert.Zero(t, empty.FillRatio())
}
