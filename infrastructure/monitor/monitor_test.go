package monitor

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-replay-go/market"
	"market-replay-go/telemetry"
)

func TestObservePerformance(t *testing.T) {
	m := New(DefaultConfig())
	m.ObservePerformance(telemetry.PerformanceData{
		Timestamp:     12.5,
		Equity:        10_050,
		RealizedPnL:   40,
		UnrealizedPnL: 10,
		Position:      -0.3,
		MidPrice:      100.05,
		NumTrades:     3,
		TotalFills:    7,
		TotalOrders:   20,
		Bids:          []market.Level{{Price: 100, Quantity: 1}},
		Asks:          []market.Level{{Price: 100.1, Quantity: 2}},
	})

	assert.Equal(t, 10_050.0, testutil.ToFloat64(m.equity))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.realizedPnL))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.unrealizedPnL))
	assert.Equal(t, -0.3, testutil.ToFloat64(m.position))
	assert.Equal(t, 100.05, testutil.ToFloat64(m.midPrice))
	assert.InDelta(t, 0.1, testutil.ToFloat64(m.spread), 1e-9)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.totalFills))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.simTime))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshots))
}

func TestControlMetrics(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordCommand("start")
	m.RecordCommand("start")
	m.RecordCommand("stop")
	m.RecordResponse("state_changed")
	m.UpdateSpeed(2.5)
	m.UpdateControlState(1)
	m.RecordDropped()
	m.RecordFileFinished("skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commands.WithLabelValues("start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("stop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.responses.WithLabelValues("state_changed")))
	assert.Equal(t, 2.5, testutil.ToFloat64(m.speed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.controlState))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesFinished.WithLabelValues("skipped")))
}

func TestWSClientGauge(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordWSConnection()
	m.RecordWSConnection()
	m.RecordWSDisconnect()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsClients))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.wsConnections))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New(DefaultConfig())
	m.UpdateSpeed(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "replay_session_speed_multiplier 3"))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(DefaultConfig())
		New(DefaultConfig())
	})
}
