package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"market-replay-go/strategy"
)

func TestPredictorSignalThreshold(t *testing.T) {
	p := NewPredictor(2, 0.001, 0.01)
	y, sig := p.Predict([]float64{1, 2})
	assert.Zero(t, y, "untrained model predicts zero")
	assert.Equal(t, strategy.Neutral, sig)

	p.bias = 0.5
	_, sig = p.Predict([]float64{1, 2})
	assert.Equal(t, strategy.Long, sig)

	p.bias = -0.5
	_, sig = p.Predict([]float64{1, 2})
	assert.Equal(t, strategy.Short, sig)
}

func TestPredictorLearnsLinearTarget(t *testing.T) {
	p := NewPredictor(1, 0.001, 0.05)
	xs := []float64{-2, -1, 0, 1, 2}
	for i := 0; i < 2000; i++ {
		x := xs[i%len(xs)]
		p.Predict([]float64{x})
		p.Train([]float64{x}, 0.3*x)
	}
	assert.Equal(t, 2000, p.Samples())

	up, sig := p.Predict([]float64{2})
	assert.Greater(t, up, 0.3)
	assert.Equal(t, strategy.Long, sig)
	down, _ := p.Predict([]float64{-2})
	assert.Less(t, down, -0.3)
}

func TestPredictorAccuracy(t *testing.T) {
	p := NewPredictor(1, 0.001, 0.01)
	assert.Zero(t, p.Accuracy())

	p.Record(0.2, 0.1)
	p.Record(-0.2, -0.3)
	p.Record(0.2, -0.1)
	p.Record(0, 0.1)
	assert.InDelta(t, 0.5, p.Accuracy(), 1e-12)
	assert.Equal(t, 4, p.Validated())
	assert.InDelta(t, (0.1+0.1+0.3+0.1)/4, p.MAE(), 1e-12)
}
