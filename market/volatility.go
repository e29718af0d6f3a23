package market

import "math"

// VolatilityCalculator keeps a bounded rolling window of mid prices.
type VolatilityCalculator struct {
	windowSize int
	prices     []float64
}

// NewVolatilityCalculator creates a new volatility calculator
func NewVolatilityCalculator(windowSize int) *VolatilityCalculator {
	if windowSize < 1 {
		windowSize = 1
	}
	return &VolatilityCalculator{
		windowSize: windowSize,
		prices:     make([]float64, 0, windowSize),
	}
}

// AddPrice adds a new mid price, evicting the oldest once the window is full.
func (v *VolatilityCalculator) AddPrice(mid float64) {
	if len(v.prices) >= v.windowSize {
		copy(v.prices, v.prices[1:])
		v.prices = v.prices[:len(v.prices)-1]
	}
	v.prices = append(v.prices, mid)
}

// StdDev returns the population standard deviation of the window's prices.
func (v *VolatilityCalculator) StdDev() float64 {
	return populationStdDev(v.prices)
}

// ReturnStdDev returns the population standard deviation of simple returns.
func (v *VolatilityCalculator) ReturnStdDev() float64 {
	if len(v.prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(v.prices)-1)
	for i := 1; i < len(v.prices); i++ {
		if v.prices[i-1] > 0 {
			returns = append(returns, (v.prices[i]-v.prices[i-1])/v.prices[i-1])
		}
	}
	if len(returns) == 0 {
		return 0
	}
	return populationStdDev(returns)
}

// Len returns the number of prices in the window.
func (v *VolatilityCalculator) Len() int { return len(v.prices) }

// Last returns the newest price.
func (v *VolatilityCalculator) Last() (float64, bool) {
	if len(v.prices) == 0 {
		return 0, false
	}
	return v.prices[len(v.prices)-1], true
}

// IsReady checks if we have enough data to calculate volatility
func (v *VolatilityCalculator) IsReady() bool {
	return len(v.prices) >= 2
}

// Reset drops all prices.
func (v *VolatilityCalculator) Reset() {
	v.prices = v.prices[:0]
}

func populationStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	sumSquaredDiff := 0.0
	for _, x := range xs {
		diff := x - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(xs)))
}
