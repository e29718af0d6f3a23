package market

import (
	"math"
	"testing"
)

func TestVolatilityCalculator_WindowEviction(t *testing.T) {
	calculator := NewVolatilityCalculator(3)
	for _, p := range []float64{100, 101, 102, 103} {
		calculator.AddPrice(p)
	}
	if calculator.Len() != 3 {
		t.Fatalf("Expected 3 prices, got %d", calculator.Len())
	}
	if calculator.prices[0] != 101.0 {
		t.Errorf("Expected oldest price 101, got %f", calculator.prices[0])
	}
	if last, _ := calculator.Last(); last != 103 {
		t.Errorf("Expected last 103, got %f", last)
	}
}

func TestVolatilityCalculator_StdDev(t *testing.T) {
	calculator := NewVolatilityCalculator(10)
	if calculator.StdDev() != 0 {
		t.Fatal("empty window must have zero volatility")
	}
	calculator.AddPrice(100)
	if calculator.StdDev() != 0 {
		t.Fatal("single sample must have zero volatility")
	}

	calculator.Reset()
	// population std dev of {2,4,4,4,5,5,7,9} is exactly 2
	for _, p := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		calculator.AddPrice(p)
	}
	if got := calculator.StdDev(); math.Abs(got-2) > 1e-12 {
		t.Errorf("Expected 2, got %f", got)
	}
}

func TestVolatilityCalculator_ConstantPrices(t *testing.T) {
	calculator := NewVolatilityCalculator(10)
	for i := 0; i < 5; i++ {
		calculator.AddPrice(100.0)
	}
	if vol := calculator.StdDev(); vol != 0.0 {
		t.Errorf("Expected zero volatility for constant prices, got %f", vol)
	}
	if vol := calculator.ReturnStdDev(); vol != 0.0 {
		t.Errorf("Expected zero return volatility for constant prices, got %f", vol)
	}
}
