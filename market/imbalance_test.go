package market

import (
	"math"
	"testing"
)

func TestCalculateImbalance(t *testing.T) {
	tests := []struct {
		name      string
		bidVolume float64
		askVolume float64
		expected  float64
	}{
		{name: "Equal volumes", bidVolume: 100, askVolume: 100, expected: 0},
		{name: "More bid volume", bidVolume: 150, askVolume: 100, expected: 0.2},
		{name: "More ask volume", bidVolume: 100, askVolume: 150, expected: -0.2},
		{name: "Zero volumes", bidVolume: 0, askVolume: 0, expected: 0},
		{name: "Ask side empty", bidVolume: 100, askVolume: 0, expected: 1},
		{name: "Bid side empty", bidVolume: 0, askVolume: 100, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateImbalance(tt.bidVolume, tt.askVolume)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("CalculateImbalance(%f, %f) = %f, want %f",
					tt.bidVolume, tt.askVolume, result, tt.expected)
			}
		})
	}
}

func TestImbalanceApproachesBounds(t *testing.T) {
	prev := 0.0
	for _, ask := range []float64{10, 1, 0.1, 0.001} {
		s := NewSnapshot(1, map[float64]float64{100: 10}, map[float64]float64{101: ask})
		got := Imbalance(s, 5)
		if got <= prev || got >= 1 {
			t.Fatalf("imbalance should grow toward +1 as ask volume shrinks: %v after %v", got, prev)
		}
		prev = got
	}
	s := NewSnapshot(1, map[float64]float64{100: 0.001}, map[float64]float64{101: 10})
	if got := Imbalance(s, 5); got > -0.99 {
		t.Fatalf("expected near -1, got %v", got)
	}
}

func TestImbalanceRespectsDepthLevels(t *testing.T) {
	s := NewSnapshot(1,
		map[float64]float64{100: 1, 99: 1, 90: 100},
		map[float64]float64{101: 1, 102: 1})
	if got := Imbalance(s, 2); got != 0 {
		t.Fatalf("levels beyond depth must be ignored, got %v", got)
	}
	if got := Imbalance(s, 20); got <= 0 {
		t.Fatalf("deep bid volume should count with 20 levels, got %v", got)
	}
}

func TestMicroPrice(t *testing.T) {
	// bidVol=3 askVol=1 -> (3*101 + 1*100)/4 = 100.75
	s := NewSnapshot(1, map[float64]float64{100: 3}, map[float64]float64{101: 1})
	if got := MicroPrice(s, 20); math.Abs(got-100.75) > 1e-9 {
		t.Fatalf("micro price = %v, want 100.75", got)
	}

	empty := &Snapshot{Tick: 1, Bids: map[int64]float64{100: 0}, Asks: map[int64]float64{101: 0}}
	if got := MicroPrice(empty, 20); got != 0 {
		t.Fatalf("book without quotes is invalid, got %v", got)
	}

	if got := MicroPrice(NewSnapshot(1, nil, map[float64]float64{101: 1}), 20); got != 0 {
		t.Fatalf("invalid book must return 0, got %v", got)
	}
}

// zeroQtyDepth reports best ticks but no resting quantity.
type zeroQtyDepth struct{}

func (zeroQtyDepth) BestBidTick() int64           { return 100 }
func (zeroQtyDepth) BestAskTick() int64           { return 102 }
func (zeroQtyDepth) TickSize() float64            { return 0.5 }
func (zeroQtyDepth) BidQtyAtTick(int64) float64   { return 0 }
func (zeroQtyDepth) AskQtyAtTick(int64) float64   { return 0 }

func TestMicroPriceFallsBackToMid(t *testing.T) {
	if got := MicroPrice(zeroQtyDepth{}, 20); got != 50.5 {
		t.Fatalf("expected mid 50.5, got %v", got)
	}
	if got := Imbalance(zeroQtyDepth{}, 20); got != 0 {
		t.Fatalf("expected 0 imbalance without volume, got %v", got)
	}
}
