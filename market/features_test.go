package market

import (
	"math"
	"testing"
)

func TestFeatureExtractor(t *testing.T) {
	e := NewFeatureExtractor(10, 100)
	bids := []Level{{Price: 100, Quantity: 3}, {Price: 99, Quantity: 1}}
	asks := []Level{{Price: 101, Quantity: 1}, {Price: 102, Quantity: 1}}

	f, ok := e.Extract(bids, asks)
	if !ok {
		t.Fatal("expected features")
	}
	if f.Mid != 100.5 {
		t.Fatalf("mid = %v", f.Mid)
	}
	if math.Abs(f.ImbalanceL1-0.5) > 1e-12 {
		t.Fatalf("L1 imbalance = %v", f.ImbalanceL1)
	}
	if f.PriceChangePct != 0 || f.TradeIntensity != 0 {
		t.Fatal("first extraction has no history")
	}
	if len(f.Vector()) != FeatureDim {
		t.Fatalf("vector dim %d", len(f.Vector()))
	}

	asks[0].Price = 102
	f, _ = e.Extract(bids, asks)
	if f.PriceChangePct <= 0 {
		t.Fatalf("expected positive change, got %v", f.PriceChangePct)
	}
	if e.IsReady() {
		t.Fatal("extractor needs 10 samples")
	}
}

func TestFeatureExtractorEmptySide(t *testing.T) {
	e := NewFeatureExtractor(10, 100)
	if _, ok := e.Extract(nil, []Level{{Price: 1, Quantity: 1}}); ok {
		t.Fatal("empty bid side must yield no features")
	}
}
