package market

import "testing"

func TestLevelsSkipsEmptyTicks(t *testing.T) {
	s := NewSnapshot(1,
		map[float64]float64{100: 1, 98: 2},
		map[float64]float64{101: 3, 102: 4, 110: 5})
	bids, asks := Levels(s, 3)
	if len(bids) != 2 || bids[0].Price != 100 || bids[1].Price != 98 {
		t.Fatalf("unexpected bids %+v", bids)
	}
	if len(asks) != 2 || asks[1].Quantity != 4 {
		t.Fatalf("unexpected asks %+v", asks)
	}
}

func TestLevelsOneSided(t *testing.T) {
	s := NewSnapshot(1, map[float64]float64{100: 1}, nil)
	bids, asks := Levels(s, 5)
	if len(bids) != 1 || len(asks) != 0 {
		t.Fatalf("unexpected levels %+v %+v", bids, asks)
	}
}
