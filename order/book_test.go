package order

import "testing"

func TestBookSetGetSnapshot(t *testing.T) {
	b := NewBook()
	b.Set(Order{ID: 1, Side: Buy, Price: 100, Status: StatusActive})
	got, ok := b.Get(1)
	if !ok || got.Side != Buy {
		t.Fatalf("get failed: %+v %v", got, ok)
	}
	if snap := b.Snapshot(); len(snap) != 1 {
		t.Fatalf("expected 1 order, got %d", len(snap))
	}
}

func TestBookResubmitOverwrites(t *testing.T) {
	b := NewBook()
	b.Set(Order{ID: 3, Status: StatusFilled, Price: 99})
	b.Set(Order{ID: 3, Status: StatusActive, Price: 101})
	got, _ := b.Get(3)
	if got.Status != StatusActive || got.Price != 101 {
		t.Fatalf("expected overwritten active order, got %+v", got)
	}
}

func TestBookClearInactive(t *testing.T) {
	b := NewBook()
	b.Set(Order{ID: 0, Status: StatusActive})
	b.Set(Order{ID: 1, Status: StatusFilled})
	b.Set(Order{ID: 2, Status: StatusCanceled})
	b.Set(Order{ID: 3, Status: StatusExpired})
	b.ClearInactive()
	if len(b.Snapshot()) != 1 || len(b.Active()) != 1 {
		t.Fatalf("only the active order should remain: %+v", b.Snapshot())
	}
}
