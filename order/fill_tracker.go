package order

import "sync"

// Record 策略侧登记的挂单
type Record struct {
	ID    int64
	Side  Side
	Price float64
	Qty   float64
	Layer int
}

// Stats 成交统计
type Stats struct {
	FilledCount int
	BuyVolume   float64
	SellVolume  float64
	ActiveCount int
}

// Tracker 跟踪策略实例自己的挂单，并累计成交量。
// 在 Tracker 中的 id 即视为仍然有效；成交即移除，没有部分成交状态。
// 同一 (layer, side) 槽位复用固定 id，重新登记会覆盖旧记录。
type Tracker struct {
	mu sync.RWMutex

	active map[int64]Record

	filledCount int
	buyVolume   float64
	sellVolume  float64
}

// NewTracker 创建挂单跟踪器
func NewTracker() *Tracker {
	return &Tracker{active: make(map[int64]Record)}
}

// Register 登记挂单
func (t *Tracker) Register(id int64, side Side, price, qty float64, layer int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active[id] = Record{ID: id, Side: side, Price: price, Qty: qty, Layer: layer}
}

// MarkFilled 移除并返回记录，同时按方向累计成交量。未登记的 id 返回 false。
func (t *Tracker) MarkFilled(id int64) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.active[id]
	if !ok {
		return Record{}, false
	}
	delete(t.active, id)

	t.filledCount++
	if rec.Side == Buy {
		t.buyVolume += rec.Qty
	} else {
		t.sellVolume += rec.Qty
	}
	return rec, true
}

// Stats 返回成交统计
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{
		FilledCount: t.filledCount,
		BuyVolume:   t.buyVolume,
		SellVolume:  t.sellVolume,
		ActiveCount: len(t.active),
	}
}

// Has 判断 id 是否仍在跟踪
func (t *Tracker) Has(id int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.active[id]
	return ok
}

// Get 返回登记的记录
func (t *Tracker) Get(id int64) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.active[id]
	return rec, ok
}

// Clear 清空挂单（成交统计保留）
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = make(map[int64]Record)
}
