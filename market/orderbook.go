package market

import (
	"sync"

	"github.com/tidwall/btree"
)

// OrderBook 维护按 tick 排序的 L2 盘口，实现 Depth。
type OrderBook struct {
	mu   sync.RWMutex
	tick float64
	lot  float64
	bids *btree.Map[int64, float64] // tick -> qty
	asks *btree.Map[int64, float64]
}

func NewOrderBook(tickSize, lotSize float64) *OrderBook {
	return &OrderBook{
		tick: tickSize,
		lot:  lotSize,
		bids: btree.NewMap[int64, float64](32),
		asks: btree.NewMap[int64, float64](32),
	}
}

// SetBid 设置某档绝对数量，qty<=0 表示删除该档。
func (ob *OrderBook) SetBid(tick int64, qty float64) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	setLevel(ob.bids, tick, qty)
}

// SetAsk 同 SetBid。
func (ob *OrderBook) SetAsk(tick int64, qty float64) {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	setLevel(ob.asks, tick, qty)
}

func setLevel(side *btree.Map[int64, float64], tick int64, qty float64) {
	if qty <= 0 {
		side.Delete(tick)
		return
	}
	side.Set(tick, qty)
}

// Clear 清空盘口
func (ob *OrderBook) Clear() {
	ob.mu.Lock()
	defer ob.mu.Unlock()
	ob.bids = btree.NewMap[int64, float64](32)
	ob.asks = btree.NewMap[int64, float64](32)
}

func (ob *OrderBook) BestBidTick() int64 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	best := NoBid
	ob.bids.Reverse(func(tick int64, _ float64) bool {
		best = tick
		return false
	})
	return best
}

func (ob *OrderBook) BestAskTick() int64 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	best := NoAsk
	ob.asks.Scan(func(tick int64, _ float64) bool {
		best = tick
		return false
	})
	return best
}

func (ob *OrderBook) TickSize() float64 { return ob.tick }

func (ob *OrderBook) LotSize() float64 { return ob.lot }

func (ob *OrderBook) BidQtyAtTick(tick int64) float64 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	q, _ := ob.bids.Get(tick)
	return q
}

func (ob *OrderBook) AskQtyAtTick(tick int64) float64 {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	q, _ := ob.asks.Get(tick)
	return q
}

// Depths 返回两侧档位数。
func (ob *OrderBook) Depths() (bids, asks int) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.bids.Len(), ob.asks.Len()
}
