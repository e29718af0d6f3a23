package market

import "math"

const (
	// NoBid / NoAsk 表示该侧还没有报价
	NoBid int64 = math.MinInt64
	NoAsk int64 = math.MaxInt64
)

// Depth 是模拟器暴露的只读深度视图，价格以 tick 为单位。
type Depth interface {
	BestBidTick() int64
	BestAskTick() int64
	TickSize() float64
	BidQtyAtTick(tick int64) float64
	AskQtyAtTick(tick int64) float64
}

// Valid 当买卖两侧都有报价时返回 true。
func Valid(d Depth) bool {
	if d == nil {
		return false
	}
	return d.BestBidTick() != NoBid && d.BestAskTick() != NoAsk
}

// BestBid 返回最优买价
func BestBid(d Depth) float64 { return float64(d.BestBidTick()) * d.TickSize() }

// BestAsk 返回最优卖价
func BestAsk(d Depth) float64 { return float64(d.BestAskTick()) * d.TickSize() }

// Mid 返回中间价；深度无效时返回 0。
func Mid(d Depth) float64 {
	if !Valid(d) {
		return 0
	}
	return (float64(d.BestBidTick()) + float64(d.BestAskTick())) / 2 * d.TickSize()
}

// Snapshot 是 Depth 的静态实现，用于构造固定盘口。
type Snapshot struct {
	Tick float64
	Bids map[int64]float64
	Asks map[int64]float64
}

// NewSnapshot 以价格构造盘口，价格按 tick 四舍五入。
func NewSnapshot(tick float64, bids, asks map[float64]float64) *Snapshot {
	s := &Snapshot{Tick: tick, Bids: make(map[int64]float64), Asks: make(map[int64]float64)}
	for p, q := range bids {
		s.Bids[PriceToTick(p, tick)] = q
	}
	for p, q := range asks {
		s.Asks[PriceToTick(p, tick)] = q
	}
	return s
}

func (s *Snapshot) BestBidTick() int64 {
	best := NoBid
	for t, q := range s.Bids {
		if q > 0 && t > best {
			best = t
		}
	}
	return best
}

func (s *Snapshot) BestAskTick() int64 {
	best := NoAsk
	for t, q := range s.Asks {
		if q > 0 && t < best {
			best = t
		}
	}
	return best
}

func (s *Snapshot) TickSize() float64               { return s.Tick }
func (s *Snapshot) BidQtyAtTick(tick int64) float64 { return s.Bids[tick] }
func (s *Snapshot) AskQtyAtTick(tick int64) float64 { return s.Asks[tick] }

// PriceToTick 将价格换算为最近的 tick。
func PriceToTick(price, tick float64) int64 {
	return int64(math.Round(price / tick))
}

// RoundToTick 将价格对齐到 tick。
func RoundToTick(price, tick float64) float64 {
	return float64(PriceToTick(price, tick)) * tick
}
