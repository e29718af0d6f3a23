package market

// Level 一个价格档位
type Level struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Levels 从最优价向外扫描 n 个 tick，返回有量的档位。
// 空 tick 不计入结果，因此返回的档位数可能少于 n。
func Levels(d Depth, n int) (bids, asks []Level) {
	bids = make([]Level, 0, n)
	asks = make([]Level, 0, n)
	if d == nil || n <= 0 {
		return bids, asks
	}
	tick := d.TickSize()
	if best := d.BestBidTick(); best != NoBid {
		for i := 0; i < n; i++ {
			t := best - int64(i)
			if q := d.BidQtyAtTick(t); q > 0 {
				bids = append(bids, Level{Price: float64(t) * tick, Quantity: q})
			}
		}
	}
	if best := d.BestAskTick(); best != NoAsk {
		for i := 0; i < n; i++ {
			t := best + int64(i)
			if q := d.AskQtyAtTick(t); q > 0 {
				asks = append(asks, Level{Price: float64(t) * tick, Quantity: q})
			}
		}
	}
	return bids, asks
}
