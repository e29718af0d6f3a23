package marketmaker

import (
	"market-replay-go/market"
	"market-replay-go/order"
)

// FixedSpreadTicks 报价总价差（tick 数）
const FixedSpreadTicks = 10.0

// imbalanceSkew 盘口不平衡对报价的偏移系数
const imbalanceSkew = 0.1

// Quote 单层单边报价
type Quote struct {
	ID    int64
	Side  order.Side
	Layer int
	Price float64
	Size  float64
}

// OrderID 每个 (层, 方向) 固定一个 id：买 2L，卖 2L+1
func OrderID(side order.Side, layer int) int64 {
	if side == order.Buy {
		return int64(layer * 2)
	}
	return int64(layer*2 + 1)
}

// ReservationPrice 库存风险调整后的报价中心：mid - inv*gamma*vol²
func ReservationPrice(mid, inventory, gamma, volatility float64) float64 {
	return mid - inventory*gamma*volatility*volatility
}

// HalfSpread 固定价差的一半
func HalfSpread(tick float64) float64 {
	return FixedSpreadTicks * tick / 2
}

// Pricing 一次报价计算的输入
type Pricing struct {
	Reservation float64
	HalfSpread  float64
	Imbalance   float64
	Tick        float64
	Size        float64
}

// Offset 不平衡偏移量，买价加、卖价减。
// 买盘偏重时两边报价同时向内收，买单更靠近盘口，卖单更让价。
func (p Pricing) Offset() float64 {
	return p.Imbalance * p.HalfSpread * imbalanceSkew
}

// QuoteFor 计算某一层某一方向的报价，价格按 tick 取整，外层数量递减。
func (p Pricing) QuoteFor(side order.Side, layer int) Quote {
	layerOffset := float64(layer) * p.Tick
	var price float64
	if side == order.Buy {
		price = p.Reservation - p.HalfSpread - layerOffset + p.Offset()
	} else {
		price = p.Reservation + p.HalfSpread + layerOffset - p.Offset()
	}
	return Quote{
		ID:    OrderID(side, layer),
		Side:  side,
		Layer: layer,
		Price: market.RoundToTick(price, p.Tick),
		Size:  p.Size / (1 + float64(layer)*0.5),
	}
}

// Quotes 生成 layers 层双边报价，顺序为 买0 卖0 买1 卖1 ...
func (p Pricing) Quotes(layers int) []Quote {
	out := make([]Quote, 0, layers*2)
	for l := 0; l < layers; l++ {
		out = append(out, p.QuoteFor(order.Buy, l), p.QuoteFor(order.Sell, l))
	}
	return out
}
