package market

import "math"

// FeatureDim 特征向量维度
const FeatureDim = 8

// Features 从盘口提取的短周期特征
type Features struct {
	Mid                  float64
	SpreadBps            float64
	WeightedMid          float64
	ImbalanceL1          float64
	ImbalanceMultiLevel  float64 // 按 1/(i+1) 距离加权
	BidPressure          float64
	AskPressure          float64
	PressureRatio        float64 // ln(bid/ask)
	PriceChangePct       float64
	VolatilityBps        float64
	VolumeWeightedSpread float64
	TradeIntensity       float64 // 盘口总量的相对变化
}

// Vector 返回模型输入，顺序固定。
func (f Features) Vector() []float64 {
	return []float64{
		f.SpreadBps,
		f.ImbalanceL1,
		f.ImbalanceMultiLevel,
		f.PressureRatio,
		f.PriceChangePct,
		f.VolatilityBps,
		f.VolumeWeightedSpread,
		f.TradeIntensity,
	}
}

// FeatureExtractor 维护价格和总量历史，逐次提取特征。
type FeatureExtractor struct {
	depthLevels int
	historySize int
	prices      *VolatilityCalculator
	volumes     []float64
	lastMid     float64
	hasLast     bool
}

// NewFeatureExtractor 创建特征提取器
func NewFeatureExtractor(depthLevels, historySize int) *FeatureExtractor {
	return &FeatureExtractor{
		depthLevels: depthLevels,
		historySize: historySize,
		prices:      NewVolatilityCalculator(historySize),
		volumes:     make([]float64, 0, historySize),
	}
}

// Extract 计算特征并更新历史；任一侧为空时返回 false。
func (e *FeatureExtractor) Extract(bids, asks []Level) (Features, bool) {
	if len(bids) == 0 || len(asks) == 0 {
		return Features{}, false
	}

	bestBid, bestAsk := bids[0].Price, asks[0].Price
	mid := (bestBid + bestAsk) / 2
	spread := bestAsk - bestBid

	bidQty1, askQty1 := bids[0].Quantity, asks[0].Quantity
	f := Features{
		Mid:         mid,
		SpreadBps:   spread / mid * 10000,
		ImbalanceL1: CalculateImbalance(bidQty1, askQty1),
		WeightedMid: mid,
	}

	n := e.depthLevels
	if len(bids) < n {
		n = len(bids)
	}
	if len(asks) < n {
		n = len(asks)
	}
	var weightedBid, weightedAsk float64
	for i := 0; i < n; i++ {
		w := 1.0 / float64(i+1)
		weightedBid += bids[i].Quantity * w
		weightedAsk += asks[i].Quantity * w
		f.BidPressure += bids[i].Quantity
		f.AskPressure += asks[i].Quantity
	}
	f.ImbalanceMultiLevel = CalculateImbalance(weightedBid, weightedAsk)
	if f.AskPressure > 0 && f.BidPressure > 0 {
		f.PressureRatio = math.Log(f.BidPressure / f.AskPressure)
	}

	if bidQty1+askQty1 > 0 {
		f.WeightedMid = (bestBid*askQty1 + bestAsk*bidQty1) / (bidQty1 + askQty1)
	}
	if e.hasLast && e.lastMid > 0 {
		f.PriceChangePct = (mid - e.lastMid) / e.lastMid * 100
	}
	f.VolatilityBps = e.prices.ReturnStdDev() * 10000
	f.VolumeWeightedSpread = spread * (bidQty1 + askQty1) / 2

	total := f.BidPressure + f.AskPressure
	if len(e.volumes) > 0 {
		if last := e.volumes[len(e.volumes)-1]; last > 0 {
			f.TradeIntensity = (total - last) / last
		}
	}

	e.update(mid, total)
	return f, true
}

func (e *FeatureExtractor) update(mid, total float64) {
	e.lastMid = mid
	e.hasLast = true
	e.prices.AddPrice(mid)
	if len(e.volumes) >= e.historySize {
		e.volumes = e.volumes[1:]
	}
	e.volumes = append(e.volumes, total)
}

// IsReady 至少积累 10 个价格
func (e *FeatureExtractor) IsReady() bool { return e.prices.Len() >= 10 }

// Reset 清空历史
func (e *FeatureExtractor) Reset() {
	e.prices.Reset()
	e.volumes = e.volumes[:0]
	e.lastMid = 0
	e.hasLast = false
}
