package market

// CalculateImbalance calculates the imbalance between bid and ask volumes
// Imbalance = (BidVol - AskVol) / (BidVol + AskVol)
func CalculateImbalance(bidVolumeTop float64, askVolumeTop float64) float64 {
	totalVolume := bidVolumeTop + askVolumeTop
	if totalVolume == 0 {
		return 0
	}
	return (bidVolumeTop - askVolumeTop) / totalVolume
}

// SideVolumes sums resting quantity over the first `levels` ticks of each
// side, starting at the best price. Empty ticks count as zero.
func SideVolumes(d Depth, levels int) (bidVolume, askVolume float64) {
	if !Valid(d) {
		return 0, 0
	}
	bestBid := d.BestBidTick()
	bestAsk := d.BestAskTick()
	for i := 0; i < levels; i++ {
		if q := d.BidQtyAtTick(bestBid - int64(i)); q > 0 {
			bidVolume += q
		}
		if q := d.AskQtyAtTick(bestAsk + int64(i)); q > 0 {
			askVolume += q
		}
	}
	return bidVolume, askVolume
}

// Imbalance calculates order-book imbalance over `levels` ticks of depth.
// It is 0 for an invalid book or when there is no volume.
func Imbalance(d Depth, levels int) float64 {
	bidVolume, askVolume := SideVolumes(d, levels)
	return CalculateImbalance(bidVolume, askVolume)
}

// MicroPrice 以对侧累计量加权最优价：
// (bidVol*bestAsk + askVol*bestBid) / (bidVol+askVol)。
// 无量时退化为中间价，深度无效时返回 0。
func MicroPrice(d Depth, levels int) float64 {
	if !Valid(d) {
		return 0
	}
	bidVolume, askVolume := SideVolumes(d, levels)
	if bidVolume+askVolume == 0 {
		return Mid(d)
	}
	bestBid := BestBid(d)
	bestAsk := BestAsk(d)
	return (bidVolume*bestAsk + askVolume*bestBid) / (bidVolume + askVolume)
}
