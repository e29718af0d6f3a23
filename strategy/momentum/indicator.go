package momentum

import (
	"math"

	"market-replay-go/strategy"
)

// Indicator 回看窗口内的累计收益动量
type Indicator struct {
	lookback  int
	threshold float64
	prices    []float64
	returns   []float64
}

// NewIndicator 保留最多 lookback+1 个价格
func NewIndicator(lookback int, threshold float64) *Indicator {
	return &Indicator{
		lookback:  lookback,
		threshold: threshold,
		prices:    make([]float64, 0, lookback+1),
		returns:   make([]float64, 0, lookback),
	}
}

// Update 追加一个价格
func (ind *Indicator) Update(price float64) {
	ind.prices = append(ind.prices, price)
	if len(ind.prices) > ind.lookback+1 {
		ind.prices = ind.prices[1:]
	}
	if n := len(ind.prices); n >= 2 {
		prev := ind.prices[n-2]
		ind.returns = append(ind.returns, (price-prev)/prev)
		if len(ind.returns) > ind.lookback {
			ind.returns = ind.returns[1:]
		}
	}
}

// Momentum (最新价-最早价)/最早价，不足两个价格时 ok=false
func (ind *Indicator) Momentum() (float64, bool) {
	if len(ind.prices) < 2 {
		return 0, false
	}
	first := ind.prices[0]
	return (ind.prices[len(ind.prices)-1] - first) / first, true
}

// AverageReturn 单步平均收益
func (ind *Indicator) AverageReturn() (float64, bool) {
	if len(ind.returns) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range ind.returns {
		sum += r
	}
	return sum / float64(len(ind.returns)), true
}

// Volatility 单步收益的总体标准差
func (ind *Indicator) Volatility() (float64, bool) {
	if len(ind.returns) < 2 {
		return 0, false
	}
	mean, _ := ind.AverageReturn()
	var acc float64
	for _, r := range ind.returns {
		acc += (r - mean) * (r - mean)
	}
	return math.Sqrt(acc / float64(len(ind.returns))), true
}

// Signal 动量超过阈值做多，低于负阈值做空
func (ind *Indicator) Signal() strategy.Signal {
	m, ok := ind.Momentum()
	switch {
	case !ok:
		return strategy.Neutral
	case m > ind.threshold:
		return strategy.Long
	case m < -ind.threshold:
		return strategy.Short
	}
	return strategy.Neutral
}

// IsReady 价格数达到回看长度
func (ind *Indicator) IsReady() bool { return len(ind.prices) >= ind.lookback }

func (ind *Indicator) Len() int { return len(ind.prices) }
