package risk

import (
	"math"

	"market-replay-go/market"
)

// DefaultVolatilityWindow 波动率滚动窗口长度
const DefaultVolatilityWindow = 60

// Manager 做市库存风控：滚动波动率、按库存缩量、毒性流检测。
type Manager struct {
	maxInventory        float64
	volatilityThreshold float64
	prices              *market.VolatilityCalculator
}

// NewManager 创建风控管理器，window<=0 时使用默认窗口。
func NewManager(maxInventory, volatilityThreshold float64, window int) *Manager {
	if window <= 0 {
		window = DefaultVolatilityWindow
	}
	return &Manager{
		maxInventory:        maxInventory,
		volatilityThreshold: volatilityThreshold,
		prices:              market.NewVolatilityCalculator(window),
	}
}

// MaxInventory 库存上限
func (m *Manager) MaxInventory() float64 { return m.maxInventory }

// IsPositionSafe 库存绝对值严格小于上限
func (m *Manager) IsPositionSafe(inventory float64) bool {
	return math.Abs(inventory) < m.maxInventory
}

// UpdatePrice 记录一个中间价
func (m *Manager) UpdatePrice(price float64) {
	m.prices.AddPrice(price)
}

// Volatility 窗口内价格的总体标准差，样本不足 2 个时为 0
func (m *Manager) Volatility() float64 {
	return m.prices.StdDev()
}

// DetectToxicFlow 波动率超过阈值时返回 true。
// 只做记录，不参与报价决策。
func (m *Manager) DetectToxicFlow() bool {
	return m.Volatility() > m.volatilityThreshold
}

// AdjustOrderSize 随 |inventory|/max 线性缩量，最低缩到 base 的 50%。
func (m *Manager) AdjustOrderSize(base, inventory float64) float64 {
	if m.maxInventory == 0 {
		return base
	}
	ratio := math.Min(math.Abs(inventory)/m.maxInventory, 1)
	return base * (1 - ratio*0.5)
}
