package strategy

// State 单个数据文件内的策略状态，每个文件开始时重新创建。
// 只由策略的 OnTick 修改，执行器只读取它来构造遥测。
type State struct {
	RealizedPnL   float64
	UnrealizedPnL float64
	Position      float64
	EntryPrice    float64
	MidPrice      float64
	UpdateCount   uint64
	NumTrades     int
	WinningTrades int
	TotalOrders   int
	TotalFills    int
	AvgHoldTime   float64 // 秒
}

// Equity = 初始资金 + 已实现 + 未实现
func (s *State) Equity(initialCapital float64) float64 {
	return initialCapital + s.RealizedPnL + s.UnrealizedPnL
}

// WinRate 胜率（百分比）
func (s *State) WinRate() float64 {
	if s.NumTrades == 0 {
		return 0
	}
	return float64(s.WinningTrades) / float64(s.NumTrades) * 100
}

// FillRatio 成交率（百分比）
func (s *State) FillRatio() float64 {
	if s.TotalOrders == 0 {
		return 0
	}
	return float64(s.TotalFills) / float64(s.TotalOrders) * 100
}

// Strategy 执行器依赖的最小能力集合。
// OnTick 返回的错误只会被记录，该 tick 被跳过，不会中止回放。
type Strategy interface {
	Name() string
	InitialCapital() float64
	OnTick(ctx *TickContext, st *State) error
}

// FileStarter 在每个数据文件开始时调用
type FileStarter interface {
	OnFileStart(path string)
}

// FileEnder 在数据文件正常结束时调用；因停止而退出时不会调用
type FileEnder interface {
	OnFileEnd(st *State)
}

// Intervaler 指定每隔多少次有效更新调用一次 OnTick，默认每次
type Intervaler interface {
	UpdateInterval() uint64
}

// DepthReporter 指定遥测中暴露的盘口档数，默认 10
type DepthReporter interface {
	OrderbookDepth() int
}

// PositionCloser 在停止或文件结束时平掉剩余仓位
type PositionCloser interface {
	ClosePosition(ctx *TickContext, st *State) error
}

const (
	DefaultUpdateInterval uint64 = 1
	DefaultOrderbookDepth        = 10
)

// UpdateInterval 返回策略的调用间隔，未实现 Intervaler 时使用 fallback。
func UpdateInterval(s Strategy, fallback uint64) uint64 {
	if iv, ok := s.(Intervaler); ok {
		if n := iv.UpdateInterval(); n > 0 {
			return n
		}
	}
	if fallback == 0 {
		return DefaultUpdateInterval
	}
	return fallback
}

// OrderbookDepth 返回遥测盘口档数
func OrderbookDepth(s Strategy) int {
	if dr, ok := s.(DepthReporter); ok {
		if n := dr.OrderbookDepth(); n > 0 {
			return n
		}
	}
	return DefaultOrderbookDepth
}
