package telemetry

import "market-replay-go/market"

// LatencyMicros 回放中固定报告的延迟估计
const LatencyMicros = 100

// OrderBookLevel 推送给观察端的盘口档位
type OrderBookLevel = market.Level

// PerformanceData 某一时刻的绩效快照，构造后不再修改。
type PerformanceData struct {
	RunID            string           `json:"run_id"`
	Timestamp        float64          `json:"timestamp"` // 模拟时间（秒）
	Equity           float64          `json:"equity"`
	RealizedPnL      float64          `json:"realized_pnl"`
	UnrealizedPnL    float64          `json:"unrealized_pnl"`
	Position         float64          `json:"position"`
	MidPrice         float64          `json:"mid_price"`
	StrategyName     string           `json:"strategy_name"`
	NumTrades        int              `json:"num_trades"`
	WinningTrades    int              `json:"winning_trades"`
	TotalFills       int              `json:"total_fills"`
	TotalOrders      int              `json:"total_orders"`
	PositionHoldTime float64          `json:"position_hold_time"`
	LatencyMicros    int64            `json:"latency_micros"`
	Bids             []OrderBookLevel `json:"bids"`
	Asks             []OrderBookLevel `json:"asks"`
}

// TotalPnL 已实现与未实现之和
func (p PerformanceData) TotalPnL() float64 { return p.RealizedPnL + p.UnrealizedPnL }

// WinRate 胜率（百分比）
func (p PerformanceData) WinRate() float64 {
	if p.NumTrades == 0 {
		return 0
	}
	return float64(p.WinningTrades) / float64(p.NumTrades) * 100
}
