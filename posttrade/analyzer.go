// Package posttrade 汇总每个数据文件结束（或中途停止）时的最终绩效。
package posttrade

import (
	"sync"

	"go.uber.org/zap"

	"market-replay-go/infrastructure/logger"
	"market-replay-go/strategy"
)

// Summary 单个文件的最终统计
type Summary struct {
	File           string  `json:"file"`
	Strategy       string  `json:"strategy"`
	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`
	RealizedPnL    float64 `json:"realized_pnl"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
	TotalPnL       float64 `json:"total_pnl"`
	ReturnPct      float64 `json:"return_pct"`
	FinalPosition  float64 `json:"final_position"`
	FinalMid       float64 `json:"final_mid"`
	NumTrades      int     `json:"num_trades"`
	WinningTrades  int     `json:"winning_trades"`
	WinRate        float64 `json:"win_rate"`
	TotalOrders    int     `json:"total_orders"`
	TotalFills     int     `json:"total_fills"`
	FillRatio      float64 `json:"fill_ratio"`
	AvgHoldTime    float64 `json:"avg_hold_time"`
	Updates        uint64  `json:"updates"`
	Stopped        bool    `json:"stopped"`
}

// Summarize 由策略状态生成统计
func Summarize(file, name string, initialCapital float64, st *strategy.State, stopped bool) Summary {
	s := Summary{
		File:           file,
		Strategy:       name,
		InitialCapital: initialCapital,
		FinalEquity:    st.Equity(initialCapital),
		RealizedPnL:    st.RealizedPnL,
		UnrealizedPnL:  st.UnrealizedPnL,
		TotalPnL:       st.RealizedPnL + st.UnrealizedPnL,
		FinalPosition:  st.Position,
		FinalMid:       st.MidPrice,
		NumTrades:      st.NumTrades,
		WinningTrades:  st.WinningTrades,
		WinRate:        st.WinRate(),
		TotalOrders:    st.TotalOrders,
		TotalFills:     st.TotalFills,
		FillRatio:      st.FillRatio(),
		AvgHoldTime:    st.AvgHoldTime,
		Updates:        st.UpdateCount,
		Stopped:        stopped,
	}
	if initialCapital != 0 {
		s.ReturnPct = (s.FinalEquity - initialCapital) / initialCapital * 100
	}
	return s
}

// Totals 整个回放的累计
type Totals struct {
	Files       int
	TotalPnL    float64
	NumTrades   int
	Winning     int
	TotalOrders int
	TotalFills  int
}

// WinRate 累计胜率（百分比）
func (t Totals) WinRate() float64 {
	if t.NumTrades == 0 {
		return 0
	}
	return float64(t.Winning) / float64(t.NumTrades) * 100
}

// Analyzer 收集每个文件的统计，执行线程写，其他线程读
type Analyzer struct {
	mu        sync.RWMutex
	summaries []Summary
	log       *logger.Logger
}

func NewAnalyzer(log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	return &Analyzer{log: log}
}

// Report 记录并输出一份统计
func (a *Analyzer) Report(s Summary) {
	a.mu.Lock()
	a.summaries = append(a.summaries, s)
	a.mu.Unlock()

	a.log.Info("strategy complete",
		zap.String("file", s.File),
		zap.String("strategy", s.Strategy),
		zap.Bool("stopped", s.Stopped),
		zap.Float64("initial_capital", s.InitialCapital),
		zap.Float64("final_equity", s.FinalEquity),
		zap.Float64("realized_pnl", s.RealizedPnL),
		zap.Float64("unrealized_pnl", s.UnrealizedPnL),
		zap.Float64("total_pnl", s.TotalPnL),
		zap.Float64("return_pct", s.ReturnPct),
		zap.Float64("final_position", s.FinalPosition),
		zap.Int("trades", s.NumTrades),
		zap.Float64("win_rate", s.WinRate),
		zap.Int("orders", s.TotalOrders),
		zap.Int("fills", s.TotalFills),
		zap.Float64("avg_hold_s", s.AvgHoldTime),
	)
}

// Summaries 已记录的统计拷贝
func (a *Analyzer) Summaries() []Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Summary, len(a.summaries))
	copy(out, a.summaries)
	return out
}

// Totals 累计所有文件
func (a *Analyzer) Totals() Totals {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var t Totals
	for _, s := range a.summaries {
		t.Files++
		t.TotalPnL += s.TotalPnL
		t.NumTrades += s.NumTrades
		t.Winning += s.WinningTrades
		t.TotalOrders += s.TotalOrders
		t.TotalFills += s.TotalFills
	}
	return t
}
