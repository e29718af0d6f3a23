package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"market-replay-go/telemetry"
)

// Monitor 回放会话的 Prometheus 指标
type Monitor struct {
	registry *prometheus.Registry

	// 绩效指标
	equity        prometheus.Gauge
	realizedPnL   prometheus.Gauge
	unrealizedPnL prometheus.Gauge
	position      prometheus.Gauge
	midPrice      prometheus.Gauge
	spread        prometheus.Gauge
	numTrades     prometheus.Gauge
	totalFills    prometheus.Gauge
	totalOrders   prometheus.Gauge
	simTime       prometheus.Gauge

	// 控制指标
	speed        prometheus.Gauge
	controlState prometheus.Gauge
	commands     *prometheus.CounterVec
	responses    *prometheus.CounterVec

	// 管道指标
	snapshots     prometheus.Counter
	dropped       prometheus.Counter
	filesFinished *prometheus.CounterVec
	wsConnections prometheus.Counter
	wsDisconnects prometheus.Counter
	wsClients     prometheus.Gauge
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "replay",
		Subsystem: "session",
	}
}

// New 创建使用独立 registry 的 Monitor
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		}, labels)
	}

	return &Monitor{
		registry: reg,

		equity:        gauge("equity", "当前权益"),
		realizedPnL:   gauge("realized_pnl", "已实现盈亏"),
		unrealizedPnL: gauge("unrealized_pnl", "未实现盈亏"),
		position:      gauge("position", "当前净仓位"),
		midPrice:      gauge("mid_price", "当前中间价"),
		spread:        gauge("spread", "当前价差"),
		numTrades:     gauge("trades", "本文件完成的交易数"),
		totalFills:    gauge("fills", "本文件成交的订单数"),
		totalOrders:   gauge("orders", "本文件提交的订单数"),
		simTime:       gauge("sim_time_seconds", "本文件已回放的模拟时间（秒）"),

		speed:        gauge("speed_multiplier", "回放倍速"),
		controlState: gauge("control_state", "控制状态(0=暂停,1=运行,2=停止,3=完成)"),
		commands:     counterVec("commands_total", "收到的指令数", "type"),
		responses:    counterVec("responses_total", "发出的回应数", "type"),

		snapshots:     counter("telemetry_snapshots_total", "输出的遥测快照数"),
		dropped:       counter("telemetry_dropped_total", "因通道满丢弃的遥测快照数"),
		filesFinished: counterVec("files_finished_total", "回放结束的文件数", "outcome"),
		wsConnections: counter("ws_connections_total", "WebSocket连接次数"),
		wsDisconnects: counter("ws_disconnects_total", "WebSocket断开次数"),
		wsClients:     gauge("ws_clients", "当前WebSocket连接数"),
	}
}

// ObservePerformance 用一份遥测快照刷新绩效指标
func (m *Monitor) ObservePerformance(pd telemetry.PerformanceData) {
	m.snapshots.Inc()
	m.equity.Set(pd.Equity)
	m.realizedPnL.Set(pd.RealizedPnL)
	m.unrealizedPnL.Set(pd.UnrealizedPnL)
	m.position.Set(pd.Position)
	m.midPrice.Set(pd.MidPrice)
	m.numTrades.Set(float64(pd.NumTrades))
	m.totalFills.Set(float64(pd.TotalFills))
	m.totalOrders.Set(float64(pd.TotalOrders))
	m.simTime.Set(pd.Timestamp)
	if len(pd.Bids) > 0 && len(pd.Asks) > 0 {
		m.spread.Set(pd.Asks[0].Price - pd.Bids[0].Price)
	}
}

// 控制相关方法
func (m *Monitor) RecordCommand(kind string) {
	m.commands.WithLabelValues(kind).Inc()
}

func (m *Monitor) RecordResponse(kind string) {
	m.responses.WithLabelValues(kind).Inc()
}

func (m *Monitor) UpdateSpeed(v float64) {
	m.speed.Set(v)
}

func (m *Monitor) UpdateControlState(state int) {
	m.controlState.Set(float64(state))
}

// 管道相关方法
func (m *Monitor) RecordDropped() {
	m.dropped.Inc()
}

func (m *Monitor) RecordFileFinished(outcome string) {
	m.filesFinished.WithLabelValues(outcome).Inc()
}

func (m *Monitor) RecordWSConnection() {
	m.wsConnections.Inc()
	m.wsClients.Inc()
}

func (m *Monitor) RecordWSDisconnect() {
	m.wsDisconnects.Inc()
	m.wsClients.Dec()
}

// Handler 返回HTTP handler用于暴露指标
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
