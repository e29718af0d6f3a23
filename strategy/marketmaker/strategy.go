// Package marketmaker 多层做市策略：微观价格、盘口不平衡、库存调整的保留价，
// 以及成交后按原 id 补单。
package marketmaker

import (
	"strings"

	"go.uber.org/zap"

	"market-replay-go/infrastructure/logger"
	"market-replay-go/market"
	"market-replay-go/order"
	"market-replay-go/risk"
	"market-replay-go/strategy"
)

// rebateRate 成交后计入的挂单返佣
const rebateRate = 0.0001

// closeOrderID 平仓单 id，不与层级 id 冲突
const closeOrderID int64 = 1 << 20

// Strategy 多层做市
type Strategy struct {
	cfg     strategy.MarketMakerConfig
	risk    *risk.Manager
	tracker *order.Tracker
	log     *logger.Logger

	basis  costBasis
	placed bool
}

var (
	_ strategy.Strategy       = (*Strategy)(nil)
	_ strategy.FileStarter    = (*Strategy)(nil)
	_ strategy.DepthReporter  = (*Strategy)(nil)
	_ strategy.Intervaler     = (*Strategy)(nil)
	_ strategy.PositionCloser = (*Strategy)(nil)
)

// New 创建做市策略
func New(cfg strategy.MarketMakerConfig, log *logger.Logger) *Strategy {
	if log == nil {
		log = logger.Nop()
	}
	return &Strategy{
		cfg:     cfg,
		risk:    risk.NewManager(cfg.MaxInventory, cfg.VolatilityThreshold, risk.DefaultVolatilityWindow),
		tracker: order.NewTracker(),
		log:     log.Named("marketmaker"),
	}
}

func (s *Strategy) Name() string            { return strategy.KindMarketMaker.DisplayName() }
func (s *Strategy) InitialCapital() float64 { return s.cfg.InitialCapital }
func (s *Strategy) OrderbookDepth() int     { return s.cfg.DepthLevels }

// UpdateInterval 每次有效更新都调用，检查节奏由 EvalInterval 控制
func (s *Strategy) UpdateInterval() uint64 { return 1 }

// Tracker 订单跟踪器（只读使用）
func (s *Strategy) Tracker() *order.Tracker { return s.tracker }

// Risk 风控管理器
func (s *Strategy) Risk() *risk.Manager { return s.risk }

// OnFileStart 新文件重新挂初始单
func (s *Strategy) OnFileStart(path string) {
	s.placed = false
	s.basis.reset()
	s.tracker.Clear()
	s.log.Info("market maker file start", zap.String("file", path))
}

// OnTick 首个有效盘口挂初始单，之后每 EvalInterval 次更新检查成交并补单。
func (s *Strategy) OnTick(ctx *strategy.TickContext, st *strategy.State) error {
	if !ctx.Valid() {
		return nil
	}
	mid := ctx.MidPrice()
	st.MidPrice = mid

	if !s.placed {
		s.risk.UpdatePrice(mid)
		s.placeInitial(ctx, st)
		s.placed = true
	} else if st.UpdateCount%uint64(s.evalInterval()) == 0 {
		s.risk.UpdatePrice(mid)
		s.refill(ctx, st)
		if s.risk.DetectToxicFlow() {
			s.log.Debug("toxic flow detected",
				zap.Float64("volatility", s.risk.Volatility()),
				zap.Float64("inventory", st.Position))
		}
	}

	s.mark(st, mid)
	return nil
}

// mark 已实现只含平仓盈亏和返佣，库存按均价计浮动盈亏
func (s *Strategy) mark(st *strategy.State, mid float64) {
	st.Position = s.basis.qty
	st.EntryPrice = s.basis.avg
	st.UnrealizedPnL = s.basis.unrealized(mid)
}

func (s *Strategy) evalInterval() int {
	if s.cfg.EvalInterval <= 0 {
		return 10
	}
	return s.cfg.EvalInterval
}

// pricing 按当前盘口和库存计算报价输入
func (s *Strategy) pricing(ctx *strategy.TickContext, inventory, size float64) Pricing {
	d := ctx.Depth()
	tick := ctx.TickSize()
	micro := market.MicroPrice(d, s.cfg.DepthLevels)
	return Pricing{
		Reservation: ReservationPrice(micro, inventory, s.cfg.Gamma, s.risk.Volatility()),
		HalfSpread:  HalfSpread(tick),
		Imbalance:   market.Imbalance(d, s.cfg.DepthLevels),
		Tick:        tick,
		Size:        size,
	}
}

func (s *Strategy) placeInitial(ctx *strategy.TickContext, st *strategy.State) {
	p := s.pricing(ctx, st.Position, s.cfg.OrderSize)
	s.log.Info("initial order submission",
		zap.Float64("best_bid", ctx.BestBid()),
		zap.Float64("best_ask", ctx.BestAsk()),
		zap.Float64("reservation", p.Reservation),
		zap.Float64("half_spread", p.HalfSpread))
	for _, q := range p.Quotes(s.cfg.OrderLayers) {
		s.submit(ctx, st, q)
	}
}

type slot struct {
	side  order.Side
	layer int
}

// refill 扫描所有层级订单：成交的记账，成交或离开订单簿的全部按最新价格重挂。
func (s *Strategy) refill(ctx *strategy.TickContext, st *strategy.State) {
	orders := ctx.Orders()
	var vacated []slot
	filled := 0
	for layer := 0; layer < s.cfg.OrderLayers; layer++ {
		for _, side := range []order.Side{order.Buy, order.Sell} {
			id := OrderID(side, layer)
			o, ok := orders[id]
			switch {
			case !ok:
				vacated = append(vacated, slot{side, layer})
			case o.Status == order.StatusFilled:
				s.applyFill(st, o)
				filled++
				vacated = append(vacated, slot{side, layer})
			case o.Status == order.StatusCanceled || o.Status == order.StatusExpired:
				vacated = append(vacated, slot{side, layer})
			}
		}
	}
	if len(vacated) == 0 {
		return
	}
	// 已记账的订单先清掉，补单失败时下次只会被当作缺失重挂
	ctx.ClearInactive()

	if filled > 0 {
		s.log.Debug("refilling filled orders", zap.Int("count", filled))
	}
	size := s.risk.AdjustOrderSize(s.cfg.OrderSize, st.Position)
	p := s.pricing(ctx, st.Position, size)
	for _, sl := range vacated {
		s.submit(ctx, st, p.QuoteFor(sl.side, sl.layer))
	}
}

func (s *Strategy) applyFill(st *strategy.State, o order.Order) {
	rec, _ := s.tracker.MarkFilled(o.ID)
	notional := o.Price * o.Quantity
	st.RealizedPnL += s.basis.apply(o.Side, o.Price, o.Quantity)
	st.RealizedPnL += notional * rebateRate
	st.Position = s.basis.qty
	st.TotalFills++
	s.log.LogFill(strings.ToLower(o.Side.String())+"_filled", o.ID, map[string]interface{}{
		"price":     o.Price,
		"qty":       o.Quantity,
		"layer":     rec.Layer,
		"inventory": st.Position,
	})
}

// submit 下 GTX 挂单，失败时忽略，等下一次检查再补。
func (s *Strategy) submit(ctx *strategy.TickContext, st *strategy.State, q Quote) {
	if q.Price <= 0 || q.Size <= 0 {
		return
	}
	if err := ctx.Submit(q.Side, q.ID, q.Price, q.Size, order.GTX, order.Limit); err != nil {
		s.log.Debug("quote rejected", zap.Int64("id", q.ID), zap.Error(err))
		return
	}
	s.tracker.Register(q.ID, q.Side, q.Price, q.Size, q.Layer)
	st.TotalOrders++
}

// ClosePosition 撤掉所有层级挂单，以对手最优价平掉剩余库存。
func (s *Strategy) ClosePosition(ctx *strategy.TickContext, st *strategy.State) error {
	for layer := 0; layer < s.cfg.OrderLayers; layer++ {
		for _, side := range []order.Side{order.Buy, order.Sell} {
			_ = ctx.Cancel(OrderID(side, layer))
		}
	}

	// 上次检查之后的成交先记账，库存为零时也不能跳过
	for id, o := range ctx.Orders() {
		if id != closeOrderID && o.Status == order.StatusFilled && s.tracker.Has(id) {
			s.applyFill(st, o)
		}
	}
	if ctx.Valid() {
		s.mark(st, ctx.MidPrice())
	}
	if st.Position == 0 || !ctx.Valid() {
		return nil
	}

	qty := st.Position
	side, price := order.Sell, ctx.BestBid()
	if qty < 0 {
		side, price, qty = order.Buy, ctx.BestAsk(), -qty
	}
	if err := ctx.Submit(side, closeOrderID, price, qty, order.GTC, order.Limit); err != nil {
		return err
	}
	st.TotalOrders++
	if o, ok := ctx.Orders()[closeOrderID]; ok && o.Status == order.StatusFilled {
		st.RealizedPnL += s.basis.apply(side, o.Price, o.Quantity)
		s.mark(st, ctx.MidPrice())
		st.TotalFills++
		s.log.LogFill("position_closed", closeOrderID, map[string]interface{}{
			"side":  side.String(),
			"price": o.Price,
			"qty":   o.Quantity,
		})
	}
	return nil
}
