package sim

import (
	"errors"
	"fmt"
	"io"
	"os"

	"market-replay-go/market"
	"market-replay-go/order"
)

// Config 回放模拟器参数
type Config struct {
	TickSize float64
	LotSize  float64
	// MakerFee 负数表示返佣
	MakerFee float64
	TakerFee float64
}

// DefaultConfig 返回默认参数：挂单返佣 0.5bp，吃单 7bp。
func DefaultConfig() Config {
	return Config{
		TickSize: 0.00001,
		LotSize:  0.001,
		MakerFee: -0.00005,
		TakerFee: 0.0007,
	}
}

// Replay 按时间顺序回放 CSV 行情的模拟器。
// 无排队、无延迟：挂单在对手价穿过或成交价触及时整单成交。
type Replay struct {
	cfg    Config
	book   *market.OrderBook
	orders *order.Book
	events *EventReader
	closer io.Closer

	clock   int64
	pending *Event
	done    bool
	closed  bool
}

// NewOpener 返回按文件路径打开 Replay 的 Opener。
func NewOpener(cfg Config) Opener {
	return func(path string) (Simulator, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open data file: %w", err)
		}
		r, err := NewReplay(f, cfg)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.closer = f
		return r, nil
	}
}

// NewReplay 从任意 reader 创建回放模拟器，时钟从第一条事件开始。
func NewReplay(r io.Reader, cfg Config) (*Replay, error) {
	if cfg.TickSize <= 0 {
		return nil, fmt.Errorf("tick size must be positive")
	}
	rp := &Replay{
		cfg:    cfg,
		book:   market.NewOrderBook(cfg.TickSize, cfg.LotSize),
		orders: order.NewBook(),
		events: NewEventReader(r, cfg.TickSize),
	}
	if err := rp.peek(); err != nil {
		return nil, err
	}
	if rp.pending != nil {
		rp.clock = rp.pending.Ts
	}
	return rp, nil
}

func (r *Replay) peek() error {
	ev, err := r.events.Next()
	if errors.Is(err, io.EOF) {
		r.pending = nil
		r.done = true
		return nil
	}
	if err != nil {
		return err
	}
	r.pending = &ev
	return nil
}

// Advance 应用 (clock, clock+ns] 内的全部事件，然后撮合挂单。
func (r *Replay) Advance(ns int64) (TickOutcome, error) {
	if r.closed {
		return EndOfData, ErrClosed
	}
	if r.done {
		return EndOfData, nil
	}
	target := r.clock + ns
	for r.pending != nil && r.pending.Ts <= target {
		r.apply(*r.pending)
		if err := r.peek(); err != nil {
			r.done = true
			return EndOfData, err
		}
	}
	r.clock = target
	r.matchResting()
	if r.done {
		return EndOfData, nil
	}
	return Data, nil
}

func (r *Replay) apply(ev Event) {
	switch ev.Kind {
	case DepthEvent:
		if ev.IsBid {
			r.book.SetBid(ev.Tick, ev.Qty)
		} else {
			r.book.SetAsk(ev.Tick, ev.Qty)
		}
	case TradeEvent:
		r.matchTrade(ev)
	}
}

// matchTrade 主动卖成交价不高于买挂单价时买单成交，反之亦然。
func (r *Replay) matchTrade(ev Event) {
	for _, o := range r.orders.Active() {
		if ev.IsBid && o.Side == order.Sell && ev.Tick >= o.PriceTick {
			r.fill(o, true, ev.Ts)
		} else if !ev.IsBid && o.Side == order.Buy && ev.Tick <= o.PriceTick {
			r.fill(o, true, ev.Ts)
		}
	}
}

func (r *Replay) matchResting() {
	if !market.Valid(r.book) {
		return
	}
	bestBid, bestAsk := r.book.BestBidTick(), r.book.BestAskTick()
	for _, o := range r.orders.Active() {
		if o.Side == order.Buy && bestAsk <= o.PriceTick {
			r.fill(o, true, r.clock)
		} else if o.Side == order.Sell && bestBid >= o.PriceTick {
			r.fill(o, true, r.clock)
		}
	}
}

func (r *Replay) fill(o order.Order, maker bool, ts int64) {
	o.Status = order.StatusFilled
	o.ExecPrice = o.Price
	o.Maker = maker
	rate := r.cfg.TakerFee
	if maker {
		rate = r.cfg.MakerFee
	}
	o.Fee = o.ExecPrice * o.Quantity * rate
	o.Timestamp = ts
	r.orders.Set(o)
}

func (r *Replay) SubmitBuy(id int64, price, qty float64, tif order.TimeInForce, kind order.Kind) error {
	return r.submit(id, order.Buy, price, qty, tif, kind)
}

func (r *Replay) SubmitSell(id int64, price, qty float64, tif order.TimeInForce, kind order.Kind) error {
	return r.submit(id, order.Sell, price, qty, tif, kind)
}

// submit 立即处理订单：
// GTX 会穿价则失效；GTC/IOC 穿价则按委托价吃单成交；IOC 未穿价失效；市价单按对手价成交。
func (r *Replay) submit(id int64, side order.Side, price, qty float64, tif order.TimeInForce, kind order.Kind) error {
	if r.closed {
		return ErrClosed
	}
	if qty <= 0 || (kind == order.Limit && price <= 0) {
		return fmt.Errorf("%w: id=%d price=%v qty=%v", ErrInvalidOrder, id, price, qty)
	}
	if prev, ok := r.orders.Get(id); ok && prev.Status == order.StatusActive {
		return fmt.Errorf("%w: id %d is still active", ErrInvalidOrder, id)
	}

	o := order.Order{
		ID:        id,
		Side:      side,
		Price:     price,
		PriceTick: market.PriceToTick(price, r.cfg.TickSize),
		Quantity:  qty,
		TIF:       tif,
		Kind:      kind,
		Status:    order.StatusActive,
		Timestamp: r.clock,
	}
	o.Price = float64(o.PriceTick) * r.cfg.TickSize

	valid := market.Valid(r.book)
	if kind == order.Market {
		if !valid {
			o.Status = order.StatusExpired
			r.orders.Set(o)
			return nil
		}
		if side == order.Buy {
			o.PriceTick = r.book.BestAskTick()
		} else {
			o.PriceTick = r.book.BestBidTick()
		}
		o.Price = float64(o.PriceTick) * r.cfg.TickSize
		r.fill(o, false, r.clock)
		return nil
	}

	crosses := valid && ((side == order.Buy && o.PriceTick >= r.book.BestAskTick()) ||
		(side == order.Sell && o.PriceTick <= r.book.BestBidTick()))
	switch {
	case crosses && tif == order.GTX:
		o.Status = order.StatusExpired
		r.orders.Set(o)
	case crosses:
		r.fill(o, false, r.clock)
	case tif == order.IOC:
		o.Status = order.StatusExpired
		r.orders.Set(o)
	default:
		r.orders.Set(o)
	}
	return nil
}

func (r *Replay) Cancel(id int64) error {
	o, ok := r.orders.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownOrder, id)
	}
	if o.Status == order.StatusActive {
		o.Status = order.StatusCanceled
		o.Timestamp = r.clock
		r.orders.Set(o)
	}
	return nil
}

func (r *Replay) Depth() market.Depth { return r.book }

func (r *Replay) Orders() map[int64]order.Order { return r.orders.Snapshot() }

func (r *Replay) ClearInactive() { r.orders.ClearInactive() }

func (r *Replay) CurrentTimestamp() int64 { return r.clock }

func (r *Replay) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
