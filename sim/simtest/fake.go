// Package simtest 提供可编排的模拟器，供策略和执行器测试使用。
package simtest

import (
	"fmt"

	"market-replay-go/market"
	"market-replay-go/order"
	"market-replay-go/sim"
)

// Fake 由测试直接控制盘口和订单状态的模拟器。
// 每次 Advance 消耗一步，步数用完后返回 EndOfData。
type Fake struct {
	Book   *market.OrderBook
	Clock  int64
	Steps  int
	Closed bool

	// OnAdvance 在每步推进后调用，可用来改变盘口或制造成交
	OnAdvance func(f *Fake)
	// SubmitErr 非空时所有下单都返回该错误
	SubmitErr error
	// AdvanceErr 非空时下一次推进返回该错误
	AdvanceErr error

	Submitted []order.Order
	orders    *order.Book
}

var _ sim.Simulator = (*Fake)(nil)

// New 创建 steps 步数据的模拟器
func New(tick float64, steps int) *Fake {
	return &Fake{
		Book:   market.NewOrderBook(tick, 0.001),
		Steps:  steps,
		orders: order.NewBook(),
	}
}

// SetQuote 清空盘口并设置一档买卖
func (f *Fake) SetQuote(bid, bidQty, ask, askQty float64) {
	f.Book.Clear()
	tick := f.Book.TickSize()
	f.Book.SetBid(market.PriceToTick(bid, tick), bidQty)
	f.Book.SetAsk(market.PriceToTick(ask, tick), askQty)
}

func (f *Fake) Advance(ns int64) (sim.TickOutcome, error) {
	if f.AdvanceErr != nil {
		err := f.AdvanceErr
		f.AdvanceErr = nil
		return sim.EndOfData, err
	}
	if f.Steps <= 0 {
		return sim.EndOfData, nil
	}
	f.Steps--
	f.Clock += ns
	if f.OnAdvance != nil {
		f.OnAdvance(f)
	}
	if f.Steps == 0 {
		return sim.EndOfData, nil
	}
	return sim.Data, nil
}

func (f *Fake) Depth() market.Depth { return f.Book }

func (f *Fake) SubmitBuy(id int64, price, qty float64, tif order.TimeInForce, kind order.Kind) error {
	return f.submit(id, order.Buy, price, qty, tif, kind)
}

func (f *Fake) SubmitSell(id int64, price, qty float64, tif order.TimeInForce, kind order.Kind) error {
	return f.submit(id, order.Sell, price, qty, tif, kind)
}

func (f *Fake) submit(id int64, side order.Side, price, qty float64, tif order.TimeInForce, kind order.Kind) error {
	if f.SubmitErr != nil {
		return f.SubmitErr
	}
	if prev, ok := f.orders.Get(id); ok && prev.Status == order.StatusActive {
		return fmt.Errorf("%w: id %d is still active", sim.ErrInvalidOrder, id)
	}
	tick := f.Book.TickSize()
	o := order.Order{
		ID:        id,
		Side:      side,
		PriceTick: market.PriceToTick(price, tick),
		Quantity:  qty,
		TIF:       tif,
		Kind:      kind,
		Status:    order.StatusActive,
		Timestamp: f.Clock,
	}
	o.Price = float64(o.PriceTick) * tick
	crosses := market.Valid(f.Book) &&
		((side == order.Buy && o.PriceTick >= f.Book.BestAskTick()) ||
			(side == order.Sell && o.PriceTick <= f.Book.BestBidTick()))
	switch {
	case crosses && tif == order.GTX:
		o.Status = order.StatusExpired
	case crosses || kind == order.Market:
		o.Status = order.StatusFilled
		o.ExecPrice = o.Price
	}
	f.orders.Set(o)
	f.Submitted = append(f.Submitted, o)
	return nil
}

// Fill 将订单标记为按委托价成交
func (f *Fake) Fill(id int64) {
	f.SetStatus(id, order.StatusFilled)
}

// SetStatus 直接改写订单状态
func (f *Fake) SetStatus(id int64, st order.Status) {
	o, ok := f.orders.Get(id)
	if !ok {
		return
	}
	o.Status = st
	if st == order.StatusFilled {
		o.ExecPrice = o.Price
		o.Maker = true
	}
	f.orders.Set(o)
}

// Remove 删除订单记录，模拟订单从交易所消失
func (f *Fake) Remove(id int64) {
	f.SetStatus(id, order.StatusCanceled)
	f.orders.ClearInactive()
}

func (f *Fake) Cancel(id int64) error {
	o, ok := f.orders.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", sim.ErrUnknownOrder, id)
	}
	if o.Status == order.StatusActive {
		o.Status = order.StatusCanceled
		f.orders.Set(o)
	}
	return nil
}

func (f *Fake) Orders() map[int64]order.Order { return f.orders.Snapshot() }

func (f *Fake) ClearInactive() { f.orders.ClearInactive() }

func (f *Fake) CurrentTimestamp() int64 { return f.Clock }

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
