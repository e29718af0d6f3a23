package sim

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// EventKind 行情事件类型
type EventKind int

const (
	DepthEvent EventKind = iota
	TradeEvent
)

// Event 一行回放数据：ts_ns,kind,side,price,qty
//
//	depth 行的 side 为 bid/ask，qty 为该档绝对数量，0 表示删除；
//	trade 行的 side 为主动方 buy/sell。
type Event struct {
	Ts    int64
	Kind  EventKind
	IsBid bool // depth: bid 侧；trade: 主动买
	Tick  int64
	Qty   float64
}

// EventReader 按行流式读取 CSV，价格用十进制精确换算到 tick。
type EventReader struct {
	r    *csv.Reader
	tick decimal.Decimal
	line int
}

// NewEventReader 创建读取器；首行若不是数字时间戳则视为表头跳过。
func NewEventReader(r io.Reader, tickSize float64) *EventReader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &EventReader{r: cr, tick: decimal.NewFromFloat(tickSize)}
}

// Next 返回下一条事件；数据耗尽时返回 io.EOF。
func (er *EventReader) Next() (Event, error) {
	for {
		rec, err := er.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Event{}, io.EOF
			}
			return Event{}, fmt.Errorf("read event: %w", err)
		}
		er.line++
		ev, err := er.parse(rec)
		if err != nil {
			if er.line == 1 {
				continue // header
			}
			return Event{}, fmt.Errorf("line %d: %w", er.line, err)
		}
		return ev, nil
	}
}

func (er *EventReader) parse(rec []string) (Event, error) {
	ts, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("parse ts %q: %w", rec[0], err)
	}

	var ev Event
	ev.Ts = ts
	switch strings.ToLower(rec[1]) {
	case "depth":
		ev.Kind = DepthEvent
		switch strings.ToLower(rec[2]) {
		case "bid":
			ev.IsBid = true
		case "ask":
		default:
			return Event{}, fmt.Errorf("unknown depth side %q", rec[2])
		}
	case "trade":
		ev.Kind = TradeEvent
		switch strings.ToLower(rec[2]) {
		case "buy":
			ev.IsBid = true
		case "sell":
		default:
			return Event{}, fmt.Errorf("unknown trade side %q", rec[2])
		}
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", rec[1])
	}

	price, err := decimal.NewFromString(rec[3])
	if err != nil {
		return Event{}, fmt.Errorf("parse price %q: %w", rec[3], err)
	}
	ev.Tick = price.Div(er.tick).Round(0).IntPart()

	qty, err := decimal.NewFromString(rec[4])
	if err != nil {
		return Event{}, fmt.Errorf("parse qty %q: %w", rec[4], err)
	}
	ev.Qty = qty.InexactFloat64()
	return ev, nil
}
