package order

// Side 订单方向
type Side int8

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Sign 返回方向符号：买 +1，卖 -1
func (s Side) Sign() float64 { return float64(s) }

// TimeInForce 订单有效方式
type TimeInForce int

const (
	GTC TimeInForce = iota
	// GTX post-only，若会立即成交则直接失效
	GTX
	IOC
)

func (t TimeInForce) String() string {
	switch t {
	case GTX:
		return "GTX"
	case IOC:
		return "IOC"
	default:
		return "GTC"
	}
}

// Kind 订单类型
type Kind int

const (
	Limit Kind = iota
	Market
)

// Status represents order lifecycle inside the simulator.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFilled   Status = "FILLED"
	StatusCanceled Status = "CANCELED"
	StatusExpired  Status = "EXPIRED"
)

// Terminal 订单已离开订单簿
func (s Status) Terminal() bool { return s != StatusActive }

// Order holds the simulator's view of one order.
type Order struct {
	ID        int64
	Side      Side
	Price     float64
	PriceTick int64
	Quantity  float64
	TIF       TimeInForce
	Kind      Kind
	Status    Status
	// ExecPrice 成交价，未成交为 0
	ExecPrice float64
	// Fee 正数为手续费，负数为返佣
	Fee       float64
	Maker     bool
	Timestamp int64
}
