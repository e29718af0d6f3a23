package order

import "sync"

// Book 记录模拟器内的订单和状态，按 id 查询。同一 id 再次提交会覆盖旧记录。
type Book struct {
	mu     sync.RWMutex
	orders map[int64]Order
}

func NewBook() *Book {
	return &Book{orders: make(map[int64]Order)}
}

func (b *Book) Set(o Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[o.ID] = o
}

func (b *Book) Get(id int64) (Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.orders[id]
	return o, ok
}

// Active 返回仍挂在簿上的订单（拷贝）。
func (b *Book) Active() []Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	res := make([]Order, 0, len(b.orders))
	for _, o := range b.orders {
		if o.Status == StatusActive {
			res = append(res, o)
		}
	}
	return res
}

// Snapshot 返回全部订单的拷贝。
func (b *Book) Snapshot() map[int64]Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	res := make(map[int64]Order, len(b.orders))
	for id, o := range b.orders {
		res[id] = o
	}
	return res
}

// ClearInactive 删除已成交、已撤销和已失效的订单。
func (b *Book) ClearInactive() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, o := range b.orders {
		if o.Status.Terminal() {
			delete(b.orders, id)
		}
	}
}
