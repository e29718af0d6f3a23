package gateway

import (
	"sync"

	"go.uber.org/zap"

	"market-replay-go/infrastructure/logger"
)

const clientSendBuffer = 64

// client 一个观察端连接的发送队列
type client struct {
	id   string
	send chan []byte
}

// Hub 把消息广播给所有已连接的观察端。
// 发送队列满的客户端会丢掉这条消息，不会拖慢广播方。
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
	log     *logger.Logger
}

// NewHub 创建 Hub
func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log.Named("hub"),
	}
}

func (h *Hub) register(id string) *client {
	c := &client{id: id, send: make(chan []byte, clientSendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.send)
		return c
	}
	h.clients[c] = struct{}{}
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast 非阻塞地发给所有客户端，返回实际入队的数量
func (h *Hub) Broadcast(msg []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		select {
		case c.send <- msg:
			n++
		default:
			h.log.Debug("client queue full, message dropped", zap.String("client", c.id))
		}
	}
	return n
}

// sendTo 发给单个仍在线的客户端
func (h *Hub) sendTo(c *client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Len 当前连接数
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close 关闭所有客户端队列，之后注册的连接会立即结束
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
