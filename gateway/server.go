package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"market-replay-go/infrastructure/logger"
	"market-replay-go/internal/engine"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
	shutdownWait   = 5 * time.Second
)

// Metrics 网关上报的指标，*monitor.Monitor 满足该接口
type Metrics interface {
	RecordWSConnection()
	RecordWSDisconnect()
	RecordCommand(kind string)
}

// Config 观察端服务配置
type Config struct {
	Addr         string  `yaml:"addr"`
	CommandRate  float64 `yaml:"command_rate"` // 每连接每秒指令数，0 不限
	CommandBurst int     `yaml:"command_burst"`
}

// DefaultConfig 默认监听 127.0.0.1:8765
func DefaultConfig() Config {
	return Config{Addr: "127.0.0.1:8765", CommandRate: 20, CommandBurst: 10}
}

// Server 对外提供 /ws（遥测推送和指令接收）、/metrics 和 /health
type Server struct {
	cfg      Config
	hub      *Hub
	commands chan<- engine.Command
	log      *logger.Logger

	metrics        Metrics
	metricsHandler http.Handler

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

// Option 服务可选项
type Option func(*Server)

// WithMetrics 记录连接和指令计数，并在 /metrics 暴露 handler
func WithMetrics(m Metrics, h http.Handler) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsHandler = h
	}
}

// NewServer 创建服务，收到的指令写入 commands
func NewServer(cfg Config, hub *Hub, commands chan<- engine.Command, log *logger.Logger, opts ...Option) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:      cfg,
		hub:      hub,
		commands: commands,
		log:      log.Named("gateway"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler 返回路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"status":"ok","clients":%d}`, s.hub.Len())
	})
	if s.metricsHandler != nil {
		mux.Handle("/metrics", s.metricsHandler)
	}
	return mux
}

// Run 监听直到 ctx 结束，然后关闭所有连接
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gateway listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gateway listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gateway shutdown: %w", err)
	}
	return nil
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	id := fmt.Sprintf("ws-%d", s.nextID.Add(1))
	c := s.hub.register(id)
	if s.metrics != nil {
		s.metrics.RecordWSConnection()
	}
	s.log.Info("observer connected", zap.String("client", id), zap.String("remote", r.RemoteAddr))

	go s.writePump(conn, c)
	s.readPump(conn, c)

	s.hub.unregister(c)
	_ = conn.Close()
	if s.metrics != nil {
		s.metrics.RecordWSDisconnect()
	}
	s.log.Info("observer disconnected", zap.String("client", id))
}

// readPump 读取指令并转发；非法或超频的指令回一条 ErrorResponse
func (s *Server) readPump(conn *websocket.Conn, c *client) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	limiter := NewCommandLimiter(s.cfg.CommandRate, s.cfg.CommandBurst)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read failed", zap.String("client", c.id), zap.Error(err))
			}
			return
		}
		if !limiter.Allow() {
			s.reply(c, engine.ErrorResponse{Message: "rate limited"})
			continue
		}
		cmd, err := engine.DecodeCommand(raw)
		if err != nil {
			s.reply(c, engine.ErrorResponse{Message: err.Error()})
			continue
		}
		select {
		case s.commands <- cmd:
			if s.metrics != nil {
				s.metrics.RecordCommand(cmd.CommandType())
			}
		default:
			s.reply(c, engine.ErrorResponse{Message: "command queue full"})
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply 只发给当前连接
func (s *Server) reply(c *client, r engine.Response) {
	msg, err := EncodeResponse(r)
	if err != nil {
		s.log.Warn("encode reply failed", zap.Error(err))
		return
	}
	s.hub.sendTo(c, msg)
}
