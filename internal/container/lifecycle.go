package container

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"market-replay-go/infrastructure/logger"
)

// Component 随容器一起运行的组件，Run 阻塞到 ctx 结束或出错
type Component interface {
	Name() string
	Run(ctx context.Context) error
}

// componentFunc 用函数实现 Component
type componentFunc struct {
	name string
	run  func(ctx context.Context) error
}

func (c componentFunc) Name() string                  { return c.name }
func (c componentFunc) Run(ctx context.Context) error { return c.run(ctx) }

// ErrCompleted 回放结束且配置为结束后退出
var ErrCompleted = errors.New("replay completed")

// LifecycleManager 生命周期管理器。任一组件返回错误时取消其余组件。
type LifecycleManager struct {
	components []Component
	log        *logger.Logger

	mu      sync.RWMutex
	running map[string]bool
	started bool
}

// NewLifecycleManager 创建新的生命周期管理器
func NewLifecycleManager(log *logger.Logger) *LifecycleManager {
	if log == nil {
		log = logger.Nop()
	}
	return &LifecycleManager{
		log:     log.Named("lifecycle"),
		running: make(map[string]bool),
	}
}

// Register 注册组件，必须在 RunAll 之前调用
func (m *LifecycleManager) Register(c Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, c)
}

// RunAll 并发运行所有组件直到 ctx 结束。ErrCompleted 视为正常退出。
func (m *LifecycleManager) RunAll(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("lifecycle already started")
	}
	m.started = true
	components := append([]Component(nil), m.components...)
	for _, c := range components {
		m.running[c.Name()] = true
	}
	m.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range components {
		c := c
		g.Go(func() error {
			m.log.Debug("component started", zap.String("component", c.Name()))
			err := c.Run(gctx)

			m.mu.Lock()
			m.running[c.Name()] = false
			m.mu.Unlock()

			if err != nil && !errors.Is(err, ErrCompleted) {
				m.log.LogError(err, map[string]interface{}{"component": c.Name()})
				return fmt.Errorf("%s: %w", c.Name(), err)
			}
			m.log.Debug("component stopped", zap.String("component", c.Name()))
			return err
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, ErrCompleted) {
		return err
	}
	return nil
}

// CheckHealth 运行期间有组件提前退出时返回错误
func (m *LifecycleManager) CheckHealth() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.started {
		return fmt.Errorf("not started")
	}
	for name, up := range m.running {
		if !up {
			return fmt.Errorf("component %s not running", name)
		}
	}
	return nil
}
