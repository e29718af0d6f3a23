package config

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"market-replay-go/infrastructure/logger"
	"market-replay-go/internal/engine"
)

// DefaultCooldown 两次重载之间的最小间隔，编辑器保存时常连续触发多个事件
const DefaultCooldown = 500 * time.Millisecond

// Reloader 监听配置文件，把可在运行中生效的变化转成操作员指令：
// replay.speed 变化发 SetSpeed，数据文件列表变化发 ChangeFiles。
// 其余字段（策略、服务地址等）需要重启才生效，只记录告警。
type Reloader struct {
	path     string
	cooldown time.Duration
	commands chan<- engine.Command
	log      *logger.Logger
	watcher  *fsnotify.Watcher

	mu         sync.Mutex
	current    AppConfig
	files      []string
	lastReload time.Time
}

// NewReloader 创建重载器，initial 为启动时已加载的配置
func NewReloader(path string, initial AppConfig, commands chan<- engine.Command, log *logger.Logger) (*Reloader, error) {
	if log == nil {
		log = logger.Nop()
	}
	files, err := initial.ResolveFiles()
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Reloader{
		path:     filepath.Clean(path),
		cooldown: DefaultCooldown,
		commands: commands,
		log:      log.Named("reloader"),
		watcher:  watcher,
		current:  initial,
		files:    files,
	}, nil
}

// SetCooldown 修改冷却时间，0 表示每个事件都重载
func (r *Reloader) SetCooldown(d time.Duration) {
	r.mu.Lock()
	r.cooldown = d
	r.mu.Unlock()
}

// Run 监听直到 ctx 结束。监听的是所在目录，编辑器用 rename 保存时也能收到事件。
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()
	if err := r.watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("failed to watch config file: %w", err)
	}
	r.log.Info("watching config", zap.String("path", r.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, err := r.Reload(); err != nil {
				r.log.Warn("config reload rejected", zap.Error(err))
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// Reload 重新读取配置并发出差异对应的指令，返回已发出的指令。
// 冷却期内的调用直接返回 nil。
func (r *Reloader) Reload() ([]engine.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cooldown > 0 && time.Since(r.lastReload) < r.cooldown {
		return nil, nil
	}
	next, err := LoadWithEnvOverrides(r.path)
	if err != nil {
		return nil, err
	}
	files, err := next.ResolveFiles()
	if err != nil {
		return nil, err
	}
	r.lastReload = time.Now()

	var cmds []engine.Command
	if next.Replay.Speed != r.current.Replay.Speed {
		cmds = append(cmds, engine.SetSpeed{Speed: next.Replay.Speed})
	}
	if !slices.Equal(files, r.files) {
		cmds = append(cmds, engine.ChangeFiles{Files: files})
	}
	if next.Strategy.Kind != r.current.Strategy.Kind || next.Server.Addr != r.current.Server.Addr {
		r.log.Warn("strategy or server change needs a restart",
			zap.String("strategy", next.Strategy.Kind),
			zap.String("addr", next.Server.Addr))
	}
	r.current, r.files = next, files

	sent := cmds[:0:0]
	for _, cmd := range cmds {
		select {
		case r.commands <- cmd:
			sent = append(sent, cmd)
			r.log.LogControl("config_"+cmd.CommandType(), nil)
		default:
			r.log.Warn("command queue full, reload command dropped", zap.String("type", cmd.CommandType()))
		}
	}
	return sent, nil
}

// Current 最近一次生效的配置
func (r *Reloader) Current() AppConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
