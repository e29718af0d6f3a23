package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"market-replay-go/internal/container"
	"market-replay-go/internal/engine"
)

func main() {
	cfgPath := flag.String("config", "configs/replay.yaml", "配置文件路径")
	speed := flag.Float64("speed", 0, "覆盖回放倍速（0 表示使用配置）")
	autostart := flag.Bool("autostart", false, "启动后立即开始回放")
	flag.Parse()

	c, err := container.New(*cfgPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if err := c.Build(); err != nil {
		log.Fatalf("构建组件失败: %v", err)
	}
	defer c.Stop()

	// 命令行参数排在配置之后，以最后一条为准
	if *speed > 0 {
		c.Commands() <- engine.SetSpeed{Speed: *speed}
	}
	if *autostart {
		c.Commands() <- engine.Start{}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()
	g.Go(func() error {
		// 回放结束（exit_on_complete）时也要结束心跳
		defer cancel()
		return c.Run(runCtx)
	})
	g.Go(func() error { return notifySystemd(runCtx, c) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		c.Logger().LogError(err, map[string]interface{}{"action": "run"})
		c.Stop()
		os.Exit(1)
	}
	c.Logger().Info("replay exited", zap.String("run_id", c.RunID()))
}

// notifySystemd 通知就绪，并在组件健康时按 WatchdogSec 的一半发送心跳。
// 不在 systemd 下运行时 SdNotify 直接返回 false。
func notifySystemd(ctx context.Context, c *container.Container) error {
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Printf("sd_notify ready failed: %v", err)
	} else if !ok {
		return nil
	}
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		<-ctx.Done()
		_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
		return nil
	}

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			return nil
		case <-ticker.C:
			if c.HealthCheck() == nil {
				_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}
	}
}
