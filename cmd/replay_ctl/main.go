package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"market-replay-go/gateway"
	"market-replay-go/internal/engine"
	"market-replay-go/telemetry"
)

// 用法: replay_ctl -addr 127.0.0.1:8765 start|pause|stop|skip|reset|speed 5|files a.csv b.csv|watch
func main() {
	addr := flag.String("addr", "127.0.0.1:8765", "回放服务地址")
	wait := flag.Duration("wait", 2*time.Second, "等待回应的时间")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "需要指令: start|pause|stop|skip|reset|speed N|files F...|watch")
		os.Exit(2)
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("连接 %s 失败: %v", u.String(), err)
	}
	defer conn.Close()

	if args[0] == "watch" {
		watch(conn)
		return
	}

	cmd, err := parseCommand(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	raw, err := engine.EncodeCommand(cmd)
	if err != nil {
		log.Fatalf("编码指令失败: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		log.Fatalf("发送指令失败: %v", err)
	}

	// 回应是广播的，遥测消息跳过
	deadline := time.Now().Add(*wait)
	_ = conn.SetReadDeadline(deadline)
	for {
		env, err := read(conn)
		if err != nil {
			log.Fatalf("未收到回应: %v", err)
		}
		if env.Type == gateway.TypeResponse {
			fmt.Println(string(env.Data))
			return
		}
	}
}

func parseCommand(args []string) (engine.Command, error) {
	raw := map[string]interface{}{"type": args[0]}
	switch args[0] {
	case "speed":
		if len(args) != 2 {
			return nil, fmt.Errorf("speed 需要一个数值")
		}
		var v float64
		if _, err := fmt.Sscanf(args[1], "%g", &v); err != nil {
			return nil, fmt.Errorf("倍速非法: %w", err)
		}
		raw = map[string]interface{}{"type": "set_speed", "speed": v}
	case "files":
		raw = map[string]interface{}{"type": "change_files", "files": args[1:]}
	}
	b, _ := json.Marshal(raw)
	return engine.DecodeCommand(b)
}

func read(conn *websocket.Conn) (gateway.Envelope, error) {
	var env gateway.Envelope
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return env, err
	}
	err = json.Unmarshal(msg, &env)
	return env, err
}

// watch 持续打印遥测摘要和回应
func watch(conn *websocket.Conn) {
	for {
		env, err := read(conn)
		if err != nil {
			log.Printf("连接结束: %v", err)
			return
		}
		switch env.Type {
		case gateway.TypePerformance:
			var pd telemetry.PerformanceData
			if err := json.Unmarshal(env.Data, &pd); err != nil {
				continue
			}
			fmt.Printf("t=%8.1fs %-24s equity=%.2f pnl=%.4f pos=%.4f mid=%.5f trades=%d win=%.1f%%\n",
				pd.Timestamp, pd.StrategyName, pd.Equity, pd.TotalPnL(), pd.Position, pd.MidPrice, pd.NumTrades, pd.WinRate())
		case gateway.TypeResponse:
			fmt.Printf("response %s\n", env.Data)
		}
	}
}
