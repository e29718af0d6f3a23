package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

type stats struct {
	files    int
	stopped  int
	totalPnL float64
	trades   int
	winning  int
	orders   int
	fills    int
}

func (s *stats) add(evt map[string]interface{}) {
	s.files++
	if stopped, _ := evt["stopped"].(bool); stopped {
		s.stopped++
	}
	s.totalPnL += toFloat(evt["total_pnl"])
	trades := int(toFloat(evt["trades"]))
	s.trades += trades
	s.winning += int(toFloat(evt["win_rate"])/100*float64(trades) + 0.5)
	s.orders += int(toFloat(evt["orders"]))
	s.fills += int(toFloat(evt["fills"]))
}

func main() {
	logPath := flag.String("log", "logs/replay.log", "回放日志路径（json 格式）")
	strategyName := flag.String("strategy", "", "仅统计指定策略 (默认全量)")
	sinceStr := flag.String("since", "", "仅统计此时间之后的记录 (RFC3339)")
	flag.Parse()

	var since time.Time
	var err error
	if *sinceStr != "" {
		since, err = time.Parse(time.RFC3339Nano, *sinceStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "解析 since 参数失败: %v\n", err)
			os.Exit(1)
		}
	}

	f, err := os.Open(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法读取日志: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	byStrategy := make(map[string]*stats)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "{")
		if idx == -1 {
			continue
		}
		var evt map[string]interface{}
		if err := json.Unmarshal([]byte(line[idx:]), &evt); err != nil {
			continue
		}
		if msg, _ := evt["msg"].(string); msg != "strategy complete" {
			continue
		}
		name, _ := evt["strategy"].(string)
		// 预测策略名带准确率后缀，按基础名归类
		if i := strings.Index(name, " (Acc:"); i > 0 {
			name = name[:i]
		}
		if *strategyName != "" && name != *strategyName {
			continue
		}
		if !since.IsZero() {
			if tsStr, ok := evt["ts"].(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, tsStr); err == nil && ts.Before(since) {
					continue
				}
			}
		}
		st, ok := byStrategy[name]
		if !ok {
			st = &stats{}
			byStrategy[name] = st
		}
		st.add(evt)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "读取日志出错: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(byStrategy))
	for n := range byStrategy {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Printf("统计文件: %s\n", *logPath)
	if !since.IsZero() {
		fmt.Printf("起始时间: %s\n", since.Format(time.RFC3339))
	}
	for _, n := range names {
		st := byStrategy[n]
		fmt.Printf("\n[%s]\n", n)
		fmt.Printf("  数据文件: %d (被停止 %d)\n", st.files, st.stopped)
		fmt.Printf("  总盈亏: %.4f\n", st.totalPnL)
		fmt.Printf("  交易笔数: %d  胜率: %.1f%%\n", st.trades, pct(st.winning, st.trades))
		fmt.Printf("  订单: %d  成交: %d  成交率: %.1f%%\n", st.orders, st.fills, pct(st.fills, st.orders))
	}
}

func pct(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b) * 100
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	default:
		return 0
	}
}
