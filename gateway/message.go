package gateway

import (
	"encoding/json"
	"fmt"

	"market-replay-go/internal/engine"
	"market-replay-go/telemetry"
)

// 推送给观察端的消息类型
const (
	TypePerformance = "performance"
	TypeResponse    = "response"
)

// Envelope 推送消息的统一包装：{"type":"performance","data":{...}}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EncodePerformance 包装一份遥测快照
func EncodePerformance(pd telemetry.PerformanceData) ([]byte, error) {
	data, err := json.Marshal(pd)
	if err != nil {
		return nil, fmt.Errorf("encode performance: %w", err)
	}
	return json.Marshal(Envelope{Type: TypePerformance, Data: data})
}

// EncodeResponse 包装一条指令回应
func EncodeResponse(r engine.Response) ([]byte, error) {
	data, err := engine.MarshalResponse(r)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return json.Marshal(Envelope{Type: TypeResponse, Data: data})
}
