package engine

import (
	"encoding/json"
	"fmt"
)

// Command 操作员指令，变体固定为本包中的类型
type Command interface {
	CommandType() string
	isCommand()
}

type (
	Start       struct{}
	Pause       struct{}
	Stop        struct{}
	Skip        struct{}
	Reset       struct{}
	SetSpeed    struct{ Speed float64 }
	ChangeFiles struct{ Files []string }
)

func (Start) CommandType() string       { return "start" }
func (Pause) CommandType() string       { return "pause" }
func (Stop) CommandType() string        { return "stop" }
func (Skip) CommandType() string        { return "skip" }
func (Reset) CommandType() string       { return "reset" }
func (SetSpeed) CommandType() string    { return "set_speed" }
func (ChangeFiles) CommandType() string { return "change_files" }

func (Start) isCommand()       {}
func (Pause) isCommand()       {}
func (Stop) isCommand()        {}
func (Skip) isCommand()        {}
func (Reset) isCommand()       {}
func (SetSpeed) isCommand()    {}
func (ChangeFiles) isCommand() {}

// commandWire 指令的 JSON 形式
type commandWire struct {
	Type  string   `json:"type"`
	Speed *float64 `json:"speed,omitempty"`
	Files []string `json:"files,omitempty"`
}

// DecodeCommand 解析 {"type":"set_speed","speed":2} 这样的指令
func DecodeCommand(data []byte) (Command, error) {
	var w commandWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	switch w.Type {
	case "start":
		return Start{}, nil
	case "pause":
		return Pause{}, nil
	case "stop":
		return Stop{}, nil
	case "skip":
		return Skip{}, nil
	case "reset":
		return Reset{}, nil
	case "set_speed":
		if w.Speed == nil {
			return nil, fmt.Errorf("set_speed requires speed")
		}
		return SetSpeed{Speed: *w.Speed}, nil
	case "change_files":
		if len(w.Files) == 0 {
			return nil, fmt.Errorf("change_files requires files")
		}
		return ChangeFiles{Files: w.Files}, nil
	case "":
		return nil, fmt.Errorf("command type missing")
	default:
		return nil, fmt.Errorf("unknown command type %q", w.Type)
	}
}

// EncodeCommand 指令转 JSON
func EncodeCommand(c Command) ([]byte, error) {
	w := commandWire{Type: c.CommandType()}
	switch v := c.(type) {
	case SetSpeed:
		w.Speed = &v.Speed
	case ChangeFiles:
		w.Files = v.Files
	}
	return json.Marshal(w)
}

// Response 对指令的回应，变体固定
type Response interface {
	ResponseType() string
	isResponse()
}

type (
	StateChanged  struct{ State ControlState }
	SpeedChanged  struct{ Speed float64 }
	FilesChanged  struct{ Files []string }
	Skipped       struct{}
	ErrorResponse struct{ Message string }
	Completed     struct{}
)

func (StateChanged) ResponseType() string  { return "state_changed" }
func (SpeedChanged) ResponseType() string  { return "speed_changed" }
func (FilesChanged) ResponseType() string  { return "files_changed" }
func (Skipped) ResponseType() string       { return "skipped" }
func (ErrorResponse) ResponseType() string { return "error" }
func (Completed) ResponseType() string     { return "completed" }

func (StateChanged) isResponse()  {}
func (SpeedChanged) isResponse()  {}
func (FilesChanged) isResponse()  {}
func (Skipped) isResponse()       {}
func (ErrorResponse) isResponse() {}
func (Completed) isResponse()     {}

type responseWire struct {
	Type    string        `json:"type"`
	State   *ControlState `json:"state,omitempty"`
	Speed   *float64      `json:"speed,omitempty"`
	Files   []string      `json:"files,omitempty"`
	Message string        `json:"message,omitempty"`
}

// MarshalResponse 回应转 JSON
func MarshalResponse(r Response) ([]byte, error) {
	w := responseWire{Type: r.ResponseType()}
	switch v := r.(type) {
	case StateChanged:
		w.State = &v.State
	case SpeedChanged:
		w.Speed = &v.Speed
	case FilesChanged:
		w.Files = v.Files
	case ErrorResponse:
		w.Message = v.Message
	}
	return json.Marshal(w)
}
