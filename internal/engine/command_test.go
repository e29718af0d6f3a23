package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr bool
	}{
		{"启动", `{"type":"start"}`, Start{}, false},
		{"暂停", `{"type":"pause"}`, Pause{}, false},
		{"停止", `{"type":"stop"}`, Stop{}, false},
		{"跳过", `{"type":"skip"}`, Skip{}, false},
		{"重置", `{"type":"reset"}`, Reset{}, false},
		{"设置倍速", `{"type":"set_speed","speed":2.5}`, SetSpeed{Speed: 2.5}, false},
		{"切换文件", `{"type":"change_files","files":["a.csv"]}`, ChangeFiles{Files: []string{"a.csv"}}, false},
		{"倍速缺失", `{"type":"set_speed"}`, nil, true},
		{"文件为空", `{"type":"change_files","files":[]}`, nil, true},
		{"未知类型", `{"type":"fly"}`, nil, true},
		{"缺少类型", `{}`, nil, true},
		{"非法JSON", `{`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeCommand(t *testing.T) {
	data, err := EncodeCommand(SetSpeed{Speed: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"set_speed","speed":3}`, string(data))

	back, err := DecodeCommand(data)
	require.NoError(t, err)
	assert.Equal(t, SetSpeed{Speed: 3}, back)
}

func TestMarshalResponse(t *testing.T) {
	data, err := MarshalResponse(StateChanged{State: StateRunning})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"state_changed","state":"RUNNING"}`, string(data))

	data, err = MarshalResponse(ErrorResponse{Message: "bad"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","message":"bad"}`, string(data))

	data, err = MarshalResponse(Completed{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"completed"}`, string(data))
}

func TestControlStateText(t *testing.T) {
	var s ControlState
	require.NoError(t, json.Unmarshal([]byte(`"stopped"`), &s))
	assert.Equal(t, StateStopped, s)
	assert.Error(t, s.UnmarshalText([]byte("gone")))
	assert.Equal(t, "UNKNOWN", ControlState(42).String())
}
