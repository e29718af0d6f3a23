package config

import "strings"

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ValidateParams 额外验证日志和服务参数。
func ValidateParams(cfg AppConfig) error {
	if cfg.Log.Level != "" && !validLevels[strings.ToLower(cfg.Log.Level)] {
		return ErrInvalid("log.level must be one of debug/info/warn/error")
	}
	if cfg.Log.Format != "" && cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		return ErrInvalid("log.format must be json or console")
	}
	for _, out := range cfg.Log.Outputs {
		if out == "file" && cfg.Log.OutputFile == "" {
			return ErrInvalid("log.output_file is required when outputs include file")
		}
	}
	if cfg.Server.Addr == "" {
		return ErrInvalid("server.addr is required")
	}
	return nil
}

// ErrInvalid 用于参数验证错误。
type ErrInvalid string

func (e ErrInvalid) Error() string { return string(e) }
