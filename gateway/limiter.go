package gateway

import (
	"golang.org/x/time/rate"
)

// CommandLimiter 限制单个连接的指令频率，超出的指令直接拒绝
type CommandLimiter interface {
	Allow() bool
}

// NewCommandLimiter 每秒 perSecond 条、突发 burst 条；perSecond<=0 不限速
func NewCommandLimiter(perSecond float64, burst int) CommandLimiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
