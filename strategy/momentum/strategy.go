// Package momentum 动量趋势策略：累计收益越过阈值开仓，止损止盈或反向信号平仓。
package momentum

import (
	"go.uber.org/zap"

	"market-replay-go/infrastructure/logger"
	"market-replay-go/strategy"
)

type Strategy struct {
	cfg strategy.MomentumConfig
	ind *Indicator
	pos strategy.Position
	log *logger.Logger
}

var (
	_ strategy.Strategy       = (*Strategy)(nil)
	_ strategy.FileStarter    = (*Strategy)(nil)
	_ strategy.Intervaler     = (*Strategy)(nil)
	_ strategy.PositionCloser = (*Strategy)(nil)
)

func New(cfg strategy.MomentumConfig, log *logger.Logger) *Strategy {
	if log == nil {
		log = logger.Nop()
	}
	return &Strategy{
		cfg: cfg,
		ind: NewIndicator(cfg.LookbackPeriod, cfg.MomentumThreshold),
		log: log.Named("momentum"),
	}
}

func (s *Strategy) Name() string            { return strategy.KindMomentum.DisplayName() }
func (s *Strategy) InitialCapital() float64 { return s.cfg.InitialCapital }

// UpdateInterval 指标每次更新都要喂价
func (s *Strategy) UpdateInterval() uint64 { return 1 }

// Indicator 动量指标
func (s *Strategy) Indicator() *Indicator { return s.ind }

// Position 当前持仓
func (s *Strategy) Position() strategy.Position { return s.pos }

func (s *Strategy) OnFileStart(path string) {
	s.pos.Reset()
	s.log.Info("momentum file start", zap.String("file", path), zap.Int("warm_prices", s.ind.Len()))
}

func (s *Strategy) OnTick(ctx *strategy.TickContext, st *strategy.State) error {
	if !ctx.Valid() {
		return nil
	}
	mid := ctx.MidPrice()
	s.ind.Update(mid)

	var err error
	if s.cfg.EvalInterval <= 1 || st.UpdateCount%uint64(s.cfg.EvalInterval) == 0 {
		err = s.evaluate(ctx, st, mid)
	}
	s.pos.Mark(st, mid)
	return err
}

func (s *Strategy) evaluate(ctx *strategy.TickContext, st *strategy.State, mid float64) error {
	if !s.ind.IsReady() {
		return nil
	}
	if s.pos.ShouldExit(mid, s.cfg.StopLossPct, s.cfg.TakeProfitPct) {
		return s.close(ctx, st, "stop_or_target")
	}

	signal := s.ind.Signal()
	switch {
	case s.pos.IsFlat() && signal != strategy.Neutral:
		ok, err := s.pos.Open(ctx, st, signal, s.cfg.PositionSize)
		if err != nil {
			return err
		}
		if ok {
			m, _ := s.ind.Momentum()
			s.log.Info("position opened",
				zap.Stringer("side", signal),
				zap.Float64("entry", s.pos.Entry),
				zap.Float64("momentum", m))
		}
	case s.pos.Side == strategy.Long && signal == strategy.Short,
		s.pos.Side == strategy.Short && signal == strategy.Long:
		return s.close(ctx, st, "reverse_signal")
	}
	return nil
}

func (s *Strategy) close(ctx *strategy.TickContext, st *strategy.State, reason string) error {
	side := s.pos.Side
	net, ok, err := s.pos.Close(ctx, st)
	if err != nil {
		return err
	}
	if ok {
		s.log.Info("position closed",
			zap.String("reason", reason),
			zap.Stringer("side", side),
			zap.Float64("net_pnl", net))
	}
	return nil
}

// ClosePosition 停止或文件结束时平仓
func (s *Strategy) ClosePosition(ctx *strategy.TickContext, st *strategy.State) error {
	if s.pos.IsFlat() || !ctx.Valid() {
		return nil
	}
	return s.close(ctx, st, "shutdown")
}
