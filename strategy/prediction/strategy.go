// Package prediction 基于盘口特征的短周期价格预测策略。
// 每次有效更新都做一次 1 秒后的涨跌预测，到期后用实际价格验证并在线训练。
package prediction

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"market-replay-go/infrastructure/logger"
	"market-replay-go/market"
	"market-replay-go/strategy"
)

const (
	horizon      = time.Second
	maxHold      = 5 * time.Second
	maxPending   = 100
	featureDepth = 10
	historySize  = 100
)

// pending 尚未验证的预测
type pending struct {
	Mid             float64
	PredictedChange float64
	TsNs            int64
	features        []float64
}

type Strategy struct {
	cfg       strategy.PredictionConfig
	extractor *market.FeatureExtractor
	predictor *Predictor
	pos       strategy.Position
	queue     []pending
	log       *logger.Logger
}

var (
	_ strategy.Strategy       = (*Strategy)(nil)
	_ strategy.FileStarter    = (*Strategy)(nil)
	_ strategy.FileEnder      = (*Strategy)(nil)
	_ strategy.Intervaler     = (*Strategy)(nil)
	_ strategy.PositionCloser = (*Strategy)(nil)
)

func New(cfg strategy.PredictionConfig, log *logger.Logger) *Strategy {
	if log == nil {
		log = logger.Nop()
	}
	return &Strategy{
		cfg:       cfg,
		extractor: market.NewFeatureExtractor(featureDepth, historySize),
		predictor: NewPredictor(market.FeatureDim, cfg.ConfidenceThreshold, cfg.LearningRate),
		queue:     make([]pending, 0, maxPending),
		log:       log.Named("prediction"),
	}
}

// Name 带当前方向准确率
func (s *Strategy) Name() string {
	return fmt.Sprintf("%s (Acc: %.1f%%)", strategy.KindPrediction.DisplayName(), s.predictor.Accuracy()*100)
}

func (s *Strategy) InitialCapital() float64 { return s.cfg.InitialCapital }
func (s *Strategy) UpdateInterval() uint64  { return 1 }

func (s *Strategy) Predictor() *Predictor       { return s.predictor }
func (s *Strategy) Position() strategy.Position { return s.pos }
func (s *Strategy) PendingLen() int             { return len(s.queue) }

// WarmedUp 训练样本达到预热数量后才允许交易
func (s *Strategy) WarmedUp() bool { return s.predictor.Samples() >= s.cfg.WarmupSamples }

// OnFileStart 新文件的时间轴与上一个无关，未验证的预测丢弃
func (s *Strategy) OnFileStart(path string) {
	s.pos.Reset()
	s.queue = s.queue[:0]
	s.extractor.Reset()
	s.log.Info("prediction file start",
		zap.String("file", path),
		zap.Int("trained_samples", s.predictor.Samples()))
}

func (s *Strategy) OnFileEnd(st *strategy.State) {
	s.log.Info("prediction file end",
		zap.Float64("accuracy", s.predictor.Accuracy()),
		zap.Float64("mae", s.predictor.MAE()),
		zap.Int("validated", s.predictor.Validated()),
		zap.Int("trades", st.NumTrades))
}

func (s *Strategy) OnTick(ctx *strategy.TickContext, st *strategy.State) error {
	if !ctx.Valid() {
		return nil
	}
	mid := ctx.MidPrice()
	defer s.pos.Mark(st, mid)

	bids, asks := ctx.Levels(featureDepth)
	f, ok := s.extractor.Extract(bids, asks)
	if !ok || !s.extractor.IsReady() {
		return nil
	}
	now := ctx.Timestamp()
	s.validate(mid, now)

	x := f.Vector()
	predicted, signal := s.predictor.Predict(x)
	s.push(pending{Mid: mid, PredictedChange: predicted, TsNs: now, features: x})

	if !s.WarmedUp() {
		return nil
	}
	if s.cfg.EvalInterval > 1 && st.UpdateCount%uint64(s.cfg.EvalInterval) != 0 {
		return nil
	}
	return s.evaluate(ctx, st, mid, now, signal)
}

func (s *Strategy) push(p pending) {
	if len(s.queue) >= maxPending {
		s.queue = s.queue[1:]
	}
	s.queue = append(s.queue, p)
}

// validate 按先进先出验证所有到期的预测，每条只验证一次
func (s *Strategy) validate(mid float64, now int64) {
	for len(s.queue) > 0 {
		p := s.queue[0]
		if now-p.TsNs < int64(horizon) {
			return
		}
		actual := (mid - p.Mid) / p.Mid * 100
		s.predictor.Record(p.PredictedChange, actual)
		s.predictor.Train(p.features, actual)
		s.queue = s.queue[1:]
	}
}

func (s *Strategy) evaluate(ctx *strategy.TickContext, st *strategy.State, mid float64, now int64, signal strategy.Signal) error {
	if !s.pos.IsFlat() {
		if s.pos.ShouldExit(mid, s.cfg.StopLossPct, s.cfg.TakeProfitPct) {
			return s.close(ctx, st, "stop_or_target")
		}
		if now-s.pos.EntryTs > int64(maxHold) {
			return s.close(ctx, st, "max_hold")
		}
	}

	switch {
	case s.pos.IsFlat() && signal != strategy.Neutral:
		ok, err := s.pos.Open(ctx, st, signal, s.cfg.PositionSize)
		if err != nil {
			return err
		}
		if ok {
			s.log.Debug("position opened",
				zap.Stringer("side", signal),
				zap.Float64("entry", s.pos.Entry))
		}
	case s.pos.Side == strategy.Long && signal == strategy.Short,
		s.pos.Side == strategy.Short && signal == strategy.Long:
		return s.close(ctx, st, "reverse_signal")
	}
	return nil
}

func (s *Strategy) close(ctx *strategy.TickContext, st *strategy.State, reason string) error {
	net, ok, err := s.pos.Close(ctx, st)
	if err != nil {
		return err
	}
	if ok {
		s.log.Debug("position closed", zap.String("reason", reason), zap.Float64("net_pnl", net))
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
