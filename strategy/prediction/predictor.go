package prediction

import (
	"math"

	"market-replay-go/strategy"
)

// maxGradient 单步梯度裁剪，防止异常样本把权重打飞
const maxGradient = 10.0

// errorWindow 最近误差窗口
const errorWindow = 100

// Predictor 在线线性回归：特征按运行均值和标准差归一化后做 SGD。
// 预测目标是未来价格变化百分比。
type Predictor struct {
	threshold    float64
	learningRate float64

	weights []float64
	bias    float64

	n     int
	means []float64
	m2    []float64

	samples int
	total   int
	correct int
	errors  []float64
}

// NewPredictor 创建预测器，dim 为特征维度
func NewPredictor(dim int, threshold, learningRate float64) *Predictor {
	return &Predictor{
		threshold:    threshold,
		learningRate: learningRate,
		weights:      make([]float64, dim),
		means:        make([]float64, dim),
		m2:           make([]float64, dim),
		errors:       make([]float64, 0, errorWindow),
	}
}

// observe 用 Welford 方法更新均值和方差
func (p *Predictor) observe(x []float64) {
	p.n++
	n := float64(p.n)
	for i, v := range x {
		old := p.means[i]
		p.means[i] = old + (v-old)/n
		p.m2[i] += (v - old) * (v - p.means[i])
	}
}

func (p *Predictor) normalize(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		std := 1.0
		if p.n > 1 {
			if s := math.Sqrt(p.m2[i] / float64(p.n)); s > 1e-8 {
				std = s
			}
		}
		out[i] = (v - p.means[i]) / std
	}
	return out
}

func (p *Predictor) forward(z []float64) float64 {
	y := p.bias
	for i, v := range z {
		y += p.weights[i] * v
	}
	return y
}

// Predict 返回预测值和信号，并更新归一化统计。
func (p *Predictor) Predict(x []float64) (float64, strategy.Signal) {
	p.observe(x)
	y := p.forward(p.normalize(x))
	switch {
	case y > p.threshold:
		return y, strategy.Long
	case y < -p.threshold:
		return y, strategy.Short
	}
	return y, strategy.Neutral
}

// Train 用一个已实现的样本做一步 SGD，返回训练前的平方误差。
func (p *Predictor) Train(x []float64, target float64) float64 {
	z := p.normalize(x)
	diff := p.forward(z) - target
	g := math.Max(-maxGradient, math.Min(maxGradient, diff))
	for i, v := range z {
		p.weights[i] -= p.learningRate * g * v
	}
	p.bias -= p.learningRate * g
	p.samples++
	return diff * diff
}

// Record 记录一次预测验证：方向一致计为正确。
func (p *Predictor) Record(predicted, actual float64) {
	p.total++
	if (predicted > 0 && actual > 0) || (predicted < 0 && actual < 0) {
		p.correct++
	}
	if len(p.errors) >= errorWindow {
		p.errors = p.errors[1:]
	}
	p.errors = append(p.errors, math.Abs(predicted-actual))
}

// Accuracy 方向准确率 [0,1]
func (p *Predictor) Accuracy() float64 {
	if p.total == 0 {
		return 0
	}
	return float64(p.correct) / float64(p.total)
}

// MAE 最近误差的平均绝对值
func (p *Predictor) MAE() float64 {
	if len(p.errors) == 0 {
		return 0
	}
	var sum float64
	for _, e := range p.errors {
		sum += e
	}
	return sum / float64(len(p.errors))
}

// Samples 已训练样本数
func (p *Predictor) Samples() int { return p.samples }

// Validated 已验证的预测数
func (p *Predictor) Validated() int { return p.total }
