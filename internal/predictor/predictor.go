package predictor

import (
	"github.com/betbot/godice/internal/domain"
)

// Predictor 预测信号提供方
// 真正的模型是外部子系统（训练/推理不在本仓库内），
// 下注循环只消费 (预测值, 置信度) 并在每轮结算后回灌特征窗口
type Predictor interface {
	// Predict 给出对下一轮点数的估计
	Predict() domain.Prediction
	// Observe 把一条已结算结果并入特征窗口
	Observe(result *domain.BetResult)
}

// HashWindow 占位实现：在外部模型接入之前顶替其位置
// 历史窗口未满时保持中性信号（0 值 0 置信度，会话层会用校准注热身），
// 窗口满后从最近揭示的承诺哈希导出一个伪信号
type HashWindow struct {
	window []domain.BetResult
	size   int
}

// NewHashWindow 创建特征窗口占位预测器
func NewHashWindow(size int) *HashWindow {
	if size < 1 {
		size = 1
	}
	return &HashWindow{size: size}
}

func (p *HashWindow) Observe(result *domain.BetResult) {
	p.window = append(p.window, *result)
	if len(p.window) > p.size {
		p.window = p.window[1:]
	}
}

func (p *HashWindow) Predict() domain.Prediction {
	if len(p.window) < p.size {
		return domain.Prediction{}
	}

	last := p.window[len(p.window)-1]
	var acc uint32
	for _, c := range last.HashNextRoll {
		acc = acc*31 + uint32(c)
	}
	return domain.Prediction{
		Value:      float64(acc % 10000),
		Confidence: 50,
	}
}
