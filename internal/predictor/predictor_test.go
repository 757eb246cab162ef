package predictor

import (
	"testing"

	"github.com/betbot/godice/internal/domain"
)

func TestHashWindowNeutralUntilFull(t *testing.T) {
	p := NewHashWindow(3)

	for i := 0; i < 2; i++ {
		if got := p.Predict(); got.Value != 0 || got.Confidence != 0 {
			t.Fatalf("窗口未满时应输出中性信号, 实际 %+v", got)
		}
		p.Observe(&domain.BetResult{HashNextRoll: "abc"})
	}

	p.Observe(&domain.BetResult{HashNextRoll: "abc"})
	got := p.Predict()
	if got.Value < 0 || got.Value >= 10000 {
		t.Errorf("预测值 %v 越界 [0, 10000)", got.Value)
	}
	if got.Confidence != 50 {
		t.Errorf("置信度 = %v, want 50", got.Confidence)
	}
}

func TestHashWindowDeterministic(t *testing.T) {
	a := NewHashWindow(1)
	b := NewHashWindow(1)
	result := &domain.BetResult{HashNextRoll: "9a271620ea8e52c7"}
	a.Observe(result)
	b.Observe(result)

	if a.Predict() != b.Predict() {
		t.Error("相同哈希应给出相同预测")
	}
	if a.Predict() != a.Predict() {
		t.Error("无新观测时预测应稳定")
	}
}

func TestHashWindowBounded(t *testing.T) {
	p := NewHashWindow(2)
	for i := 0; i < 10; i++ {
		p.Observe(&domain.BetResult{HashNextRoll: "x"})
	}
	if len(p.window) != 2 {
		t.Errorf("窗口长度 = %d, want 2", len(p.window))
	}
}

func TestHashWindowMinSize(t *testing.T) {
	p := NewHashWindow(0)
	if p.size != 1 {
		t.Errorf("非法容量应回退到 1, 实际 %d", p.size)
	}
}
