package strategies

import (
	"math"
	"testing"

	"github.com/betbot/godice/internal/domain"
)

func winResult(stake, amount float64) *domain.BetResult {
	return &domain.BetResult{Outcome: domain.OutcomeWin, Stake: stake, WinAmount: amount}
}

func loseResult(stake, amount float64) *domain.BetResult {
	return &domain.BetResult{Outcome: domain.OutcomeLose, Stake: stake, WinAmount: amount}
}

func TestNoOpKeepsBaseStake(t *testing.T) {
	s := newNoOp(Params{InitialBet: 2e-8, MinBet: 1e-8, Balance: 1})

	stake1, _, _, _ := s.NextBet(5000, 50)
	s.OnLose(loseResult(stake1, stake1))
	stake2, _, _, _ := s.NextBet(5000, 50)
	s.OnWin(winResult(stake2, stake2))
	stake3, _, _, _ := s.NextBet(5000, 50)

	// 基线策略不加注：输赢都回到底注
	if stake1 != 2e-8 || stake2 != 2e-8 || stake3 != 2e-8 {
		t.Errorf("底注应保持 2e-8, 实际 %v %v %v", stake1, stake2, stake3)
	}
}

func TestNoOpLedger(t *testing.T) {
	s := newNoOp(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})
	s.OnWin(winResult(1e-8, 3e-8))
	s.OnLose(loseResult(1e-8, 1e-8))

	if got := s.Profit(); math.Abs(got-2e-8) > 1e-15 {
		t.Errorf("profit = %v, want 2e-8", got)
	}
	if got := s.Balance(); math.Abs(got-(1+2e-8)) > 1e-15 {
		t.Errorf("balance = %v, want 1+2e-8", got)
	}
	s.Reset()
	if s.Profit() != 0 {
		t.Error("Reset 后 profit 应清零")
	}
}

// 追损核心属性：下一注命中时恰好收复全部累计亏损
// （net loss 0.0008、倍数 m 时 stake = 0.0008/(m-1)）
func TestLossRecoveryCoversNetLoss(t *testing.T) {
	s := newLossRecovery(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})
	s.loss = 0.0008

	stake, multiplier, _, _ := s.NextBet(5000, 50)

	want := 0.0008 / (multiplier - 1)
	if math.Abs(stake-want) > 1e-12 {
		t.Errorf("stake = %v, want %v (multiplier=%v)", stake, want, multiplier)
	}
	if stake*(multiplier-1) < 0.0008-1e-12 {
		t.Errorf("命中收益 %v 不足以收复亏损 0.0008", stake*(multiplier-1))
	}
}

func TestLossRecoveryAccumulatesLoss(t *testing.T) {
	s := newLossRecovery(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})

	var totalLoss float64
	for i := 0; i < 5; i++ {
		stake, _, _, _ := s.NextBet(5000, 50)
		totalLoss += stake
		s.OnLose(loseResult(stake, stake))
	}
	if math.Abs(s.loss-totalLoss) > 1e-15 {
		t.Errorf("累计亏损 = %v, want %v", s.loss, totalLoss)
	}

	// 一次命中清空亏损，并把四分之一收益计入垫仓
	s.OnWin(winResult(1e-4, 4e-4))
	if s.loss != 0 {
		t.Errorf("赢后 loss = %v, want 0", s.loss)
	}
	if math.Abs(s.gain-1e-4) > 1e-15 {
		t.Errorf("赢后 gain = %v, want 1e-4", s.gain)
	}
}

func TestLossRecoveryLossRunWindow(t *testing.T) {
	s := newLossRecovery(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})

	// 连败长度 <=1 的赢周期不入窗口
	s.OnLose(loseResult(1e-8, 1e-8))
	s.OnWin(winResult(1e-8, 2e-8))
	if len(s.lossRuns) != 0 {
		t.Fatalf("单次连败不应入窗口, len=%d", len(s.lossRuns))
	}

	// 填满窗口后 FIFO 淘汰
	for i := 0; i < lossRunWindow+3; i++ {
		s.OnLose(loseResult(1e-8, 1e-8))
		s.OnLose(loseResult(1e-8, 1e-8))
		s.OnWin(winResult(1e-8, 2e-8))
	}
	if len(s.lossRuns) != lossRunWindow {
		t.Errorf("窗口长度 = %d, want %d", len(s.lossRuns), lossRunWindow)
	}

	// 窗口满后平均连败长度抬高底注
	if avg, ok := s.avgLossRun(); !ok || avg != 2 {
		t.Errorf("平均连败 = %v (%v), want 2", avg, ok)
	}
}

func TestStreakWeightedWarmupBet(t *testing.T) {
	s := newStreakWeighted(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})

	stake, multiplier, chance, isHigh := s.NextBet(0, 0)
	if stake != 1e-8 || multiplier != 2 || chance != 50 || isHigh {
		t.Errorf("试水注 = (%v, %v, %v, %v), want (1e-8, 2, 50, false)",
			stake, multiplier, chance, isHigh)
	}

	// 第二次调用走正常定价
	stake, _, _, _ = s.NextBet(6000, 50)
	if stake < 1e-8 || stake > s.bank {
		t.Errorf("stake %v 越过 [minBet, bank] 边界", stake)
	}
}

func TestStreakWeightedStreakDecay(t *testing.T) {
	s := newStreakWeighted(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})

	for i := 0; i < 3; i++ {
		s.OnWin(winResult(1e-8, 1e-8))
	}
	if s.winStreak != 3 || s.lossStreak != 0 {
		t.Fatalf("连胜/连败 = %d/%d, want 3/0", s.winStreak, s.lossStreak)
	}

	// 相反结果最多回退 1，永不变负
	s.OnLose(loseResult(1e-8, 1e-8))
	if s.winStreak != 2 || s.lossStreak != 1 {
		t.Errorf("连胜/连败 = %d/%d, want 2/1", s.winStreak, s.lossStreak)
	}
	for i := 0; i < 10; i++ {
		s.OnLose(loseResult(1e-8, 1e-8))
	}
	if s.winStreak != 0 {
		t.Errorf("连胜不应为负, winStreak=%d", s.winStreak)
	}
}

func TestStreakWeightedStakeScalesWithStreak(t *testing.T) {
	s := newStreakWeighted(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})
	s.NextBet(0, 0) // 消耗试水注

	base, _, _, _ := s.NextBet(6000, 50)
	for i := 0; i < 4; i++ {
		s.OnWin(winResult(base, base))
	}
	raised, _, _, _ := s.NextBet(6000, 50)
	if raised <= base {
		t.Errorf("连胜后 stake %v 应高于 %v", raised, base)
	}
}

func TestAutoTuneInitialRetune(t *testing.T) {
	s := newAutoTune(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})

	// 热身期间先喂一些结算，污染调谐状态
	s.OnLose(loseResult(1e-8, 1e-8))
	s.OnLose(loseResult(1e-8, 1e-8))
	if s.lossCount == 0 {
		t.Fatal("热身结算应累计连败")
	}

	// 第一个真实预测触发全量回调
	s.NextBet(6000, 50)
	if !s.initialized {
		t.Error("首个预测后应标记已初始化")
	}
	if s.lossCount != 0 || s.spent != 0 {
		t.Errorf("回调后 lossCount=%d spent=%v, want 0/0", s.lossCount, s.spent)
	}
}

func TestAutoTuneWinResetsLossCounters(t *testing.T) {
	s := newAutoTune(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})
	s.NextBet(6000, 50)

	for i := 0; i < 5; i++ {
		stake, _, _, _ := s.NextBet(6000, 50)
		s.OnLose(loseResult(stake, stake))
	}
	if s.lossCount != 5 {
		t.Fatalf("lossCount = %d, want 5", s.lossCount)
	}
	if s.spent <= 0 {
		t.Fatal("连败后 spent 应为正")
	}

	s.OnWin(winResult(s.nextBet, s.spent+1e-8))
	if s.lossCount != 0 || s.highLowLossCount != 0 {
		t.Errorf("赢后连败计数应清零: %d/%d", s.lossCount, s.highLowLossCount)
	}
	if s.spent != 0 {
		t.Errorf("赢后 spent = %v, want 0", s.spent)
	}
}

func TestAutoTuneWinMultCap(t *testing.T) {
	// 大资金下盈利倍数推导值远超上限，应封顶在 maxWinMult
	s := newAutoTune(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1000})
	s.NextBet(6000, 50)
	s.OnWin(winResult(1e-8, 1e-8))

	if s.winMult != s.maxWinMult {
		t.Errorf("winMult = %v, want 封顶 %v", s.winMult, s.maxWinMult)
	}
}

func TestAutoTuneChanceCeiling(t *testing.T) {
	s := newAutoTune(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})
	s.NextBet(6000, 50)

	// 连续在远离边缘的点数上获胜，窗口均值会被基准概率上限压住
	for i := 0; i < rollDistanceWindow*2; i++ {
		r := winResult(1e-8, 1e-8)
		r.Number = 4900 // 距边缘 49 个百分点
		s.OnWin(r)
	}
	if s.chance > s.oldBaseChance*s.chanceMax+1e-12 {
		t.Errorf("chance %v 超过上限 %v", s.chance, s.oldBaseChance*s.chanceMax)
	}
}

func TestAutoTuneStakeFloor(t *testing.T) {
	s := newAutoTune(Params{InitialBet: 0, MinBet: 1e-8, Balance: 1})
	stake, _, _, _ := s.NextBet(6000, 50)
	if stake < 1e-8 {
		t.Errorf("stake %v 低于绝对下限 1e-8", stake)
	}
}

// 贴边赢注（点数 <100）的归一化距离是 0，空窗口下均值落到 0：
// 工作概率必须压回下限，否则期望赢周期除零会把下一注污染成 NaN
func TestAutoTuneEdgeWinKeepsStakeFinite(t *testing.T) {
	s := newAutoTune(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})
	s.NextBet(7, 50)

	r := winResult(1e-8, 1e-8)
	r.Number = 7
	s.OnWin(r)

	if s.chance < s.minChance {
		t.Errorf("贴边赢后 chance = %v, 不应低于下限 %v", s.chance, s.minChance)
	}
	if math.IsNaN(s.nextBet) || math.IsInf(s.nextBet, 0) {
		t.Fatalf("贴边赢后 nextBet = %v, 应保持有限", s.nextBet)
	}

	stake, multiplier, chance, _ := s.NextBet(9477, 50)
	if math.IsNaN(stake) || math.IsInf(stake, 0) || stake <= 0 {
		t.Fatalf("stake = %v, 应为有限正数", stake)
	}
	if math.IsNaN(multiplier) || math.IsNaN(chance) {
		t.Errorf("multiplier/chance = %v/%v, 不应为 NaN", multiplier, chance)
	}
}

// 初始化回调不允许碰当轮方向：首个真实预测 >5000 也必须押高
func TestAutoTuneFirstPredictionDirection(t *testing.T) {
	s := newAutoTune(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})
	s.NextBet(0, 50)

	_, _, _, isHigh := s.NextBet(9477, 50)
	if !isHigh {
		t.Error("首个真实预测 9477 应押高")
	}

	s2 := newAutoTune(Params{InitialBet: 1e-8, MinBet: 1e-8, Balance: 1})
	_, _, _, isHigh2 := s2.NextBet(9477, 50)
	if !isHigh2 {
		t.Error("无热身直接给出 9477 也应押高")
	}
}
