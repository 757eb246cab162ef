package strategies

import "github.com/betbot/godice/internal/domain"

func init() {
	Register(IDLossRecovery, func(p Params) Strategy { return newLossRecovery(p) })
}

// lossRunWindow 连败长度滚动窗口容量（最近 10 个完整的赢周期）
const lossRunWindow = 10

// LossRecovery 追损策略：把累计净亏损摊进下一注，
// 一次命中即可收复全部亏损；窗口内的平均连败长度会额外抬高底注
type LossRecovery struct {
	housePercent float64
	minChance    float64
	maxChance    float64

	minBet     float64
	initialBet float64
	currentBet float64

	bank      float64
	profit    float64
	winTarget float64
	loss      float64 // 待收复的累计净亏损
	gain      float64 // 赢后累积的正向垫仓

	winStreak  uint32
	lossStreak uint32
	// 最近若干个赢周期的连败长度，FIFO 淘汰
	lossRuns []uint32
}

func newLossRecovery(p Params) *LossRecovery {
	s := &LossRecovery{
		housePercent: 1,
		minChance:    0.04,
		maxChance:    70,
		minBet:       p.MinBet,
		initialBet:   p.InitialBet,
		currentBet:   p.InitialBet,
	}
	s.SetBalance(p.Balance)
	return s
}

func (s *LossRecovery) NextBet(prediction, _ float64) (float64, float64, float64, bool) {
	chance, multiplier, isHigh := chanceFor(prediction, s.housePercent, s.minChance, s.maxChance)

	// multiplier >= 1.01，分母不会为 0
	recovery := s.loss
	if s.gain > recovery {
		recovery = s.gain
	}
	s.currentBet = recovery / (multiplier - 1)

	if avg, ok := s.avgLossRun(); ok {
		s.currentBet += s.minBet * avg
	}
	if s.currentBet < s.minBet {
		s.currentBet = s.minBet
	}

	return s.currentBet, multiplier, chance, isHigh
}

// avgLossRun 返回窗口内的平均连败长度；窗口未满时不参与加注
func (s *LossRecovery) avgLossRun() (float64, bool) {
	if len(s.lossRuns) < lossRunWindow {
		return 0, false
	}
	var sum uint32
	for _, run := range s.lossRuns {
		sum += run
	}
	return float64(sum) / float64(len(s.lossRuns)), true
}

func (s *LossRecovery) OnWin(result *domain.BetResult) {
	s.loss = 0
	s.gain += result.WinAmount * 0.25
	s.profit += result.WinAmount
	s.bank += result.WinAmount

	if s.lossStreak > 1 {
		s.lossRuns = append(s.lossRuns, s.lossStreak)
		if len(s.lossRuns) > lossRunWindow {
			s.lossRuns = s.lossRuns[1:]
		}
	}
	s.winStreak++
	s.lossStreak = 0
}

func (s *LossRecovery) OnLose(result *domain.BetResult) {
	s.profit -= result.WinAmount
	s.bank -= result.WinAmount
	s.gain -= result.WinAmount
	if s.gain < 0 {
		s.gain = 0
	}
	s.loss += s.currentBet
	s.lossStreak++
	s.winStreak = 0
}

func (s *LossRecovery) SetBalance(balance float64) {
	s.bank = balance
	s.winTarget = balance
}

func (s *LossRecovery) Balance() float64   { return s.bank }
func (s *LossRecovery) Profit() float64    { return s.profit }
func (s *LossRecovery) WinTarget() float64 { return s.winTarget }

func (s *LossRecovery) Reset() {
	s.profit = 0
	s.gain = 0
	s.loss = 0
	s.winStreak = 0
	s.lossStreak = 0
}
