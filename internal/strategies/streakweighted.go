package strategies

import "github.com/betbot/godice/internal/domain"

func init() {
	Register(IDStreakWeighted, func(p Params) Strategy { return newStreakWeighted(p) })
}

// StreakWeighted 连胜/连败加权策略：
// 底注按资金比例缩放，乘以 1 + 0.05*|连胜-连败|，再加一个随连胜增长的小额项
// 连胜/连败计数在相反结果出现时最多回退 1，不会变负
type StreakWeighted struct {
	housePercent float64
	minChance    float64
	maxChance    float64

	minBet     float64
	currentBet float64
	bank       float64
	profit     float64
	winTarget  float64

	winStreak  uint32
	lossStreak uint32

	initialized bool
}

func newStreakWeighted(p Params) *StreakWeighted {
	s := &StreakWeighted{
		housePercent: 5,
		minChance:    0.02,
		maxChance:    50,
		minBet:       p.MinBet,
		currentBet:   p.InitialBet,
	}
	s.SetBalance(p.Balance)
	return s
}

func (s *StreakWeighted) NextBet(prediction, _ float64) (float64, float64, float64, bool) {
	chance, multiplier, isHigh := chanceFor(prediction, s.housePercent, s.minChance, s.maxChance)

	// 信号尚未就绪时保持中性试水注
	if !s.initialized && prediction == 0 {
		s.initialized = true
		return s.minBet, 2, 50, isHigh
	}

	streakGap := float64(s.winStreak) - float64(s.lossStreak)
	if streakGap < 0 {
		streakGap = -streakGap
	}
	betMultiplier := 1 + streakGap*0.05

	s.currentBet = s.minBet*(float64(s.winStreak)*0.5) + s.bank*1e-4*betMultiplier
	s.currentBet = clamp(s.currentBet, s.minBet, s.bank)

	return s.currentBet, multiplier, chance, isHigh
}

func (s *StreakWeighted) OnWin(result *domain.BetResult) {
	s.bank += result.WinAmount
	s.profit += result.WinAmount
	s.winStreak++
	if s.lossStreak > 0 {
		s.lossStreak--
	}
}

func (s *StreakWeighted) OnLose(result *domain.BetResult) {
	s.bank -= result.WinAmount
	s.profit -= result.WinAmount
	s.lossStreak++
	if s.winStreak > 0 {
		s.winStreak--
	}
}

func (s *StreakWeighted) SetBalance(balance float64) {
	s.bank = balance
	s.winTarget = balance
}

func (s *StreakWeighted) Balance() float64   { return s.bank }
func (s *StreakWeighted) Profit() float64    { return s.profit }
func (s *StreakWeighted) WinTarget() float64 { return s.winTarget }

func (s *StreakWeighted) Reset() {
	s.profit = 0
	s.winStreak = 0
	s.lossStreak = 0
}
