package strategies

import "github.com/betbot/godice/internal/domain"

func init() {
	Register(IDNoOp, func(p Params) Strategy { return newNoOp(p) })
}

// NoOp 固定底注的基线策略：不做任何自适应，输了回到底注
// 用来对照其余策略的表现
type NoOp struct {
	housePercent float64
	minChance    float64
	maxChance    float64

	baseBet    float64
	currentBet float64
	bank       float64
	profit     float64
	spent      float64
	winTarget  float64

	winStreak  uint32
	lossStreak uint32
}

func newNoOp(p Params) *NoOp {
	s := &NoOp{
		housePercent: 5,
		minChance:    0.02,
		maxChance:    50,
		baseBet:      p.InitialBet,
		currentBet:   p.InitialBet,
	}
	if s.baseBet < p.MinBet {
		s.baseBet = p.MinBet
		s.currentBet = p.MinBet
	}
	s.SetBalance(p.Balance)
	return s
}

func (s *NoOp) NextBet(prediction, _ float64) (float64, float64, float64, bool) {
	chance, multiplier, isHigh := chanceFor(prediction, s.housePercent, s.minChance, s.maxChance)
	if s.currentBet < 1e-8 {
		s.currentBet = 1e-8
	}
	return s.currentBet, multiplier, chance, isHigh
}

func (s *NoOp) OnWin(result *domain.BetResult) {
	s.spent -= result.WinAmount
	if s.spent < 0 {
		s.spent = 0
	}
	s.profit += result.WinAmount
	s.bank += result.WinAmount
	s.winStreak++
	s.lossStreak = 0
	s.currentBet = s.baseBet
}

func (s *NoOp) OnLose(result *domain.BetResult) {
	s.spent += result.WinAmount
	s.profit -= result.WinAmount
	s.bank -= result.WinAmount
	s.lossStreak++
	s.winStreak = 0
	s.currentBet = s.baseBet
}

func (s *NoOp) SetBalance(balance float64) {
	s.bank = balance
	s.profit = 0
	s.winTarget = balance
}

func (s *NoOp) Balance() float64   { return s.bank }
func (s *NoOp) Profit() float64    { return s.profit }
func (s *NoOp) WinTarget() float64 { return s.winTarget }

func (s *NoOp) Reset() {
	s.profit = 0
	s.spent = 0
	s.currentBet = s.baseBet
	s.winStreak = 0
	s.lossStreak = 0
}
