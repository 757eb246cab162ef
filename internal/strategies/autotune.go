package strategies

import "github.com/betbot/godice/internal/domain"

func init() {
	Register(IDAutoTuningMartingale, func(p Params) Strategy { return newAutoTune(p) })
}

// rollDistanceWindow 赢注点数距离均值窗口容量
const rollDistanceWindow = 8

// AutoTune 自调谐 Martingale 策略，本仓库里最激进的一档：
//   - 赢注时用最近 8 次赢注点数到边缘的归一化距离均值回推目标概率，
//     上限为旧基准概率的 chanceMax 倍
//   - 连败长度超过庄家优势隐含的期望赢周期后，按 chanceInc 逐步抬高工作概率
//   - 每轮自调谐出"若按当前概率命中即可清空全部支出并带出资金比例利润"的下一注，
//     受最大单注与站点最大盈利双重封顶
type AutoTune struct {
	initialized bool

	baseChance    float64
	chanceInc     float64
	incDivisor    float64
	siteMaxProfit float64
	toggleHighLow bool
	betHigh       bool
	maxWinMult    float64
	housePercent  float64
	maxBet        float64
	minBet        float64
	baseBet       float64
	chanceMax     float64

	totalProfit float64
	winMult     float64
	tempWinMult float64

	startBalance float64
	bankroll     float64
	profit       float64
	winTarget    float64

	oldBaseChance    float64
	chance           float64
	minChance        float64
	maxChance        float64
	lossCount        uint64
	highLowLossCount uint64
	spent            float64
	nextBet          float64

	// 赢注点数到边缘的归一化距离环形窗口
	rollDistances [rollDistanceWindow]float64
	distanceIdx   int
}

func newAutoTune(p Params) *AutoTune {
	s := &AutoTune{
		baseChance:   1,
		chanceInc:    0.0001,
		incDivisor:   1e7,
		maxWinMult:   512,
		housePercent: 5,
		chanceMax:    1.5,
		winMult:      1,
		tempWinMult:  1,
		chance:       1,
		minChance:    0.02,
		maxChance:    5,
		minBet:       p.MinBet,
		baseBet:      p.InitialBet,
		nextBet:      p.InitialBet,
	}
	if s.baseBet <= 0 {
		s.baseBet = 1e-8
		s.nextBet = 1e-8
	}
	s.SetBalance(p.Balance)
	return s
}

func (s *AutoTune) NextBet(prediction, _ float64) (float64, float64, float64, bool) {
	// 第一个真实预测到来时做一次全量回调，丢掉热身期间累积的状态
	if prediction > 0 && !s.initialized {
		s.retune()
		s.initialized = true
	}

	// 方向必须在回调之后定：retune 会把 betHigh 清回默认值
	s.betHigh = prediction > 5000

	chance, multiplier, _ := chanceFor(prediction, s.housePercent, s.minChance, s.maxChance)
	s.chance = chance
	s.autoTune()

	if s.nextBet < 1e-8 {
		s.nextBet = 1e-8
	}

	return s.nextBet, multiplier, s.chance, s.betHigh
}

// expectedWinPeriod 当前概率下庄家优势隐含的期望赢周期长度
// 分母用概率下限兜底，工作概率永远不会把这里除成无穷
func (s *AutoTune) expectedWinPeriod() float64 {
	chance := s.chance
	if chance < s.minChance {
		chance = s.minChance
	}
	return (100 - 100*(s.housePercent/100)) / chance
}

// calcChance 根据最新结算调整工作概率
// 赢：把本轮点数到较近边缘的距离（百分比）压入窗口，用均值作为新目标概率；
// 输：连败超出期望赢周期后按步进抬高概率，缩短期望连败长度
func (s *AutoTune) calcChance(win bool, lastRolled uint32) {
	if s.oldBaseChance == 0 {
		s.oldBaseChance = s.baseChance
	}

	if win {
		rolled := lastRolled / 100
		target := rolled
		if rolled >= 50 {
			target = 100 - rolled
		}

		s.rollDistances[s.distanceIdx] = float64(target)
		s.distanceIdx++
		if s.distanceIdx >= rollDistanceWindow {
			s.distanceIdx = 0
		}

		var sum float64
		for _, d := range s.rollDistances {
			sum += d
		}
		s.chance = sum / rollDistanceWindow

		if s.chance > s.oldBaseChance*s.chanceMax {
			s.chance = s.oldBaseChance * s.chanceMax
		}
		// 贴边赢注（点数 <100 或 >9900）的归一化距离是 0，
		// 窗口均值可能落到 0，必须压回概率下限
		if s.chance < s.minChance {
			s.chance = s.minChance
		}
	} else if float64(s.lossCount) > s.expectedWinPeriod() {
		s.chance += s.chanceInc
	}
}

// autoTune 计算下一注：命中即覆盖全部未收回支出再带出 tempWinMult 倍的基准盈利
func (s *AutoTune) autoTune() {
	winAmount := s.expectedWinPeriod() * 1e-8

	tempCalc := 1 + (s.chance/100)*((100-s.housePercent)/((100-s.housePercent)/2))
	needed := winAmount*s.tempWinMult + s.nextBet*tempCalc + s.spent

	nextMult := needed / winAmount
	if nextMult < 1 {
		nextMult = 1
	}
	s.nextBet = s.baseBet * nextMult

	if s.siteMaxProfit != 0 && winAmount*s.nextBet-s.nextBet > s.siteMaxProfit {
		s.nextBet = s.siteMaxProfit / winAmount
	}
	if s.maxBet != 0 && s.nextBet > s.maxBet {
		s.nextBet = s.maxBet
	}
}

func (s *AutoTune) OnWin(result *domain.BetResult) {
	s.totalProfit += result.WinAmount
	s.chance = s.baseChance
	s.lossCount = 0
	s.highLowLossCount = 0
	s.spent -= result.WinAmount
	if s.spent < 0 {
		s.spent = 0
	}
	s.startBalance += result.WinAmount
	s.bankroll += result.WinAmount
	s.profit += result.WinAmount

	// 按资金规模推导下一个赢周期的盈利倍数
	tempMult := s.bankroll * 1e8 / s.incDivisor
	if tempMult < 1 {
		tempMult = 1
	}
	s.winMult = tempMult
	if s.maxWinMult != 0 && s.winMult > s.maxWinMult {
		s.winMult = s.maxWinMult
	}
	s.tempWinMult = s.winMult

	s.calcChance(true, result.Number)
	s.autoTune()
}

func (s *AutoTune) OnLose(result *domain.BetResult) {
	s.lossCount++
	s.highLowLossCount++
	s.spent += result.WinAmount
	s.bankroll -= result.WinAmount
	s.profit -= result.WinAmount

	winPeriod := s.expectedWinPeriod()
	if float64(s.highLowLossCount) >= winPeriod {
		if s.toggleHighLow {
			s.betHigh = !s.betHigh
		}
		// 极端连败时放弃盈利倍数，只求回本
		if float64(s.lossCount) >= winPeriod*25 && s.tempWinMult > 1 {
			s.tempWinMult = 1
		}
		s.highLowLossCount = 0
	}

	s.calcChance(false, result.Number)
	s.autoTune()
}

func (s *AutoTune) SetBalance(balance float64) {
	s.bankroll = balance
	s.startBalance = balance
	s.winTarget = balance
	s.profit = 0
}

func (s *AutoTune) Balance() float64   { return s.bankroll }
func (s *AutoTune) Profit() float64    { return s.profit }
func (s *AutoTune) WinTarget() float64 { return s.winTarget }

// Reset 回到初始调谐参数，保留资金账本
func (s *AutoTune) Reset() {
	s.retune()
}

func (s *AutoTune) retune() {
	s.baseChance = 1
	s.chanceInc = 0.0001
	s.incDivisor = 1e7
	s.siteMaxProfit = 0
	s.toggleHighLow = false
	s.betHigh = false
	s.maxWinMult = 512
	s.housePercent = 5
	s.maxBet = 0
	s.chanceMax = 1.5
	s.totalProfit = 0
	s.winMult = 1
	s.tempWinMult = 1
	s.oldBaseChance = 0
	s.lossCount = 0
	s.highLowLossCount = 0
	s.spent = 0
	s.chance = 1
	s.nextBet = s.baseBet
	s.rollDistances = [rollDistanceWindow]float64{}
	s.distanceIdx = 0
}
