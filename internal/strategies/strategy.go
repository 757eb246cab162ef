package strategies

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/betbot/godice/internal/domain"
)

var log = logrus.WithField("module", "strategies")

// 策略枚举（封闭集合，由配置选择，启动时一次性实例化）
const (
	IDNoOp                 = "noOp"
	IDLossRecovery         = "lossRecovery"
	IDStreakWeighted       = "streakWeighted"
	IDAutoTuningMartingale = "autoTuningMartingale"
)

// Strategy 投注策略能力接口
// 只负责仓位决策与自身账本，从不接触网络
type Strategy interface {
	// NextBet 根据预测信号计算下一注的 (投注额, 倍数, 概率, 押高)
	NextBet(prediction, confidence float64) (stake, multiplier, chance float64, isHigh bool)
	// OnWin / OnLose 接收结算结果并更新内部账本
	// 约定：WinAmount 恒为正的盈亏幅度，输赢由回调通道区分
	OnWin(result *domain.BetResult)
	OnLose(result *domain.BetResult)

	SetBalance(balance float64)
	Balance() float64
	Profit() float64
	WinTarget() float64
	// Reset 清空盈利与连胜/连败累计（资金处理由具体策略决定）
	Reset()
}

// Params 策略构造参数（显式记录，一次性给全，不做半成品 builder）
type Params struct {
	InitialBet float64 // 初始投注额
	MinBet     float64 // 币种最小投注额
	Balance    float64 // 初始资金
}

// Factory 策略构造函数
type Factory func(Params) Strategy

var (
	factories   = make(map[string]Factory)
	factoriesMu sync.RWMutex
)

// Register 注册策略类型，各策略在 init() 中调用
func Register(id string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, exists := factories[id]; exists {
		panic(fmt.Errorf("strategy %s already registered", id))
	}
	factories[id] = factory
}

// New 按配置枚举实例化策略
func New(id string, params Params) (Strategy, error) {
	factoriesMu.RLock()
	factory, ok := factories[id]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("未知策略: %q (可选: %v)", id, IDs())
	}
	log.Infof("实例化策略 %s (initialBet=%.8f minBet=%.8f balance=%.8f)",
		id, params.InitialBet, params.MinBet, params.Balance)
	return factory(params), nil
}

// IDs 返回所有已注册的策略标识（排序后）
func IDs() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	ids := make([]string, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Known 返回策略标识是否已注册
func Known(id string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	_, ok := factories[id]
	return ok
}

// 倍数的全局夹取边界（站点侧限制）
const (
	minMultiplier = 1.01
	maxMultiplier = 4750
)

// chanceFor 所有策略共用的概率公式：
// 预测值偏离中点 5000 越远，胜率越低、赔率越高
//
//	chance = (50 + house) * (1 - |prediction-5000|/5000)，夹取到 [minChance, maxChance]
//	multiplier = 100/chance，夹取到 [1.01, 4750]
//	isHigh = prediction > 5000
func chanceFor(prediction, housePercent, minChance, maxChance float64) (chance, multiplier float64, isHigh bool) {
	isHigh = prediction > 5000

	chance = (50 + housePercent) * (1 - math.Abs(prediction-5000)/5000)
	chance = clamp(chance, minChance, maxChance)

	// minChance > 0 保证这里不会除零
	multiplier = clamp(100/chance, minMultiplier, maxMultiplier)
	return chance, multiplier, isHigh
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
