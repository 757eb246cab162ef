package domain

// Outcome 单次下注的结算结果
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
)

// BetResult 一次已结算下注的归一化结果
// 由站点会话生成后不可再修改，供策略回调与历史缓冲区消费
type BetResult struct {
	Number           uint32  // 本轮掷出的点数 [0, 10000)
	IsHigh           bool    // 押高还是押低
	Outcome          Outcome // win / lose
	Chance           float64 // 中奖概率（百分比）
	Multiplier       float64 // 赔率倍数
	Stake            float64 // 本轮投注额
	WinAmount        float64 // 盈亏金额（带符号，输为负）
	HashPreviousRoll string  // 上一轮的服务端种子哈希
	HashNextRoll     string  // 下一轮的服务端种子哈希（承诺值）
	ClientSeed       string  // 当前种子周期的客户端种子
	Nonce            uint64  // 种子周期内单调递增的 nonce
}

// Win 返回本次下注是否获胜
func (r *BetResult) Win() bool {
	return r.Outcome == OutcomeWin
}

// Prediction 外部预测模型每轮提供的信号
// 模型内部实现不属于本系统，这里只消费 (预测值, 置信度) 二元组
type Prediction struct {
	Value      float64 // 对下一轮点数的估计 [0, 10000)
	Confidence float64 // 置信度（百分比）
}
