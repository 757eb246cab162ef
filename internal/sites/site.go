package sites

import (
	"context"

	"github.com/betbot/godice/internal/domain"
)

// Site 站点会话能力接口：一个实例持有一条已认证连接、
// 有界的回合历史缓冲区和种子/nonce 生命周期
// 一次 PlaceBet 调用对应一次下注
type Site interface {
	// Login 建立默认协议头并同步余额基线
	Login(ctx context.Context) error
	// PlaceBet 按策略给出的参数提交一注，返回归一化结算结果
	// 命中限流/传输失败时返回 ErrEmptyReply，调用方把本轮当作空转
	PlaceBet(ctx context.Context, prediction, confidence float64) (*domain.BetResult, error)
	// OnWin / OnLose 结算回调：更新余额、收益与种子周期累计，
	// 并把正幅度的盈亏转发给策略自己的回调
	OnWin(result *domain.BetResult)
	OnLose(result *domain.BetResult)

	History() []domain.BetResult
	HistorySize() int
	Rolls() uint64
	CurrentBet() float64
	CurrentMultiplier() float64
	Balance() float64
	Profit() float64
}
