package duckdice

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/godice/internal/domain"
	"github.com/betbot/godice/internal/fairness"
	"github.com/betbot/godice/internal/sites"
	"github.com/betbot/godice/internal/strategies"
)

const (
	// siteMinChance 站点允许的最低中奖概率（百分比）
	siteMinChance = 2.0
	// winTargetMultiple 余额涨到初始余额的该倍数时视为达成盈利目标
	winTargetMultiple = 10.0
	// clientSeedLength 客户端种子长度
	clientSeedLength = 30
)

// Options 会话配置（从已校验的配置记录一次性构造，没有半成品状态）
type Options struct {
	Currency        domain.Currency
	Faucet          bool    // 用水龙头资金池而不是主账户
	UseSiteBalance  bool    // 以站点余额为基线；关闭时用 OfflineBalance
	OfflineBalance  float64 // 离线基线余额
	BalanceModifier float64 // 余额折算系数，只拿部分资金来跑
	FakeBetting     bool    // 不触网，走公平性模拟器
	HistorySize     int     // 历史缓冲区容量，同时是预测热身长度
	MaxNonce        uint64  // nonce 达到该值后轮换客户端种子
	TLEHash         string  // 限时活动哈希（只在非水龙头模式下发送）
}

// Session DuckDice 会话：一条已认证连接 + 一个策略 + 种子/nonce 生命周期
// 状态只由本实例的方法改动，由顺序化的下注循环独占驱动
type Session struct {
	client   *Client
	strategy strategies.Strategy
	sim      *fairness.Simulator
	opts     Options
	log      *logrus.Entry

	rolls      uint64
	history    []domain.BetResult
	currentBet float64
	chance     float64

	balance        float64
	offlineBalance float64
	initialBalance float64
	siteBalance    float64
	profit         float64
	seedProfit     float64

	previousHash    string
	clientSeed      string
	initializedHash bool

	wins   uint32
	losses uint32

	// 测试里替换掉真实睡眠
	sleep func(ctx context.Context, d time.Duration)
}

var _ sites.Site = (*Session)(nil)

// NewSession 构造会话；sim 只在 FakeBetting 模式下被使用，可以为 nil
func NewSession(client *Client, strategy strategies.Strategy, sim *fairness.Simulator, opts Options) *Session {
	if opts.HistorySize < 0 {
		opts.HistorySize = 0
	}
	s := &Session{
		client:         client,
		strategy:       strategy,
		sim:            sim,
		opts:           opts,
		offlineBalance: opts.OfflineBalance,
		clientSeed:     randomSeed(clientSeedLength),
		log: logrus.WithFields(logrus.Fields{
			"module":  "duckdice",
			"session": uuid.NewString()[:8],
		}),
		sleep: func(ctx context.Context, d time.Duration) {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		},
	}
	return s
}

// Login 同步余额基线，确定本周期的起始资金
func (s *Session) Login(ctx context.Context) error {
	if s.opts.UseSiteBalance {
		if err := s.refreshSiteBalance(ctx); err != nil {
			return errors.Wrap(err, "同步站点余额失败")
		}
	} else {
		s.siteBalance = s.offlineBalance
		s.rebaseline(s.offlineBalance * s.opts.BalanceModifier)
	}
	s.log.Infof("登录完成 currency=%s balance=%.8f faucet=%v fake=%v",
		s.opts.Currency, s.balance, s.opts.Faucet, s.opts.FakeBetting)
	return nil
}

// refreshSiteBalance 从站点拉取当前币种/资金池余额并重置全部基线
func (s *Session) refreshSiteBalance(ctx context.Context) error {
	info, err := s.client.UserInfo(ctx)
	if err != nil {
		return err
	}
	val, ok := info.balanceFor(s.opts.Currency.String(), s.opts.Faucet)
	if !ok {
		return errors.Errorf("站点未返回 %s 的余额", s.opts.Currency)
	}
	s.siteBalance = val
	s.rebaseline(val * s.opts.BalanceModifier)
	return nil
}

// rebaseline 把本地余额、初始余额和策略资金统一重置到新基线
func (s *Session) rebaseline(base float64) {
	s.balance = base
	s.initialBalance = base
	s.strategy.SetBalance(base)
}

// baseline 当前应回退到的基线余额
func (s *Session) baseline() float64 {
	if s.opts.UseSiteBalance {
		return s.siteBalance * s.opts.BalanceModifier
	}
	return s.offlineBalance * s.opts.BalanceModifier
}

func (s *Session) minBet() float64 {
	return s.opts.Currency.MinBet()
}

// rotateSeed 轮换客户端种子，开启新的公平性周期；retry-after 按秒等待
// 本地状态只在站点接受新种子后才切换，失败时沿用旧种子下一轮重试
func (s *Session) rotateSeed(ctx context.Context) {
	seed := randomSeed(clientSeedLength)
	retryAfter, err := s.client.Randomize(ctx, seed)
	if err != nil {
		s.log.Warnf("轮换种子失败（下一轮重试）: %v", err)
		return
	}
	if retryAfter > 0 {
		s.sleep(ctx, retryAfter)
	}
	s.clientSeed = seed
	s.initializedHash = false
}

// resetEpoch 资金耗尽恢复路径：回到基线余额、清零周期计数并轮换种子
// 种子轮换与资金重置绑定在一起：客户端种子一换，可审计的公平性周期
// 正好随资金一起重新开始
func (s *Session) resetEpoch(ctx context.Context) {
	s.log.Warnf("[FAIL] Resetting %.8f", s.siteBalance)
	s.wins = 0
	s.losses = 0
	s.seedProfit = 0

	if s.opts.FakeBetting || !s.opts.UseSiteBalance {
		if s.sim != nil {
			s.sim.ResetSeed()
		}
		s.clientSeed = randomSeed(clientSeedLength)
		s.initializedHash = false
	} else {
		s.rotateSeed(ctx)
		if err := s.refreshSiteBalance(ctx); err != nil {
			s.log.Warnf("重置后同步余额失败，沿用旧基线: %v", err)
		}
	}

	s.rebaseline(s.baseline())
	s.strategy.Reset()
}

// preBetGuards 下注前的守卫，顺序固定：
// 先判盈利目标、再判资金耗尽，都在策略定价之前执行，
// 保证策略不会基于一个马上要作废的余额基线算注
func (s *Session) preBetGuards(ctx context.Context) {
	if s.initialBalance > 0 && s.balance >= s.initialBalance*winTargetMultiple {
		s.log.Infof("[WIN] Resetting %.8f", s.siteBalance)
		s.rebaseline(s.baseline())
		s.strategy.Reset()

		if s.profit > 0 {
			if s.opts.UseSiteBalance && !s.opts.FakeBetting {
				if err := s.refreshSiteBalance(ctx); err != nil {
					s.log.Warnf("盈利结算后同步余额失败: %v", err)
				}
			}
			s.strategy.Reset()
			s.profit = 0
		}
	}

	if s.balance-s.currentBet <= 0 {
		s.resetEpoch(ctx)
	}
}

// PlaceBet 执行一轮下注：守卫 → 策略定价 → 热身/最小注修正 → 提交 → 归一化
func (s *Session) PlaceBet(ctx context.Context, prediction, confidence float64) (*domain.BetResult, error) {
	s.preBetGuards(ctx)

	s.rolls++
	stake, multiplier, chance, isHigh := s.strategy.NextBet(prediction, confidence)

	if chance < siteMinChance {
		chance = siteMinChance
		multiplier = clampMultiplier(100 / chance)
	}

	// 历史未满之前不信任预测，统一用中性校准注热身
	if len(s.history) < s.opts.HistorySize {
		stake = s.minBet()
		chance = 50
		multiplier = 2
	}

	if stake < s.minBet() {
		stake = s.minBet()
	}
	s.currentBet = stake
	s.chance = chance

	if s.opts.FakeBetting {
		return s.placeFakeBet(ctx, stake, multiplier, chance, isHigh)
	}
	return s.placeRealBet(ctx, prediction, confidence, stake, multiplier, chance, isHigh)
}

// placeFakeBet 离线模式：由公平性模拟器掷骰
// 余额不足走与真实路径相同的可恢复重置（原版在这里直接崩溃，按缺陷修正）
func (s *Session) placeFakeBet(ctx context.Context, stake, multiplier, chance float64, isHigh bool) (*domain.BetResult, error) {
	if stake > s.balance {
		s.resetEpoch(ctx)
		stake = s.minBet()
		s.currentBet = stake
	}

	receipt, err := s.sim.Bet(s.clientSeed, isHigh, stake, multiplier)
	if err != nil {
		return nil, errors.Wrap(sites.ErrEmptyReply, err.Error())
	}

	winAmount := receipt.WinAmount
	outcome := domain.OutcomeWin
	if !receipt.Win {
		winAmount = -winAmount
		outcome = domain.OutcomeLose
	}

	result := &domain.BetResult{
		Number:           receipt.Number,
		IsHigh:           isHigh,
		Outcome:          outcome,
		Chance:           chance,
		Multiplier:       multiplier,
		Stake:            stake,
		WinAmount:        winAmount,
		HashPreviousRoll: receipt.HashPreviousRoll,
		HashNextRoll:     receipt.HashNextRoll,
		ClientSeed:       s.clientSeed,
		Nonce:            receipt.Nonce,
	}
	s.appendHistory(*result)
	return result, nil
}

// placeRealBet 真实模式：提交到站点并处理限流/种子生命周期
func (s *Session) placeRealBet(ctx context.Context, prediction, confidence, stake, multiplier, chance float64, isHigh bool) (*domain.BetResult, error) {
	// 定价后余额仍不足：先走恢复重置，再让策略基于新基线重新定价，
	// 绝不把超额注提交出去
	if stake > s.balance && s.opts.UseSiteBalance {
		s.resetEpoch(ctx)
		stake, multiplier, chance, _ = s.strategy.NextBet(prediction, confidence)
		if stake < s.minBet() {
			stake = s.minBet()
		}
		s.currentBet = stake
		s.chance = chance
	}

	var faucet *bool
	if s.opts.Faucet {
		t := true
		faucet = &t
	}
	var tleHash *string
	if !s.opts.Faucet && s.opts.TLEHash != "" {
		tleHash = &s.opts.TLEHash
	}

	res, err := s.client.Play(ctx, &BetMake{
		Symbol:  s.opts.Currency.String(),
		Chance:  round(chance, 2),
		IsHigh:  isHigh,
		Amount:  round(stake, 8),
		Faucet:  faucet,
		TLEHash: tleHash,
	})
	if err != nil {
		if errors.Is(err, sites.ErrEmptyReply) {
			// 空回合不计入轮数，调用方下一轮直接重试
			s.rolls--
		}
		return nil, err
	}

	bet := res.Bet.parse()

	// 种子周期首注要通过详情接口解析真实的种子哈希与客户端种子，
	// 同周期后续注直接复用缓存的哈希对
	if !s.initializedHash {
		detail, err := s.client.BetDetail(ctx, bet.Hash)
		if err != nil {
			s.log.Warnf("解析种子详情失败（下一注重试）: %v", err)
		} else {
			bet.PreviousHash = s.previousHash
			s.previousHash = detail.Seed.ServerSeedHash
			s.clientSeed = detail.Seed.ClientSeed
			bet.Hash = s.previousHash
			s.initializedHash = true
		}
	} else {
		bet.PreviousHash = s.previousHash
		bet.Hash = s.previousHash
	}

	// nonce 触顶后轮换种子，下一注重新解析哈希
	if bet.Nonce >= s.opts.MaxNonce && s.opts.MaxNonce > 0 {
		s.rotateSeed(ctx)
	}

	// 剥掉站点塞回的授权头，重建连接
	s.client.StripAuthorization()

	outcome := domain.OutcomeLose
	if bet.Result {
		outcome = domain.OutcomeWin
	}
	payout := bet.Payout
	if payout <= 0 {
		payout = multiplier
	}
	result := &domain.BetResult{
		Number:           bet.Number,
		IsHigh:           bet.IsHigh,
		Outcome:          outcome,
		Chance:           bet.Chance,
		Multiplier:       payout,
		Stake:            bet.BetAmount,
		WinAmount:        bet.Profit,
		HashPreviousRoll: bet.PreviousHash,
		HashNextRoll:     bet.Hash,
		ClientSeed:       s.clientSeed,
		Nonce:            bet.Nonce,
	}
	s.appendHistory(*result)
	return result, nil
}

// appendHistory 追加到有界 FIFO 历史缓冲区，超容量时淘汰最老一条
// 容量为 0 表示不保留历史
func (s *Session) appendHistory(result domain.BetResult) {
	if s.opts.HistorySize <= 0 {
		return
	}
	s.history = append(s.history, result)
	if len(s.history) > s.opts.HistorySize {
		s.history = s.history[1:]
	}
}

// OnWin 结算赢注：更新余额/收益/种子周期累计并转发给策略
func (s *Session) OnWin(result *domain.BetResult) {
	s.offlineBalance += result.WinAmount
	s.balance += result.WinAmount
	s.profit += result.WinAmount
	s.seedProfit += result.WinAmount
	s.wins++
	s.strategy.OnWin(result)
}

// OnLose 结算输注：余额按带符号金额回落，
// 转发给策略前翻正，保证策略拿到的恒为正幅度
func (s *Session) OnLose(result *domain.BetResult) {
	s.offlineBalance += result.WinAmount
	s.balance += result.WinAmount
	s.profit += result.WinAmount
	s.seedProfit += result.WinAmount
	s.losses++

	flipped := *result
	flipped.WinAmount = -flipped.WinAmount
	s.strategy.OnLose(&flipped)
}

// History 返回历史缓冲区快照
func (s *Session) History() []domain.BetResult {
	out := make([]domain.BetResult, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) HistorySize() int    { return s.opts.HistorySize }
func (s *Session) Rolls() uint64       { return s.rolls }
func (s *Session) CurrentBet() float64 { return s.currentBet }
func (s *Session) Balance() float64    { return s.balance }
func (s *Session) Profit() float64     { return s.profit }
func (s *Session) SeedProfit() float64 { return s.seedProfit }
func (s *Session) ClientSeed() string  { return s.clientSeed }
func (s *Session) Wins() uint32        { return s.wins }
func (s *Session) Losses() uint32      { return s.losses }

// CurrentMultiplier 当前概率对应的赔率倍数
func (s *Session) CurrentMultiplier() float64 {
	if s.chance <= 0 {
		return 0
	}
	return 1 / (s.chance / 100)
}

func clampMultiplier(m float64) float64 {
	return math.Min(math.Max(m, 1.01), 4750)
}

// round 保留 n 位小数（站点对 chance 收 2 位、金额收 8 位）
func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

const seedAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomSeed 生成随机字母数字客户端种子
func randomSeed(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = seedAlphabet[rand.Intn(len(seedAlphabet))]
	}
	return string(b)
}
