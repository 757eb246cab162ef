package duckdice

import "github.com/shopspring/decimal"

// parseAmount 把接口返回的十进制字符串金额解析为 float64，解析失败按 0 处理
func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// BetMake POST /api/play 请求体
type BetMake struct {
	Symbol                string  `json:"symbol"`
	Chance                float64 `json:"chance"`
	IsHigh                bool    `json:"isHigh"`
	Amount                float64 `json:"amount"`
	UserWageringBonusHash *string `json:"userWageringBonusHash"`
	Faucet                *bool   `json:"faucet"`
	TLEHash               *string `json:"tleHash"`
}

// BetJSON 接口返回的单注结算，金额字段均为十进制字符串
type BetJSON struct {
	Hash      string  `json:"hash"`
	Symbol    string  `json:"symbol"`
	Result    bool    `json:"result"`
	IsHigh    bool    `json:"isHigh"`
	Number    uint32  `json:"number"`
	Threshold uint32  `json:"threshold"`
	Chance    float64 `json:"chance"`
	Payout    float64 `json:"payout"`
	BetAmount string  `json:"betAmount"`
	WinAmount string  `json:"winAmount"`
	Profit    string  `json:"profit"`
	Mined     string  `json:"mined"`
	Nonce     uint64  `json:"nonce"`
	Created   uint64  `json:"created"`
	GameMode  string  `json:"gameMode"`
}

// Bet BetJSON 的解析视图，金额已转为数值
type Bet struct {
	PreviousHash string
	Hash         string
	Symbol       string
	Result       bool
	IsHigh       bool
	Number       uint32
	Chance       float64
	Payout       float64
	BetAmount    float64
	WinAmount    float64
	Profit       float64
	Mined        float64
	Nonce        uint64
	Created      uint64
	GameMode     string
}

func (b *BetJSON) parse() Bet {
	return Bet{
		PreviousHash: b.Hash,
		Hash:         b.Hash,
		Symbol:       b.Symbol,
		Result:       b.Result,
		IsHigh:       b.IsHigh,
		Number:       b.Number,
		Chance:       b.Chance,
		Payout:       b.Payout,
		BetAmount:    parseAmount(b.BetAmount),
		WinAmount:    parseAmount(b.WinAmount),
		Profit:       parseAmount(b.Profit),
		Mined:        parseAmount(b.Mined),
		Nonce:        b.Nonce,
		Created:      b.Created,
		GameMode:     b.GameMode,
	}
}

// AbsoluteLevel 账号等级/经验元数据
type AbsoluteLevel struct {
	Level  uint32 `json:"level"`
	XP     uint64 `json:"xp"`
	XPNext uint64 `json:"xpNext"`
	XPPrev uint64 `json:"xpPrev"`
}

// UserJSON 下注响应里附带的用户快照
type UserJSON struct {
	Hash          string        `json:"hash"`
	Level         uint32        `json:"level"`
	Username      string        `json:"username"`
	Bets          uint64        `json:"bets"`
	Nonce         uint64        `json:"nonce"`
	Wins          uint64        `json:"wins"`
	Luck          float64       `json:"luck"`
	Balance       string        `json:"balance"`
	Profit        string        `json:"profit"`
	Volume        string        `json:"volume"`
	AbsoluteLevel AbsoluteLevel `json:"absoluteLevel"`
}

// Jackpot 彩池信息
type Jackpot struct {
	Amount float64 `json:"amount"`
}

// BetMakeResponse POST /api/play 响应
type BetMakeResponse struct {
	Bet       BetJSON  `json:"bet"`
	IsJackpot bool     `json:"isJackpot"`
	Jackpot   *Jackpot `json:"jackpot"`
	User      UserJSON `json:"user"`
}

// CurrencyBalance 单币种余额（主账户/水龙头/推广分成三个资金池）
type CurrencyBalance struct {
	Currency  string  `json:"currency"`
	Main      *string `json:"main"`
	Faucet    *string `json:"faucet"`
	Affiliate *string `json:"affiliate"`
}

// LastDepositJSON 最近一次充值
type LastDepositJSON struct {
	CreatedAt uint64 `json:"createdAt"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
}

// WageredJSON 各币种累计流水
type WageredJSON struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// WageringBonusJSON 流水返利活动
type WageringBonusJSON struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Hash   string `json:"hash"`
	Status string `json:"status"`
	Symbol string `json:"symbol"`
	Margin string `json:"margin"`
}

// TLE 限时活动
type TLE struct {
	Hash   string `json:"hash"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// UserInfoJSON GET /api/bot/user-info 响应
type UserInfoJSON struct {
	Hash            string              `json:"hash"`
	Username        string              `json:"username"`
	CreatedAt       uint64              `json:"createdAt"`
	Level           uint32              `json:"level"`
	Campaign        *string             `json:"campaign"`
	Affiliate       *string             `json:"affiliate"`
	LastDeposit     *LastDepositJSON    `json:"lastDeposit"`
	Wagered         []WageredJSON       `json:"wagered"`
	Balances        []CurrencyBalance   `json:"balances"`
	WageringBonuses []WageringBonusJSON `json:"wageringBonuses"`
	TLE             []TLE               `json:"tle"`
}

// balanceFor 返回指定币种指定资金池的余额；缺失时返回 (0, false)
func (u *UserInfoJSON) balanceFor(currency string, faucet bool) (float64, bool) {
	for i := range u.Balances {
		b := &u.Balances[i]
		if b.Currency != currency {
			continue
		}
		pool := b.Main
		if faucet {
			pool = b.Faucet
		}
		if pool == nil {
			return 0, false
		}
		return parseAmount(*pool), true
	}
	return 0, false
}

// BetDetailJSON GET /api/bet/{hash} 的种子揭示部分
type BetDetailJSON struct {
	Seed struct {
		ServerSeedHash string `json:"serverSeedHash"`
		ClientSeed     string `json:"clientSeed"`
	} `json:"seed"`
}
