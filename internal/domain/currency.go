package domain

import (
	"fmt"
	"strings"
)

// Currency 站点支持的币种标识
type Currency string

const (
	CurrencyXRP   Currency = "XRP"
	CurrencyDECOY Currency = "DECOY"
	CurrencyUSDT  Currency = "USDT"
	CurrencyBTC   Currency = "BTC"
	CurrencyLTC   Currency = "LTC"
	CurrencyTRX   Currency = "TRX"
	CurrencyDOGE  Currency = "DOGE"
	CurrencyETH   Currency = "ETH"
	CurrencyXLM   Currency = "XLM"
	CurrencyBCH   Currency = "BCH"
	CurrencyBNB   Currency = "BNB"
	CurrencySHIB  Currency = "SHIB"
	CurrencyUSDC  Currency = "USDC"
	CurrencyADA   Currency = "ADA"
	CurrencyDASH  Currency = "DASH"
	CurrencySOL   Currency = "SOL"
	CurrencyATOM  Currency = "ATOM"
	CurrencyETC   Currency = "ETC"
	CurrencyXMR   Currency = "XMR"
	CurrencyEOS   Currency = "EOS"
	CurrencyBTTC  Currency = "BTTC"
	CurrencyPOL   Currency = "POL"
	CurrencyDOT   Currency = "DOT"
	CurrencyZEC   Currency = "ZEC"
	CurrencyRVN   Currency = "RVN"
	CurrencyLINK  Currency = "LINK"
	CurrencyDAI   Currency = "DAI"
	CurrencyTUSD  Currency = "TUSD"
	CurrencyAVAX  Currency = "AVAX"
	CurrencyNEAR  Currency = "NEAR"
	CurrencyZEN   Currency = "ZEN"
	CurrencyAAVE  Currency = "AAVE"
	CurrencyNOT   Currency = "NOT"
	CurrencyENA   Currency = "ENA"
	CurrencyUNI   Currency = "UNI"
	CurrencyTON   Currency = "TON"
	CurrencyTRUMP Currency = "TRUMP"
	CurrencyFDUSD Currency = "FDUSD"
	CurrencyWBTC  Currency = "WBTC"
	CurrencyCAD   Currency = "CAD"
)

// minBets 各币种在站点上的最小投注额
var minBets = map[Currency]float64{
	CurrencyXRP:   0.0005,
	CurrencyDECOY: 0.01,
	CurrencyUSDT:  0.002,
	CurrencyBTC:   0.00000001,
	CurrencyLTC:   0.00002,
	CurrencyTRX:   0.006,
	CurrencyDOGE:  0.01,
	CurrencyETH:   0.0000005,
	CurrencyXLM:   0.005,
	CurrencyBCH:   0.000005,
	CurrencyBNB:   0.000002,
	CurrencySHIB:  100,
	CurrencyUSDC:  0.002,
	CurrencyADA:   0.002,
	CurrencyDASH:  0.0001,
	CurrencySOL:   0.000008,
	CurrencyATOM:  0.0004,
	CurrencyETC:   0.00012,
	CurrencyXMR:   0.000006,
	CurrencyEOS:   0.002,
	CurrencyBTTC:  2000,
	CurrencyPOL:   0.01,
	CurrencyDOT:   0.0005,
	CurrencyZEC:   0.00004,
	CurrencyRVN:   0.01,
	CurrencyLINK:  0.0001,
	CurrencyDAI:   0.002,
	CurrencyTUSD:  0.002,
	CurrencyAVAX:  0.0001,
	CurrencyNEAR:  0.0008,
	CurrencyZEN:   0.0002,
	CurrencyAAVE:  0.000006,
	CurrencyNOT:   0.8,
	CurrencyENA:   0.006,
	CurrencyUNI:   0.0003,
	CurrencyTON:   0.0006,
	CurrencyTRUMP: 0.0002,
	CurrencyFDUSD: 0.002,
	CurrencyWBTC:  0.00000004,
	CurrencyCAD:   0.002,
}

// MinBet 返回币种的最小投注额
func (c Currency) MinBet() float64 {
	return minBets[c]
}

// IsValid 返回币种是否在支持列表内
func (c Currency) IsValid() bool {
	_, ok := minBets[c]
	return ok
}

func (c Currency) String() string {
	return string(c)
}

// UnmarshalYAML 从配置文件解析币种（大小写不敏感）
func (c *Currency) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	cur := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if !cur.IsValid() {
		return fmt.Errorf("不支持的币种: %q", raw)
	}
	*c = cur
	return nil
}
