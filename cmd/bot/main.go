package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/betbot/godice/internal/domain"
	"github.com/betbot/godice/internal/fairness"
	"github.com/betbot/godice/internal/predictor"
	"github.com/betbot/godice/internal/sites"
	"github.com/betbot/godice/internal/sites/duckdice"
	"github.com/betbot/godice/internal/strategies"
	"github.com/betbot/godice/pkg/config"
	"github.com/betbot/godice/pkg/logger"
	"github.com/betbot/godice/pkg/shutdown"
)

// 回合报告的着色样式
var (
	winStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	loseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	goldenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	gainStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// reportRoll 打印一行回合报告：极端点数（<100 或 >9900）高亮为金色
func reportRoll(session *duckdice.Session, result *domain.BetResult, confidence float64) {
	outcome := loseStyle.Render("LOSE")
	if result.Win() {
		outcome = winStyle.Render(" WIN")
	}

	number := fmt.Sprintf("%04d", result.Number)
	if result.Number > 9900 || result.Number < 100 {
		number = goldenStyle.Render(number)
	}

	profit := session.Profit()
	profitStr := lossStyle.Render(fmt.Sprintf("%+.8f", profit))
	if profit >= 0 {
		profitStr = gainStyle.Render(fmt.Sprintf("%+.8f", profit))
	}

	logger.Infof("#%06d %s roll=%s nonce=%d bet=%.8f x%.2f conf=%.2f balance=%.8f profit=%s w/l=%d/%d",
		session.Rolls(), outcome, number, result.Nonce,
		result.Stake, result.Multiplier, confidence, session.Balance(), profitStr,
		session.Wins(), session.Losses())
}

func main() {
	configPath := flag.String("config", "yml/config.yaml", "配置文件路径（支持 .yaml, .yml, .json）")
	flag.Parse()

	// .env 只用于本地开发注入 DUCKDICE_API_KEY 等敏感项，不存在则忽略
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Errorf("加载配置失败: %v", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		logrus.Errorf("初始化日志失败: %v", err)
		os.Exit(1)
	}

	currency := domain.Currency(cfg.DuckDice.Currency)
	if !currency.IsValid() {
		logger.Errorf("不支持的币种: %s", cfg.DuckDice.Currency)
		os.Exit(1)
	}

	// 资金基线：站点余额模式下 Login 时再同步，这里先用离线余额占位
	baseBalance := cfg.DuckDice.OfflineBalance * cfg.DuckDice.BalanceModifier

	strategy, err := strategies.New(cfg.DuckDice.Strategy, strategies.Params{
		InitialBet: currency.MinBet(),
		MinBet:     currency.MinBet(),
		Balance:    baseBalance,
	})
	if err != nil {
		logger.Errorf("实例化策略失败: %v", err)
		os.Exit(1)
	}

	client := duckdice.NewClient(cfg.DuckDice.BaseURL, cfg.DuckDice.APIKey)
	session := duckdice.NewSession(client, strategy, fairness.NewSimulator(), duckdice.Options{
		Currency:        currency,
		Faucet:          cfg.DuckDice.Faucet,
		UseSiteBalance:  cfg.DuckDice.UseSiteBalance,
		OfflineBalance:  cfg.DuckDice.OfflineBalance,
		BalanceModifier: cfg.DuckDice.BalanceModifier,
		FakeBetting:     cfg.DuckDice.FakeBetting,
		HistorySize:     cfg.Bot.HistorySize,
		MaxNonce:        uint64(cfg.Bot.MaxNonce),
		TLEHash:         cfg.DuckDice.TLEHash,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Login(ctx); err != nil {
		logger.Errorf("登录失败: %v", err)
		os.Exit(1)
	}

	manager := shutdown.NewManager()
	manager.OnShutdown("final-report", func(ctx context.Context, wg *sync.WaitGroup) {
		logger.Infof("最终结算 rolls=%d balance=%.8f profit=%+.8f w/l=%d/%d",
			session.Rolls(), session.Balance(), session.Profit(),
			session.Wins(), session.Losses())
	})

	pred := predictor.NewHashWindow(cfg.Bot.HistorySize)
	interval := time.Duration(cfg.Bot.RollIntervalMs) * time.Millisecond

	logger.Infof("下注循环启动 strategy=%s currency=%s interval=%v fake=%v",
		cfg.DuckDice.Strategy, currency, interval, cfg.DuckDice.FakeBetting)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		p := pred.Predict()
		result, err := session.PlaceBet(ctx, p.Value, p.Confidence)
		if err != nil {
			if ctx.Err() != nil {
				break loop
			}
			if sites.IsRecoverable(err) {
				// 空回合：不结算、不动策略，等一拍直接重试
				logger.Warnf("回合作废（重试）: %v", err)
				select {
				case <-ctx.Done():
					break loop
				case <-time.After(interval):
				}
				continue
			}
			logger.Errorf("下注失败（不可恢复）: %v", err)
			break loop
		}

		if result.Win() {
			session.OnWin(result)
		} else {
			session.OnLose(result)
		}
		pred.Observe(result)
		reportRoll(session, result, p.Confidence)

		select {
		case <-ctx.Done():
			break loop
		case <-time.After(interval):
		}
	}

	logger.Info("收到停止信号，正在关闭...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	manager.Shutdown(shutdownCtx)
	logger.Info("机器人已停止")
}
