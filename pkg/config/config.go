package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" json:"level"`             // 日志级别: debug, info, warn, error
	File       string `yaml:"file" json:"file"`               // 日志文件路径（可选，为空则只输出到控制台）
	MaxSize    int    `yaml:"max_size" json:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `yaml:"max_backups" json:"max_backups"` // 保留的旧日志文件数量
	MaxAge     int    `yaml:"max_age" json:"max_age"`         // 保留旧日志文件的天数
	Compress   bool   `yaml:"compress" json:"compress"`       // 是否压缩旧日志文件
}

// BotConfig 下注循环配置
type BotConfig struct {
	RollIntervalMs int `yaml:"roll_interval_ms" json:"roll_interval_ms"` // 两轮之间的间隔（毫秒），默认100ms
	HistorySize    int `yaml:"history_size" json:"history_size"`         // 会话历史窗口大小，默认10；窗口未满时处于热身阶段
	MaxNonce       int `yaml:"max_nonce" json:"max_nonce"`               // 周期内 nonce 上限，达到后轮换种子，默认1000
}

// DuckDiceConfig DuckDice 站点配置
type DuckDiceConfig struct {
	Enabled         bool    `yaml:"enabled" json:"enabled"`
	APIKey          string  `yaml:"api_key" json:"api_key"`                   // 站点 API Key（优先用环境变量 DUCKDICE_API_KEY 覆盖）
	BaseURL         string  `yaml:"base_url" json:"base_url"`                 // 站点地址，默认 https://duckdice.io
	Currency        string  `yaml:"currency" json:"currency"`                 // 下注币种，例如 XRP
	Strategy        string  `yaml:"strategy" json:"strategy"`                 // 策略名: noOp, lossRecovery, streakWeighted, autoTuningMartingale
	Faucet          bool    `yaml:"faucet" json:"faucet"`                     // 是否使用水龙头资金池
	UseSiteBalance  bool    `yaml:"use_site_balance" json:"use_site_balance"` // 用站点余额初始化资金，否则使用 offline_balance
	OfflineBalance  float64 `yaml:"offline_balance" json:"offline_balance"`   // 离线模式初始余额
	BalanceModifier float64 `yaml:"balance_modifier" json:"balance_modifier"` // 余额折算系数（0,1]，只拿站点余额的一部分来下注
	FakeBetting     bool    `yaml:"fake_betting" json:"fake_betting"`         // 假注模式：用本地公平性模拟器结算，不打真实请求
	TLEHash         string  `yaml:"tle_hash" json:"tle_hash"`                 // 限时活动 hash（可选）
}

// Config 应用配置
type Config struct {
	Log      LogConfig      `yaml:"log" json:"log"`
	Bot      BotConfig      `yaml:"bot" json:"bot"`
	DuckDice DuckDiceConfig `yaml:"duckdice" json:"duckdice"`
}

// knownStrategies 可用策略的闭集，与策略注册表保持一致
var knownStrategies = map[string]bool{
	"noOp":                 true,
	"lossRecovery":         true,
	"streakWeighted":       true,
	"autoTuningMartingale": true,
}

// Load 从文件加载配置（支持 YAML 和 JSON），再套默认值并验证
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("解析 YAML 配置文件失败: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("解析 JSON 配置文件失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的配置文件格式: %s (支持 .yaml, .yml, .json)", ext)
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return &config, nil
}

// ApplyDefaults 填充缺省值；API Key 允许用环境变量覆盖，避免写进配置文件
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = getEnv("LOG_LEVEL", "info")
	}
	if c.Log.File == "" {
		c.Log.File = getEnv("LOG_FILE", "")
	}
	if c.Log.MaxSize <= 0 {
		c.Log.MaxSize = 100
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAge <= 0 {
		c.Log.MaxAge = 28
	}

	if c.Bot.RollIntervalMs <= 0 {
		c.Bot.RollIntervalMs = parseIntEnv("ROLL_INTERVAL_MS", 100)
	}
	if c.Bot.HistorySize <= 0 {
		c.Bot.HistorySize = 10
	}
	if c.Bot.MaxNonce <= 0 {
		c.Bot.MaxNonce = 1000
	}

	if key := os.Getenv("DUCKDICE_API_KEY"); key != "" {
		c.DuckDice.APIKey = key
	}
	if c.DuckDice.BaseURL == "" {
		c.DuckDice.BaseURL = "https://duckdice.io"
	}
	if c.DuckDice.Strategy == "" {
		c.DuckDice.Strategy = "noOp"
	}
	if c.DuckDice.BalanceModifier <= 0 || c.DuckDice.BalanceModifier > 1 {
		c.DuckDice.BalanceModifier = 1
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.DuckDice.Enabled {
		return fmt.Errorf("duckdice 站点未启用")
	}
	if !knownStrategies[c.DuckDice.Strategy] {
		return fmt.Errorf("未知的策略: %s", c.DuckDice.Strategy)
	}
	if c.DuckDice.Currency == "" {
		return fmt.Errorf("duckdice.currency 未配置")
	}
	if !c.DuckDice.FakeBetting && c.DuckDice.APIKey == "" {
		return fmt.Errorf("真实下注模式需要配置 DUCKDICE_API_KEY")
	}
	if !c.DuckDice.UseSiteBalance && c.DuckDice.OfflineBalance <= 0 {
		return fmt.Errorf("离线余额模式下 offline_balance 必须大于 0")
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv 解析整数环境变量
func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
