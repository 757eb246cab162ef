package duckdice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/godice/internal/sites"
	"github.com/betbot/godice/pkg/ratelimit"
)

const (
	// DefaultBaseURL 站点地址（测试里用 httptest 服务替换）
	DefaultBaseURL = "https://duckdice.io"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// defaultHeaders 每个请求都携带的默认协议头（站点侧期待的指纹）
func defaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":              "application/json",
		"Cache-Control":             "no-cache, private",
		"Strict-Transport-Security": "max-age=15552000; includeSubDomains",
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "sameorigin",
		"Server":                    "cloudflare",
		"User-Agent":                userAgent,
	}
}

// Client DuckDice HTTP 客户端
// 403 限流响应会带回一个 cf-ray 追踪令牌，重建连接时必须回放；
// 每次下注后站点可能塞回 Authorization 头，发起下一请求前要剥掉
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
	cfRay   string
	limiter *ratelimit.TokenBucket
}

// NewClient 创建客户端并装配默认头与限速桶
func NewClient(baseURL, apiKey string) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		// 站点接口约 10 req/s 就会触发 403，留出余量
		limiter: ratelimit.NewTokenBucket(5, 5, time.Second),
	}
	c.rebuild()
	return c
}

// rebuild 重建底层连接：默认头 + 已捕获的 cf-ray 令牌
func (c *Client) rebuild() {
	client := resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(30 * time.Second).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(200)).
		SetHeaders(defaultHeaders())
	if c.cfRay != "" {
		client.SetHeader("cf-ray", c.cfRay)
	}
	c.http = client
}

// StripAuthorization 丢弃下注后残留的授权头并重建连接
func (c *Client) StripAuthorization() {
	c.http.Header.Del("Authorization")
	c.rebuild()
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey)
}

// UserInfo 拉取账号信息（各币种余额、等级/经验）
func (c *Client) UserInfo(ctx context.Context) (*UserInfoJSON, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.newRequest(ctx).Get("/api/bot/user-info")
	if err != nil {
		return nil, errors.Wrap(sites.ErrEmptyReply, err.Error())
	}

	var info UserInfoJSON
	if err := json.Unmarshal(resp.Body(), &info); err != nil {
		return nil, &sites.ProtocolError{Endpoint: "/api/bot/user-info", Err: err}
	}
	return &info, nil
}

// Play 提交一注
// 403：捕获 cf-ray、带令牌重建连接后返回 ErrEmptyReply（调用方下一轮重试）
// 载荷解析失败：返回 ProtocolError（可恢复，见错误分级设计）
func (c *Client) Play(ctx context.Context, bet *BetMake) (*BetMakeResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.newRequest(ctx).
		SetBody(bet).
		Post("/api/play")
	if err != nil {
		return nil, errors.Wrap(sites.ErrEmptyReply, err.Error())
	}

	if resp.StatusCode() == http.StatusForbidden {
		if ray := resp.Header().Get("cf-ray"); ray != "" {
			c.cfRay = ray
		}
		c.rebuild()
		return nil, errors.Wrap(sites.ErrEmptyReply, "rate limited (403)")
	}

	var result BetMakeResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &sites.ProtocolError{Endpoint: "/api/play", Err: err}
	}
	return &result, nil
}

// BetDetail 查询单注详情，拿到本周期真实的种子哈希与客户端种子
func (c *Client) BetDetail(ctx context.Context, hash string) (*BetDetailJSON, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.newRequest(ctx).Get(fmt.Sprintf("/api/bet/%s", hash))
	if err != nil {
		return nil, errors.Wrap(sites.ErrEmptyReply, err.Error())
	}

	var detail BetDetailJSON
	if err := json.Unmarshal(resp.Body(), &detail); err != nil {
		return nil, &sites.ProtocolError{Endpoint: "/api/bet/{hash}", Err: err}
	}
	if detail.Seed.ServerSeedHash == "" {
		return nil, &sites.ProtocolError{
			Endpoint: "/api/bet/{hash}",
			Err:      errors.New("missing seed.serverSeedHash"),
		}
	}
	return &detail, nil
}

// Randomize 轮换客户端种子，开启新的公平性周期
// 返回响应头里的 retry-after 秒数（没有则为 0），由调用方决定是否等待
func (c *Client) Randomize(ctx context.Context, clientSeed string) (time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	resp, err := c.newRequest(ctx).
		SetBody(map[string]string{"clientSeed": clientSeed}).
		Post("/api/randomize")
	if err != nil {
		return 0, errors.Wrap(sites.ErrEmptyReply, err.Error())
	}
	if resp.IsError() {
		return 0, errors.Wrapf(sites.ErrEmptyReply, "randomize rejected (%d)", resp.StatusCode())
	}

	if ra := resp.Header().Get("Retry-After"); ra != "" {
		if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second, nil
		}
	}
	return 0, nil
}
