package httpx

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 20 * time.Second

	// DefaultUserAgent 是固定的桌面浏览器 UA（站点对非浏览器 UA 更容易直接拦截）。
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "zh-CN,zh;q=0.9"

	maxBodyBytes = 8 << 20
)

// Transport 把“固定请求头 + 代理 + keep-alive 策略 + 出站限速”固化为统一策略。
//
// 约束：
// - 不做重试：任何一次失败都直接返回给调用方
// - 调用方显式设置的请求头优先，Transport 只补缺省值
type Transport struct {
	Base *http.Transport

	// Limiter 为 nil 时不限速。
	Limiter *rate.Limiter

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	// Clone 避免在 RoundTripper 内部修改调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", DefaultUserAgent)
	}
	if r.Header.Get("Accept-Language") == "" {
		r.Header.Set("Accept-Language", DefaultAcceptLanguage)
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// Options 描述 NewClient 的可选项；零值即默认策略。
type Options struct {
	ProxyURL string
	Timeout  time.Duration
	// RatePerSecond <= 0 表示不限速。
	RatePerSecond float64
}

// NewClient 构造用于站点页面抓取的 HTTP client。
//
// 规则：
// - ProxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）
// - RatePerSecond > 0：所有出站请求共享一个令牌桶（burst=1）
// - 总超时默认 DefaultTimeout
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}

	disableKeepAlives := false
	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		// proxy 模式强制每请求新连接（代理池轮换依赖该行为）。
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Transport: &Transport{
			Base:              base,
			Limiter:           limiter,
			DisableKeepAlives: disableKeepAlives,
		},
		Timeout: timeout,
	}, nil
}

// Response 是一次 GET 的结果。非 2xx 不视为错误，由调用方按状态码决定。
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client 把 *http.Client 适配成 fetch(url, headers) -> {status, body} 能力。
type Client struct {
	HTTP *http.Client
}

func (c Client) Fetch(ctx context.Context, u string, h http.Header) (Response, error) {
	hc := c.HTTP
	if hc == nil {
		return Response{}, errors.New("http client 不能为空")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Response{}, err
	}
	for k, vs := range h {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, err
	}
	return Response{Status: resp.StatusCode, Header: resp.Header, Body: b}, nil
}
