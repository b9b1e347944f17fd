package javdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/avsearch/internal/domain"
	"github.com/John-Robertt/avsearch/internal/infra/httpx"
	providerx "github.com/John-Robertt/avsearch/internal/provider"
)

// DefaultBaseURL 是 JavDB 的默认站点 origin。
const DefaultBaseURL = "https://javdb.com"

// Fetcher 是宿主提供的 HTTP 能力：fetch(url, headers) -> {status, body}。
type Fetcher interface {
	Fetch(ctx context.Context, url string, h http.Header) (httpx.Response, error)
}

// Resolver 把详情页 URL 解析为 MovieDetail。
// 默认实现 DetailResolver 永远返回 nil error；返回 error 时 Search 会跳过该条。
type Resolver interface {
	Resolve(ctx context.Context, detailURL string) (domain.MovieDetail, error)
}

// Provider 实现 JavDB 的搜索：先请求搜索页，再逐条进入详情页补全播放地址等字段。
//
// 约束：
// - 详情页严格串行抓取（不并发 fan-out），顺序与列表一致
// - 任何一条详情失败只跳过该条，不影响整批
// - 不做缓存/重试
type Provider struct {
	// BaseURL 允许指定 JavDB 的可用域名（例如镜像站），为空时使用 DefaultBaseURL。
	BaseURL string

	Client   Fetcher
	Resolver Resolver // 为空时使用 DetailResolver
	Log      *slog.Logger
	Observer providerx.Observer
}

func (Provider) Name() string { return "javdb" }

func (p Provider) baseURL() string {
	return normalizeBase(p.BaseURL)
}

func (p Provider) logger() *slog.Logger {
	return loggerOrDiscard(p.Log)
}

func (p Provider) resolver() Resolver {
	if p.Resolver != nil {
		return p.Resolver
	}
	return DetailResolver{BaseURL: p.BaseURL, Client: p.Client, Log: p.Log}
}

// SearchURL 拼出搜索页 URL：<base>/search?q=<QueryEscape(q)>&f=all
func SearchURL(base string, q domain.Query) string {
	return normalizeBase(base) + "/search?q=" + url.QueryEscape(string(q)) + "&f=all"
}

// Search 执行一次搜索并返回按列表顺序排列的结果（可能为空）。
// 进入逐条处理之前的任何失败都以 *provider.Error 返回。
func (p Provider) Search(ctx context.Context, params domain.Params) ([]domain.MovieEntry, error) {
	log := p.logger()

	q, err := domain.ParseQuery(params.Code)
	if err != nil {
		log.Warn("参数校验失败", "error", err)
		var ie *domain.InvalidInputError
		hint := ""
		if errors.As(err, &ie) {
			hint = ie.Reason
		}
		return nil, p.fail(providerx.StageValidate, providerx.ErrCodeInvalidInput, hint, err)
	}
	if p.Client == nil {
		return nil, p.fail(providerx.StageFetch, providerx.ErrCodeFetchFailed, "", errors.New("http client 不能为空"))
	}

	base := p.baseURL()
	searchURL := SearchURL(base, q)
	log.Info("请求搜索页面", "url", searchURL)

	body, err := fetchPage(ctx, p.Client, searchURL, nil)
	if err != nil {
		log.Error("搜索页请求失败，可能已被风控，请更换ip地址后重试", "url", searchURL, "error", err)
		return nil, p.fail(providerx.StageFetch, providerx.ErrCodeFetchFailed, fetchHint(err), err)
	}

	doc, err := parseHTML(body)
	if err != nil {
		log.Error("搜索页解析失败", "url", searchURL, "error", err)
		return nil, p.fail(providerx.StageParse, providerx.ErrCodeParseFailed, "HTML解析失败：页面内容格式错误", err)
	}

	items, err := parseListing(doc)
	if err != nil {
		code, hint := providerx.ErrCodeParseFailed, "未找到搜索结果列表：页面结构可能已变化"
		if errors.Is(err, errNoResults) {
			code, hint = providerx.ErrCodeNoResults, "未找到搜索结果：可能番号错误"
		}
		log.Error("搜索结果为空或页面结构变化", "url", searchURL, "error", err)
		return nil, p.fail(providerx.StageParse, code, hint, err)
	}

	if p.Observer != nil {
		p.Observer.OnSearch(q, searchURL, len(items))
	}

	res := p.resolver()
	entries := make([]domain.MovieEntry, 0, len(items))
	for i, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, p.fail(providerx.StageFetch, providerx.ErrCodeFetchFailed, "请求已取消", err)
		}

		started := time.Now()
		link := resolveURL(base+"/", it.Href)
		e, err := buildEntry(ctx, res, it, link)
		if p.Observer != nil {
			p.Observer.OnItemDone(i+1, len(items), link, e, err, time.Since(started))
		}
		if err != nil {
			log.Warn("单个影片解析失败", "url", link, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	log.Info("搜索完成", "query", string(q), "items", len(items), "entries", len(entries))
	return entries, nil
}

// buildEntry 处理单条列表项；panic 也降级为该条失败。
func buildEntry(ctx context.Context, res Resolver, it domain.SearchResultItem, link string) (e domain.MovieEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, err = domain.MovieEntry{}, fmt.Errorf("panic: %v", r)
		}
	}()

	d, err := res.Resolve(ctx, link)
	if err != nil {
		return domain.MovieEntry{}, err
	}
	return domain.NewMovieEntry(it, link, d), nil
}

func (p Provider) fail(stage, code, hint string, err error) error {
	return &providerx.Error{Provider: p.Name(), Stage: stage, Code: code, Hint: hint, Err: err}
}

func fetchHint(err error) string {
	var se *providerx.HTTPStatusError
	switch {
	case errors.Is(err, providerx.ErrEmptyBody):
		return "搜索页面返回空内容"
	case errors.As(err, &se):
		return fmt.Sprintf("搜索页面请求失败（HTTP %d），可能已被风控，请更换ip地址后重试", se.StatusCode)
	default:
		return ""
	}
}

// fetchPage 发起 GET 并返回 body。非 2xx 与空 body 都视为失败。
func fetchPage(ctx context.Context, c Fetcher, u string, extra http.Header) ([]byte, error) {
	h := http.Header{}
	h.Set("User-Agent", httpx.DefaultUserAgent)
	h.Set("Accept-Language", httpx.DefaultAcceptLanguage)
	for k, vs := range extra {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}

	resp, err := c.Fetch(ctx, u, h)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status >= 300 {
		loc := ""
		if resp.Header != nil {
			loc = resp.Header.Get("Location")
		}
		return nil, &providerx.HTTPStatusError{URL: u, StatusCode: resp.Status, Location: loc}
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, fmt.Errorf("%w: %s", providerx.ErrEmptyBody, u)
	}
	return resp.Body, nil
}

func parseHTML(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func normalizeBase(base string) string {
	u := strings.TrimSpace(base)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
