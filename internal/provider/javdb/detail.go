package javdb

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/John-Robertt/avsearch/internal/domain"
	providerx "github.com/John-Robertt/avsearch/internal/provider"
)

// DetailResolver 从详情页解析播放地址、预览、时长与简介。
//
// 约束：
// - 对调用方是“全函数”：任何失败都回退为 domain.DefaultDetail()，绝不向外返回错误
// - 每个字段按固定顺序尝试多个策略，第一个非空结果胜出
type DetailResolver struct {
	BaseURL string
	Client  Fetcher
	Log     *slog.Logger
}

// Resolve 实现 Resolver；error 恒为 nil。
func (r DetailResolver) Resolve(ctx context.Context, detailURL string) (domain.MovieDetail, error) {
	return r.ResolveDetail(ctx, detailURL), nil
}

// ResolveDetail 抓取并解析详情页。
func (r DetailResolver) ResolveDetail(ctx context.Context, detailURL string) (d domain.MovieDetail) {
	log := loggerOrDiscard(r.Log)
	defer func() {
		if rec := recover(); rec != nil {
			log.Warn("获取播放地址失败", "url", detailURL, "panic", rec)
			d = domain.DefaultDetail()
		}
	}()

	if r.Client == nil {
		log.Warn("获取播放地址失败", "url", detailURL, "error", "http client 不能为空")
		return domain.DefaultDetail()
	}

	body, err := fetchPage(ctx, r.Client, detailURL, nil)
	if err != nil {
		log.Warn("获取播放地址失败", "url", detailURL, "error", err)
		return domain.DefaultDetail()
	}
	doc, err := parseHTML(body)
	if err != nil {
		log.Warn("详情页HTML解析失败", "url", detailURL, "error", err)
		return domain.DefaultDetail()
	}

	base := normalizeBase(r.BaseURL)

	videoURL, attempts := providerx.FirstMatch(
		providerx.Value("player-iframe", attr(doc.Find("#video-container iframe"), "src")),
		providerx.Strategy{Name: "video-api", Extract: func() (string, error) {
			return r.videoAPI(ctx, doc, base, detailURL)
		}},
		providerx.Strategy{Name: "movie-info-link", Extract: func() (string, error) {
			return playLink(doc), nil
		}},
	)
	for _, a := range attempts {
		if a.Err != nil {
			log.Debug("播放地址策略失败", "url", detailURL, "strategy", a.Strategy, "error", a.Err)
		}
	}

	preview, _ := providerx.FirstMatch(
		providerx.Value("preview-video", attr(doc.Find("#preview-video source"), "src")),
		providerx.Value("magnet-name", attr(doc.Find(".magnet-name > a"), "href")),
	)

	duration, _ := providerx.FirstMatch(
		providerx.Value("panel", panelValue(doc, "時長", "时长")),
		providerx.Strategy{Name: "score-prev", Extract: func() (string, error) {
			return scorePrevText(doc), nil
		}},
	)
	if duration == "" {
		duration = domain.DefaultDuration
	}

	description, _ := providerx.FirstMatch(
		providerx.Value("panel", panelValue(doc, "簡介", "简介")),
		providerx.Strategy{Name: "movie-info", Extract: func() (string, error) {
			return doc.Find(".movie-info").Text(), nil
		}},
	)

	return domain.MovieDetail{
		VideoURL:     videoURL,
		PreviewVideo: NormalizeURL(base, preview),
		Duration:     duration,
		Description:  description,
	}
}

// videoAPI 找到指向 /video/ 的链接后，带 Referer 请求该 JSON 接口并读取 url 字段。
func (r DetailResolver) videoAPI(ctx context.Context, doc *goquery.Document, base, detailURL string) (string, error) {
	href := attr(doc.Find(`a[href*="/video/"]`), "href")
	if href == "" {
		return "", nil
	}

	h := http.Header{}
	h.Set("Referer", detailURL)
	body, err := fetchPage(ctx, r.Client, resolveURL(base+"/", href), h)
	if err != nil {
		return "", err
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	return payload.URL, nil
}

func playLink(doc *goquery.Document) string {
	var out string
	doc.Find(".movie-info a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.Contains(href, "streaming") || strings.Contains(href, "play") {
			out = href
			return false
		}
		return true
	})
	return out
}

// panelValue 在 .panel-block 中找到 strong 标签文本包含任一 label 的一行，返回其 .value 文本。
func panelValue(doc *goquery.Document, labels ...string) string {
	var out string
	doc.Find(".panel-block").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := s.Find("strong").First().Text()
		for _, l := range labels {
			if strings.Contains(label, l) {
				out = strings.TrimSpace(s.Find(".value").Text())
				return false
			}
		}
		return true
	})
	return out
}

// scorePrevText 返回首个 .score 之前紧邻的非空兄弟节点文本（文本节点或元素均可）。
func scorePrevText(doc *goquery.Document) string {
	score := doc.Find(".score").First()
	if score.Length() == 0 {
		return ""
	}
	for n := score.Nodes[0].PrevSibling; n != nil; n = n.PrevSibling {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				return t
			}
		case html.ElementNode:
			return strings.TrimSpace(nodeText(n))
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.First().Attr(name)
	return strings.TrimSpace(v)
}
