package javdb

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/avsearch/internal/domain"
)

var (
	// errNoResults：页面正常，但站点明确提示没有结果（番号错误/关键词无匹配）。
	errNoResults = errors.New("search page has no results")
	// errNoListing：既没有结果列表也没有“无结果”提示，通常意味着页面结构变化或被拦截。
	errNoListing = errors.New("movie list container not found")
)

// parseListing 按文档顺序提取搜索结果列表项；缺少 href 的条目直接跳过。
func parseListing(doc *goquery.Document) ([]domain.SearchResultItem, error) {
	list := doc.Find(".movie-list")
	if list.Length() == 0 {
		if doc.Find(".empty-message").Length() > 0 {
			return nil, errNoResults
		}
		return nil, errNoListing
	}

	items := make([]domain.SearchResultItem, 0, 32)
	list.Find(".item").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a").First().Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		cover, _ := s.Find(".cover img").First().Attr("src")
		items = append(items, domain.SearchResultItem{
			Href:  href,
			Title: normSpace(s.Find(".video-title").Text()),
			Cover: strings.TrimSpace(cover),
		})
	})
	return items, nil
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
