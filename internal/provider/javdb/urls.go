package javdb

import (
	"net/url"
	"strings"
)

// NormalizeURL 规范化预览地址：
// - //host/path      => https://host/path
// - http://host/path => https://host/path
// - /path 或 path    => 相对 base 解析
// - https:// 与其它带 scheme 的地址（如 magnet:）保持不变
//
// 对同一输入重复调用结果不变；空串返回空串。
func NormalizeURL(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return upgradeHTTP(resolveURL(normalizeBase(base)+"/", raw))
}

func upgradeHTTP(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base)
	if err != nil {
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}
