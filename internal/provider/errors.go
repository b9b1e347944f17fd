package provider

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StageValidate = "validate"
	StageFetch    = "fetch"
	StageParse    = "parse"
)

const (
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeFetchFailed  = "fetch_failed"
	ErrCodeParseFailed  = "parse_failed"
	ErrCodeNoResults    = "no_results"
)

// ErrEmptyBody 表示站点返回了 2xx 但 body 为空。
var ErrEmptyBody = errors.New("empty body")

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}

// Error 是批次级（整次搜索失败）的可追溯错误。
//
// Error() 面向日志（英文/内部细节），Message() 面向用户（本地化、可操作）。
type Error struct {
	Provider string // provider name（小写）
	Stage    string // validate / fetch / parse
	Code     string // ErrCode*
	Hint     string // 本地化的原因描述，可为空
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s code=%s: %v", e.Provider, e.Stage, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message 返回给用户展示的错误文案。
func (e *Error) Message() string {
	hint := strings.TrimSpace(e.Hint)
	if hint == "" {
		hint = defaultHint(e.Code)
	}
	return "搜索失败：" + hint
}

func defaultHint(code string) string {
	switch code {
	case ErrCodeInvalidInput:
		return "请输入有效的番号（如DLDSS-408）"
	case ErrCodeFetchFailed:
		return "网络请求失败，可能已被风控，请更换ip地址后重试"
	case ErrCodeParseFailed:
		return "页面解析失败：页面结构可能已变化"
	case ErrCodeNoResults:
		return "未找到搜索结果：可能番号错误"
	default:
		return "未知错误"
	}
}

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Message 返回 err 的用户文案；非 *Error 时回退为通用文案。
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return "搜索失败：" + err.Error()
}
