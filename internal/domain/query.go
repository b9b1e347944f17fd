package domain

import (
	"strings"
)

// Params 是宿主调用模块时传入的参数（对应 metadata 中声明的 params）。
type Params struct {
	Code string `json:"code"`
}

// Query 是规范化后的搜索词（番号或关键词，例如 DLDSS-408 / 楪カレン）。
//
// 约束：非空；已经 trim + 大写。
type Query string

// InvalidInputError 表示宿主传入的参数不合法（在发起任何网络请求之前返回）。
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e == nil {
		return "invalid input"
	}
	if e.Reason == "" {
		return "invalid input: " + e.Field
	}
	return "invalid input: " + e.Field + ": " + e.Reason
}

// ParseQuery 校验并规范化搜索词：去掉首尾空白后转大写。
func ParseQuery(s string) (Query, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", &InvalidInputError{Field: "code", Reason: "请输入有效的番号（如DLDSS-408）"}
	}
	return Query(s), nil
}
