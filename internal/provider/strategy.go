package provider

import "strings"

// Strategy 是回退链中的一个取值策略。
// Extract 返回空串表示“未命中”，交给下一个策略；返回 error 同样视为未命中，但会记录在 Attempt 中。
type Strategy struct {
	Name    string
	Extract func() (string, error)
}

// Attempt 记录一次策略尝试（用于解释为什么最终落到了某个回退分支）。
type Attempt struct {
	Strategy string
	Hit      bool
	Err      error
}

// FirstMatch 按顺序执行策略，返回第一个非空（trim 后）结果以及尝试链路。
// 全部未命中时返回空串。
func FirstMatch(strategies ...Strategy) (string, []Attempt) {
	attempts := make([]Attempt, 0, len(strategies))
	for _, s := range strategies {
		if s.Extract == nil {
			continue
		}
		v, err := s.Extract()
		v = strings.TrimSpace(v)
		if err == nil && v != "" {
			attempts = append(attempts, Attempt{Strategy: s.Name, Hit: true})
			return v, attempts
		}
		attempts = append(attempts, Attempt{Strategy: s.Name, Err: err})
	}
	return "", attempts
}

// Value 返回一个固定值策略（常用于已经在 DOM 上取到的值）。
func Value(name, v string) Strategy {
	return Strategy{Name: name, Extract: func() (string, error) { return v, nil }}
}
