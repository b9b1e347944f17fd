package widget

import (
	"context"
	"errors"
	"fmt"

	"github.com/John-Robertt/avsearch/internal/domain"
	"github.com/John-Robertt/avsearch/internal/provider"
)

// ErrUnknownFunction 表示宿主调用了 metadata 中未声明的函数。
var ErrUnknownFunction = errors.New("unknown function")

// Widget 把模块声明与 provider 绑定，是宿主唯一的调用入口。
type Widget struct {
	meta Metadata
	reg  provider.Registry
}

// New 校验每个模块都能找到对应的 provider。
func New(meta Metadata, reg provider.Registry) (*Widget, error) {
	seen := make(map[string]struct{}, len(meta.Modules))
	for _, m := range meta.Modules {
		if m.FunctionName == "" {
			return nil, fmt.Errorf("module %q 缺少 functionName", m.Title)
		}
		if _, ok := seen[m.FunctionName]; ok {
			return nil, fmt.Errorf("重复的 functionName：%q", m.FunctionName)
		}
		seen[m.FunctionName] = struct{}{}
		if _, ok := reg.Get(m.Provider); !ok {
			return nil, fmt.Errorf("module %q 的 provider 未注册：%q", m.FunctionName, m.Provider)
		}
	}
	return &Widget{meta: meta, reg: reg}, nil
}

func (w *Widget) Metadata() Metadata { return w.meta }

// Module 按函数名查找模块声明。
func (w *Widget) Module(functionName string) (Module, bool) {
	for _, m := range w.meta.Modules {
		if m.FunctionName == functionName {
			return m, true
		}
	}
	return Module{}, false
}

// Call 调用 functionName 对应的模块。
func (w *Widget) Call(ctx context.Context, functionName string, params domain.Params) ([]domain.MovieEntry, error) {
	m, ok := w.Module(functionName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, functionName)
	}
	p, ok := w.reg.Get(m.Provider)
	if !ok {
		return nil, fmt.Errorf("provider 未注册：%q", m.Provider)
	}
	return p.Search(ctx, params)
}
