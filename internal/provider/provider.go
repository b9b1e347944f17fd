package provider

import (
	"context"
	"time"

	"github.com/John-Robertt/avsearch/internal/domain"
)

// Provider 把“站点变化”限制在 provider 包内部；widget 与宿主只依赖统一接口与稳定的 MovieEntry。
//
// 约束：
// - Search 不做缓存、不做重试（缓存由宿主按 cacheDuration 负责）
// - 详情页严格串行抓取，按列表文档顺序返回
// - 单条失败只丢弃该条；批次级失败返回 *Error
type Provider interface {
	Name() string
	Search(ctx context.Context, params domain.Params) ([]domain.MovieEntry, error)
}

// Observer 用于把搜索进度从 provider 中解耦出来（CLI 决定如何展示）。
// Provider 只发事件，不做任何输出。
type Observer interface {
	// OnSearch 在搜索页解析完成、开始逐条抓取详情之前调用。
	OnSearch(query domain.Query, searchURL string, items int)
	// OnItemDone 在单条列表项处理结束时调用；err 非 nil 表示该条被跳过。
	OnItemDone(idx, total int, link string, entry domain.MovieEntry, err error, dur time.Duration)
}
