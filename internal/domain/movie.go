package domain

const (
	// DefaultDuration 是详情页解析不到时长时的占位值。
	DefaultDuration = "00:00"
	// UnknownTitle 是列表项缺少标题时的占位值。
	UnknownTitle = "未知标题"

	EntryTypeURL   = "url"
	MediaTypeMovie = "movie"
)

// SearchResultItem 是从搜索结果页解析出的一条列表项（中间结构，映射为 MovieEntry 后丢弃）。
type SearchResultItem struct {
	Href  string // 相对路径，例如 /v/ab12C
	Title string
	Cover string
}

// MovieDetail 是详情页解析结果。
//
// 约束：
// - 任何解析失败都回退为安全默认值（DefaultDetail），允许部分字段为空
// - 单条详情失败不得中断整批搜索
type MovieDetail struct {
	VideoURL     string
	PreviewVideo string
	Duration     string
	Description  string
}

// DefaultDetail 返回全部字段为安全默认值的 MovieDetail。
func DefaultDetail() MovieDetail {
	return MovieDetail{Duration: DefaultDuration}
}

// MovieEntry 是返回给宿主的单条结果；JSON 字段名即宿主契约，不要随意改名。
type MovieEntry struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	BackdropPath string `json:"backdropPath"`
	PreviewURL   string `json:"previewUrl"`
	Link         string `json:"link"`
	MediaType    string `json:"mediaType"`
	DurationText string `json:"durationText"`
	Description  string `json:"description"`
	VideoURL     string `json:"videoUrl"`
}

// NewMovieEntry 把列表项与详情合并为一条 MovieEntry。
// link 必须是详情页绝对 URL。
func NewMovieEntry(item SearchResultItem, link string, d MovieDetail) MovieEntry {
	title := item.Title
	if title == "" {
		title = UnknownTitle
	}
	duration := d.Duration
	if duration == "" {
		duration = DefaultDuration
	}
	return MovieEntry{
		ID:           item.Href,
		Type:         EntryTypeURL,
		Title:        title + " - " + duration,
		BackdropPath: item.Cover,
		PreviewURL:   d.PreviewVideo,
		Link:         link,
		MediaType:    MediaTypeMovie,
		DurationText: duration,
		Description:  d.Description,
		VideoURL:     d.VideoURL,
	}
}
