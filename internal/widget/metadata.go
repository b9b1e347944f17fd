package widget

// Metadata 是宿主读取的模块声明（JSON 字段名即宿主契约）。
type Metadata struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Author          string   `json:"author"`
	Site            string   `json:"site"`
	Version         string   `json:"version"`
	RequiredVersion string   `json:"requiredVersion"`
	Modules         []Module `json:"modules"`
}

// Module 描述一个可调用的函数入口。
type Module struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	RequiresWebView bool    `json:"requiresWebView"`
	FunctionName    string  `json:"functionName"`
	SectionMode     bool    `json:"sectionMode"`
	CacheDuration   int     `json:"cacheDuration"` // 秒；缓存由宿主负责
	Params          []Param `json:"params"`

	// Provider 是处理该函数的 provider name（不对宿主暴露）。
	Provider string `json:"-"`
}

type Param struct {
	Name         string        `json:"name"`
	Title        string        `json:"title"`
	Type         string        `json:"type"`
	Description  string        `json:"description"`
	Value        string        `json:"value"`
	Placeholders []Placeholder `json:"placeholders"`
}

type Placeholder struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

const (
	FuncSearchJavDB = "searchJavDB"

	Version         = "1.0.0"
	RequiredVersion = "0.0.1"
)

// JavDB 返回 JavDB 搜索模块的声明；site 为实际使用的站点 origin。
func JavDB(site string) Metadata {
	return Metadata{
		ID:              "javdb_search_enhanced",
		Title:           "JavDB",
		Description:     "获取 JavDB 搜索",
		Author:          "",
		Site:            site,
		Version:         Version,
		RequiredVersion: RequiredVersion,
		Modules: []Module{{
			Title:           "JavDB 搜索",
			Description:     "输入关键词•番号搜索影片",
			RequiresWebView: false,
			FunctionName:    FuncSearchJavDB,
			SectionMode:     false,
			CacheDuration:   300,
			Provider:        "javdb",
			Params: []Param{{
				Name:        "code",
				Title:       "关键词•番号",
				Type:        "input",
				Description: "输入番号或者关键词(如:DLDSS-408或者楪カレン)",
				Value:       "",
				Placeholders: []Placeholder{
					{Title: "示例番号", Value: "DLDSS-408"},
					{Title: "示例关键词", Value: "楪カレン"},
				},
			}},
		}},
	}
}
