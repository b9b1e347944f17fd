package app

import (
	"fmt"
	"log/slog"

	"github.com/John-Robertt/avsearch/internal/config"
	"github.com/John-Robertt/avsearch/internal/infra/httpx"
	"github.com/John-Robertt/avsearch/internal/provider"
	"github.com/John-Robertt/avsearch/internal/provider/javdb"
	"github.com/John-Robertt/avsearch/internal/widget"
)

// Build 按最终配置装配 widget：HTTP client → provider registry → 模块声明。
// obs 可为 nil（非交互场景不输出进度）。
func Build(eff config.EffectiveConfig, log *slog.Logger, obs provider.Observer) (*widget.Widget, error) {
	hc, err := httpx.NewClient(httpx.Options{
		ProxyURL:      eff.ProxyURL,
		Timeout:       eff.Timeout,
		RatePerSecond: eff.RatePerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("proxy.url 无效：%w", err)
	}

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	reg, err := provider.NewRegistry(javdb.Provider{
		BaseURL:  eff.BaseURL,
		Client:   httpx.Client{HTTP: hc},
		Log:      log.With("provider", "javdb"),
		Observer: obs,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 provider registry 失败：%w", err)
	}

	site := eff.BaseURL
	if site == "" {
		site = javdb.DefaultBaseURL
	}
	return widget.New(widget.JavDB(site), reg)
}
