package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/John-Robertt/avsearch/internal/app"
	"github.com/John-Robertt/avsearch/internal/config"
	"github.com/John-Robertt/avsearch/internal/domain"
	"github.com/John-Robertt/avsearch/internal/provider"
	"github.com/John-Robertt/avsearch/internal/server"
	"github.com/John-Robertt/avsearch/internal/widget"
)

// Globals 是所有子命令共享的参数；空值表示沿用配置文件/默认值。
type Globals struct {
	Config   string `help:"配置文件路径（默认读取当前目录下的 avsearch.json，可选）"`
	BaseURL  string `name:"base-url" help:"JavDB 站点 origin（可填镜像域名）"`
	Proxy    string `help:"HTTP 代理地址，例如 http://127.0.0.1:7890"`
	LogLevel string `name:"log-level" help:"日志级别：debug|info|warn|error"`
}

// CLI 是 avsearch 的命令结构。
type CLI struct {
	Globals

	Search SearchCmd `cmd:"" help:"按番号或关键词搜索，stdout 输出 JSON 数组"`
	Meta   MetaCmd   `cmd:"" help:"输出 widget 模块声明 JSON"`
	Serve  ServeCmd  `cmd:"" help:"启动本地 HTTP 调试服务"`
}

type SearchCmd struct {
	Code string `arg:"" help:"番号或关键词（如 DLDSS-408）"`
}

type MetaCmd struct{}

type ServeCmd struct {
	Listen string `help:"监听地址（默认 127.0.0.1:8787）"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("avsearch"),
		kong.Description("JavDB 搜索：抓取搜索页并逐条补全详情页中的播放地址。"),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env 是一次命令执行所需的全部依赖。
type env struct {
	eff    config.EffectiveConfig
	log    *slog.Logger
	closer io.Closer
}

func (g *Globals) load(listen string) (env, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return env{}, fmt.Errorf("读取当前目录失败：%w", err)
	}
	eff, err := config.LoadEffective(afero.NewOsFs(), cwd, config.CLIArgs{
		ConfigPath: g.Config,
		BaseURL:    g.BaseURL,
		ProxyURL:   g.Proxy,
		Listen:     listen,
		LogLevel:   g.LogLevel,
	})
	if err != nil {
		return env{}, err
	}
	log, closer := newLogger(os.Stderr, eff)
	return env{eff: eff, log: log, closer: closer}, nil
}

func (c *SearchCmd) Run(g *Globals) error {
	e, err := g.load("")
	if err != nil {
		_ = writeEntries(os.Stdout, nil)
		return err
	}
	defer e.closer.Close()

	var obs provider.Observer
	if w, interactive := pickProgressWriter(); interactive {
		obs = newProgressUI(w)
	}

	w, err := app.Build(e.eff, e.log, obs)
	if err != nil {
		_ = writeEntries(os.Stdout, nil)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entries, err := w.Call(ctx, widget.FuncSearchJavDB, domain.Params{Code: c.Code})
	// stdout 必须且仅输出一个 JSON 数组；失败时为空数组，原因写到 stderr。
	if werr := writeEntries(os.Stdout, entries); werr != nil {
		return werr
	}
	if err != nil {
		e.log.Debug("搜索失败", "error", err)
		return errors.New(provider.Message(err))
	}
	return nil
}

func (c *MetaCmd) Run(g *Globals) error {
	e, err := g.load("")
	if err != nil {
		return err
	}
	defer e.closer.Close()

	w, err := app.Build(e.eff, e.log, nil)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(w.Metadata())
}

func (c *ServeCmd) Run(g *Globals) error {
	e, err := g.load(c.Listen)
	if err != nil {
		return err
	}
	defer e.closer.Close()

	w, err := app.Build(e.eff, e.log, nil)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              e.eff.Listen,
		Handler:           server.NewRouter(&server.Handler{Widget: w, Log: e.log}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("HTTP 服务已启动", "listen", e.eff.Listen, "site", e.eff.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	e.log.Info("正在关闭 HTTP 服务")
	return srv.Shutdown(shutdownCtx)
}

// writeEntries 输出单个 JSON 数组；nil 输出为 []。
func writeEntries(w io.Writer, entries []domain.MovieEntry) error {
	if entries == nil {
		entries = []domain.MovieEntry{}
	}
	return json.NewEncoder(w).Encode(entries)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用，且只写 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	return nil, false
}
