package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// ErrCodeNotFound 表示显式指定的配置文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName 是工作目录下的默认配置文件名（可选）。
	FileName = "avsearch.json"

	DefaultBaseURL        = "https://javdb.com"
	DefaultTimeoutSeconds = 20
	DefaultListen         = "127.0.0.1:8787"
	DefaultLogLevel       = "info"

	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 28
)

// CLIArgs 是 CLI 可覆盖的字段；空串表示未指定。
type CLIArgs struct {
	ConfigPath string
	BaseURL    string
	ProxyURL   string
	Listen     string
	LogLevel   string
}

// FileConfig 对应 avsearch.json 的解析结构。
type FileConfig struct {
	BaseURL        string      `mapstructure:"base_url"`
	Proxy          ProxyConfig `mapstructure:"proxy"`
	TimeoutSeconds int         `mapstructure:"timeout_seconds"`
	RatePerSecond  float64     `mapstructure:"rate_per_second"`
	Listen         string      `mapstructure:"listen"`
	Log            LogConfig   `mapstructure:"log"`
}

type ProxyConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// EffectiveConfig 是合并并规范化后的最终配置，实现层直接消费。
type EffectiveConfig struct {
	// BaseURL 允许在 javdb.com 不可达/被阻断时切换到可用镜像域名。
	BaseURL string

	ProxyURL      string
	Timeout       time.Duration
	RatePerSecond float64
	Listen        string

	LogLevel      slog.Level
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取配置文件并与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 指定 ConfigPath：文件必须存在
// 2) 否则读取 <cwd>/avsearch.json（可选，不存在则全部使用默认值）
//
// 覆盖优先级：CLI > 配置文件 > 内置默认。
func LoadEffective(fsys afero.Fs, cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cfgPath := filepath.Join(cwd, FileName)
	required := false
	if p := strings.TrimSpace(cli.ConfigPath); p != "" {
		cfgPath = p
		if !filepath.IsAbs(cfgPath) {
			cfgPath = filepath.Join(cwd, cfgPath)
		}
		required = true
	}

	fc, exists, err := readFileConfig(fsys, cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if required && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	return merge(cli, fc, cfgPath)
}

func merge(cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	baseURL := pick(cli.BaseURL, fc.BaseURL, DefaultBaseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid(fmt.Errorf("base_url 必须是 http/https 绝对地址：%q", baseURL))
	}
	baseURL = strings.TrimRight(baseURL, "/")

	proxyURL := pick(cli.ProxyURL, fc.Proxy.URL, "")
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return invalid(fmt.Errorf("proxy.url 无效：%w", err))
		}
	}

	timeout := fc.TimeoutSeconds
	if timeout <= 0 {
		timeout = DefaultTimeoutSeconds
	}
	// 上限截断：单页抓取超过 2 分钟基本意味着被挂起。
	if timeout > 120 {
		timeout = 120
	}

	if fc.RatePerSecond < 0 {
		return invalid(fmt.Errorf("rate_per_second 不能为负数：%v", fc.RatePerSecond))
	}

	var level slog.Level
	levelText := pick(cli.LogLevel, fc.Log.Level, DefaultLogLevel)
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return invalid(fmt.Errorf("log.level 无效：%q", levelText))
	}

	return EffectiveConfig{
		BaseURL:       baseURL,
		ProxyURL:      proxyURL,
		Timeout:       time.Duration(timeout) * time.Second,
		RatePerSecond: fc.RatePerSecond,
		Listen:        pick(cli.Listen, fc.Listen, DefaultListen),
		LogLevel:      level,
		LogFile:       strings.TrimSpace(fc.Log.File),
		LogMaxSizeMB:  orDefault(fc.Log.MaxSizeMB, defaultLogMaxSizeMB),
		LogMaxBackups: orDefault(fc.Log.MaxBackups, defaultLogMaxBackups),
		LogMaxAgeDays: orDefault(fc.Log.MaxAgeDays, defaultLogMaxAgeDays),
	}, nil
}

// pick 返回第一个非空（trim 后）的值。
func pick(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// readFileConfig 通过 viper 读取 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(fsys afero.Fs, path string) (fc FileConfig, exists bool, err error) {
	exists, err = afero.Exists(fsys, path)
	if err != nil || !exists {
		return FileConfig{}, false, err
	}

	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return FileConfig{}, true, err
	}
	if err := v.Unmarshal(&fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
