package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cwd = "/work"

func writeFile(t *testing.T, fsys afero.Fs, path, body string) {
	t.Helper()
	require.NoErrorf(t, afero.WriteFile(fsys, path, []byte(body), 0o644), "写入文件失败 %q", path)
}

func TestLoadEffective_NoFileUsesDefaults(t *testing.T) {
	eff, err := LoadEffective(afero.NewMemMapFs(), cwd, CLIArgs{})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, eff.BaseURL)
	assert.Empty(t, eff.ProxyURL)
	assert.Equal(t, 20*time.Second, eff.Timeout)
	assert.Zero(t, eff.RatePerSecond)
	assert.Equal(t, DefaultListen, eff.Listen)
	assert.Equal(t, slog.LevelInfo, eff.LogLevel)
	assert.Empty(t, eff.LogFile)
	assert.Equal(t, defaultLogMaxSizeMB, eff.LogMaxSizeMB)
}

func TestLoadEffective_FileValues(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(cwd, FileName), `{
		"base_url": "https://javdb565.com/",
		"proxy": {"url": "http://127.0.0.1:7890"},
		"timeout_seconds": 300,
		"rate_per_second": 0.5,
		"listen": ":9000",
		"log": {"level": "debug", "file": "/var/log/avsearch.log", "max_backups": 7}
	}`)

	eff, err := LoadEffective(fsys, cwd, CLIArgs{})
	require.NoError(t, err)

	assert.Equal(t, "https://javdb565.com", eff.BaseURL)
	assert.Equal(t, "http://127.0.0.1:7890", eff.ProxyURL)
	assert.Equal(t, 120*time.Second, eff.Timeout, "超时应被截断到上限")
	assert.Equal(t, 0.5, eff.RatePerSecond)
	assert.Equal(t, ":9000", eff.Listen)
	assert.Equal(t, slog.LevelDebug, eff.LogLevel)
	assert.Equal(t, "/var/log/avsearch.log", eff.LogFile)
	assert.Equal(t, 7, eff.LogMaxBackups)
	assert.Equal(t, defaultLogMaxAgeDays, eff.LogMaxAgeDays)
}

func TestLoadEffective_CLIOverridesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(cwd, FileName), `{"base_url":"https://a.test","log":{"level":"debug"}}`)

	eff, err := LoadEffective(fsys, cwd, CLIArgs{BaseURL: "https://b.test", LogLevel: "warn", Listen: ":1"})
	require.NoError(t, err)
	assert.Equal(t, "https://b.test", eff.BaseURL)
	assert.Equal(t, slog.LevelWarn, eff.LogLevel)
	assert.Equal(t, ":1", eff.Listen)
}

func TestLoadEffective_ExplicitPathMustExist(t *testing.T) {
	_, err := LoadEffective(afero.NewMemMapFs(), cwd, CLIArgs{ConfigPath: "custom.json"})
	assert.Equal(t, ErrCodeNotFound, Code(err), "err=%v", err)

	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(cwd, "custom.json"), `{"listen":":2"}`)
	eff, err := LoadEffective(fsys, cwd, CLIArgs{ConfigPath: "custom.json"})
	require.NoError(t, err)
	assert.Equal(t, ":2", eff.Listen)
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := map[string]string{
		"broken json":   `{`,
		"bad base url":  `{"base_url":"javdb.com"}`,
		"ftp base url":  `{"base_url":"ftp://javdb.com"}`,
		"bad proxy":     `{"proxy":{"url":"http://[::1"}}`,
		"negative rate": `{"rate_per_second":-1}`,
		"bad level":     `{"log":{"level":"loud"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, filepath.Join(cwd, FileName), body)

			_, err := LoadEffective(fsys, cwd, CLIArgs{})
			assert.Equal(t, ErrCodeInvalid, Code(err), "err=%v", err)
		})
	}
}
