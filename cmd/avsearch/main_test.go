package main

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/avsearch/internal/config"
	"github.com/John-Robertt/avsearch/internal/domain"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("avsearch"), kong.Exit(func(int) { t.Fatalf("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestCLI_ParseSearch(t *testing.T) {
	cli, ctx := parseCLI(t, "--base-url", "https://javdb565.com", "--proxy", "http://127.0.0.1:7890", "search", "DLDSS-408")
	assert.Equal(t, "search <code>", ctx.Command())
	assert.Equal(t, "DLDSS-408", cli.Search.Code)
	assert.Equal(t, "https://javdb565.com", cli.BaseURL)
	assert.Equal(t, "http://127.0.0.1:7890", cli.Proxy)
}

func TestCLI_ParseServe(t *testing.T) {
	cli, ctx := parseCLI(t, "--log-level", "debug", "serve", "--listen", ":9000")
	assert.Equal(t, "serve", ctx.Command())
	assert.Equal(t, ":9000", cli.Serve.Listen)
	assert.Equal(t, "debug", cli.LogLevel)
}

func TestWriteEntries_AlwaysArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEntries(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, writeEntries(&buf, []domain.MovieEntry{{ID: "/v/1", Type: "url"}}))
	assert.Contains(t, buf.String(), `"id":"/v/1"`)
}

func TestNewLogger_WritesToFileAndStderr(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "avsearch.log")

	log, closer := newLogger(&buf, config.EffectiveConfig{
		LogLevel:      slog.LevelInfo,
		LogFile:       logFile,
		LogMaxSizeMB:  1,
		LogMaxBackups: 1,
		LogMaxAgeDays: 1,
	})
	log.Info("hello", "k", "v")
	log.Debug("hidden")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "hidden")
	assert.FileExists(t, logFile)
}
