package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/humanlog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/John-Robertt/avsearch/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger 构造 CLI 的 logger：人类可读格式写到 w；配置了 log.file 时同时写入滚动日志文件。
func newLogger(w io.Writer, eff config.EffectiveConfig) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}
	out := w

	if eff.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(eff.LogFile), 0o755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   eff.LogFile,
				MaxSize:    eff.LogMaxSizeMB,
				MaxBackups: eff.LogMaxBackups,
				MaxAge:     eff.LogMaxAgeDays,
			}
			out = io.MultiWriter(w, fileWriter)
			closer = fileWriter
		}
	}

	handler := humanlog.NewHandler(out, &humanlog.Options{
		Level: eff.LogLevel,
	})
	return slog.New(handler), closer
}
