// Package logger 基于 zerolog 构建结构化日志。
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config 是日志配置。
type Config struct {
	Level   string    `koanf:"level" yaml:"level"`   // debug / info / warn / error
	Format  string    `koanf:"format" yaml:"format"` // json / console
	AppName string    `koanf:"app_name" yaml:"app_name"`
	Out     io.Writer `koanf:"-" yaml:"-"`
}

// New 根据配置创建 zerolog.Logger，未知级别回退到 info。
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "02-01-2006 15:04:05.000",
			FormatLevel: func(i interface{}) string {
				s, _ := i.(string)
				return strings.ToUpper(s)
			},
		}
	}

	appName := cfg.AppName
	if appName == "" {
		appName = "shoprec"
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", appName).
		Logger()
}

// ParseLevel 解析日志级别。
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Nop 返回丢弃所有输出的 logger（测试使用）。
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
