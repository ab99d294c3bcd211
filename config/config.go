// Package config 加载 shoprec 的运行配置：默认值 → YAML 文件 → 环境变量，后者覆盖前者。
//
// 环境变量以 SHOPREC_ 为前缀，层级用双下划线分隔，例如：
//
//	SHOPREC_ENGINE__CACHE_TTL=10m       → engine.cache_ttl
//	SHOPREC_REDIS__ADDR=127.0.0.1:6379  → redis.addr
//	SHOPREC_ENGINE__BLOCKLIST=p1,p2     → engine.blocklist（逗号分隔）
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/logger"
)

const (
	EnvPrefix = "SHOPREC_"

	// PathEnvVar 未显式指定配置文件时从这个环境变量读取路径
	PathEnvVar = "SHOPREC_CONFIG"
)

// Config 是进程级配置。
type Config struct {
	Engine core.Config   `koanf:"engine"`
	Log    logger.Config `koanf:"log"`
	Redis  RedisConfig   `koanf:"redis"`
	SQLite SQLiteConfig  `koanf:"sqlite"`

	// Fixture 启动时用于填充商品目录的 YAML 文件，可选
	Fixture string `koanf:"fixture"`
}

// RedisConfig 缓存后端；Addr 为空时使用进程内缓存。
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// SQLiteConfig 商品/行为存储；DSN 为空时使用内存目录。
type SQLiteConfig struct {
	DSN string `koanf:"dsn"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Engine: *core.DefaultConfig(),
		Log: logger.Config{
			Level:   "info",
			Format:  "json",
			AppName: "shoprec",
		},
	}
}

// 环境变量只能是字符串，这些路径按逗号拆成列表
var sliceKeys = []string{
	"engine.blocklist",
	"engine.trending_types",
}

// Load 按 默认值 → 文件 → 环境变量 加载配置并校验。
// path 为空时读取 SHOPREC_CONFIG；仍为空则只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	splitSlices(k)

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Engine.InteractionWeights = mergeWeights(cfg.Engine.InteractionWeights)
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey SHOPREC_ENGINE__CACHE_TTL → engine.cache_ttl
func envKey(key string) string {
	if key == PathEnvVar {
		// 返回空字符串即忽略该变量
		return ""
	}
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

func splitSlices(k *koanf.Koanf) {
	for _, path := range sliceKeys {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		_ = k.Set(path, parts)
	}
}

// mergeWeights 把加载到的行为权重覆盖到默认权重表上。
// 默认值作为一个整体 map 加载，文件或环境变量中出现 interaction_weights 时会整体替换它，
// 只写了部分类型时其余类型必须保持默认值。
func mergeWeights(loaded map[core.InteractionType]float64) map[core.InteractionType]float64 {
	out := core.DefaultInteractionWeights()
	for t, w := range loaded {
		if canon, ok := core.ParseInteractionType(string(t)); ok {
			t = canon
		}
		out[t] = w
	}
	return out
}
