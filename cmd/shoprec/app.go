package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/shoprec/cache"
	"github.com/rushteam/shoprec/config"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/engine"
	"github.com/rushteam/shoprec/pkg/logger"
	"github.com/rushteam/shoprec/store"
)

// options 是命令行覆盖项，非空时覆盖配置文件中的同名字段。
type options struct {
	configPath string
	fixture    string
	redisAddr  string
	sqliteDSN  string
	limit      int

	// logOut 日志输出，标准输出留给 JSON 结果
	logOut io.Writer
}

// app 持有一次命令执行所需的全部依赖。
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	engine *engine.Engine

	closers []func() error
}

func newApp(ctx context.Context, opts *options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.fixture != "" {
		cfg.Fixture = opts.fixture
	}
	if opts.redisAddr != "" {
		cfg.Redis.Addr = opts.redisAddr
	}
	if opts.sqliteDSN != "" {
		cfg.SQLite.DSN = opts.sqliteDSN
	}

	cfg.Log.Out = opts.logOut
	a := &app{cfg: cfg, log: logger.New(cfg.Log)}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context) error {
	var (
		products     core.ProductStore
		interactions core.InteractionStore
		writer       store.ProductWriter
	)
	if dsn := a.cfg.SQLite.DSN; dsn != "" {
		cat, err := store.OpenSQLCatalog(ctx, dsn)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, cat.Close)
		products, interactions, writer = cat, cat.Interactions(), cat
		a.log.Info().Str("dsn", dsn).Msg("using sqlite catalog")
	} else {
		cat := store.NewMemoryCatalog()
		products, interactions, writer = cat, cat.Interactions(), cat
	}

	if path := a.cfg.Fixture; path != "" {
		fx, err := store.LoadFixture(path)
		if err != nil {
			return err
		}
		if err := fx.Seed(ctx, writer, interactions, time.Now()); err != nil {
			return err
		}
		a.log.Info().
			Str("fixture", path).
			Int("products", len(fx.Products)).
			Int("interactions", len(fx.Interactions)).
			Msg("catalog seeded")
	}

	var backend core.Store
	if addr := a.cfg.Redis.Addr; addr != "" {
		ro := store.DefaultRedisOptions(addr, a.cfg.Redis.DB)
		ro.Password = a.cfg.Redis.Password
		backend = store.NewRedisStoreWithOptions(ro)
	} else {
		backend = store.NewMemoryStore()
	}
	a.closers = append(a.closers, backend.Close)

	eng, err := engine.New(&a.cfg.Engine, products, interactions,
		engine.WithCache(cache.New(backend, &a.cfg.Engine, a.log)),
		engine.WithLogger(a.log),
	)
	if err != nil {
		return err
	}
	a.engine = eng
	return nil
}

// Close 按创建的逆序释放资源。
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
