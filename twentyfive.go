package twentyfive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/twentyfive/internal/config"
	"github.com/aretw0/twentyfive/internal/logging"
	"github.com/aretw0/twentyfive/internal/metrics"
	"github.com/aretw0/twentyfive/pkg/adapters/file"
	loamstore "github.com/aretw0/twentyfive/pkg/adapters/loam"
	"github.com/aretw0/twentyfive/pkg/adapters/memory"
	"github.com/aretw0/twentyfive/pkg/adapters/process"
	redisstore "github.com/aretw0/twentyfive/pkg/adapters/redis"
	"github.com/aretw0/twentyfive/pkg/domain"
	"github.com/aretw0/twentyfive/pkg/persistence/middleware"
	"github.com/aretw0/twentyfive/pkg/ports"
	"github.com/aretw0/twentyfive/pkg/servicer"
	"github.com/aretw0/twentyfive/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// App is a fully wired list service.
type App struct {
	Config   config.Config
	Service  *servicer.Servicer
	Sessions *session.Manager
	Store    ports.StateStore
	Metrics  *metrics.Metrics
	Notifier *process.Notifier

	logger  *slog.Logger
	closers []io.Closer
}

type options struct {
	logger   *slog.Logger
	hooks    []domain.Hooks
	registry prometheus.Registerer
	store    ports.StateStore
}

// Option defines a functional option for configuring the App.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks registers extra lifecycle hooks, such as an SSE broadcaster.
func WithHooks(hooks domain.Hooks) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks)
	}
}

// WithMetrics registers Prometheus collectors on reg and records every operation.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithStore bypasses the configured backend.
func WithStore(store ports.StateStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// Open builds the store, the session manager and the servicer described by cfg.
func Open(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	app := &App{Config: cfg, logger: o.logger}

	store, locker, err := app.openStore(ctx, o.store)
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.Encryption.Key != "" {
		encryption, err := encryptionConfig(cfg.Encryption)
		if err != nil {
			app.Close()
			return nil, err
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(encryption))
	}
	app.Store = store

	sessionOpts := []session.Option{session.WithLogger(o.logger)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker), session.WithLockTTL(cfg.Lock.TTL))
	}
	app.Sessions = session.NewManager(store, sessionOpts...)

	svcOpts := []servicer.Option{
		servicer.WithCapacity(cfg.Capacity),
		servicer.WithLogger(o.logger),
	}
	if o.registry != nil {
		app.Metrics = metrics.New(o.registry)
		svcOpts = append(svcOpts, servicer.WithHooks(app.Metrics.Hooks()))
	}
	if cfg.Hooks.File != "" {
		commands, err := process.LoadCommands(cfg.Hooks.File)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Notifier = process.NewNotifier(commands,
			process.WithTimeout(cfg.Hooks.Timeout),
			process.WithLogger(o.logger),
		)
		svcOpts = append(svcOpts, servicer.WithHooks(app.Notifier.Hooks()))
	}
	for _, h := range o.hooks {
		svcOpts = append(svcOpts, servicer.WithHooks(h))
	}
	app.Service = servicer.New(app.Sessions, svcOpts...)

	o.logger.Debug("Service ready",
		"backend", cfg.Store.Backend,
		"capacity", cfg.Capacity,
		"encrypted", cfg.Encryption.Key != "",
		"locking", locker != nil,
		"hooks", app.Notifier.Len(),
	)
	return app, nil
}

func (a *App) openStore(ctx context.Context, injected ports.StateStore) (ports.StateStore, ports.DistributedLocker, error) {
	cfg := a.Config
	if injected != nil {
		return injected, nil, nil
	}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendFile:
		return file.New(cfg.Store.Path), nil, nil
	case config.BackendLoam:
		store, err := loamstore.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case config.BackendRedis:
		var redisOpts []redisstore.Option
		if cfg.Redis.TTL > 0 {
			redisOpts = append(redisOpts, redisstore.WithTTL(cfg.Redis.TTL))
		}
		if cfg.Redis.Prefix != "" {
			redisOpts = append(redisOpts, redisstore.WithPrefix(cfg.Redis.Prefix))
		}
		store := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redisOpts...)
		a.closers = append(a.closers, store)

		if err := store.Client().Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}

		var locker ports.DistributedLocker
		if cfg.Lock.Enabled {
			locker = redisstore.NewLocker(store.Client(), "twentyfive:")
		}
		return store, locker, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Store.Backend)
}

func encryptionConfig(cfg config.EncryptionConfig) (middleware.EncryptionConfig, error) {
	active, err := middleware.ParseKey(cfg.Key)
	if err != nil {
		return middleware.EncryptionConfig{}, err
	}
	out := middleware.EncryptionConfig{ActiveKey: active}
	for _, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return middleware.EncryptionConfig{}, fmt.Errorf("fallback key: %w", err)
		}
		out.FallbackKeys = append(out.FallbackKeys, key)
	}
	return out, nil
}

// Seed bootstraps the configured instance with the configured items.
func (a *App) Seed(ctx context.Context) error {
	return a.Service.Seed(ctx, a.Config.Instance, map[domain.Kind][]string{
		domain.KindGoals: a.Config.Seed.Goals,
		domain.KindTasks: a.Config.Seed.Tasks,
	})
}

// Close waits for running commit hooks and releases backend connections.
func (a *App) Close() error {
	if a.Notifier != nil {
		a.Notifier.Wait()
	}
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
