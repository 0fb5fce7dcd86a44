package dashboard

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-pmr/pkg/backend"
	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/notify"
	"github.com/goliatone/go-pmr/pkg/store"
	"github.com/goliatone/go-pmr/pkg/surface"
)

// Option customises a Dashboard.
type Option func(*config)

type config struct {
	logger      *zap.Logger
	backend     backend.Client
	engine      *derive.Engine
	deriveOpts  []derive.Option
	notifyOpts  []notify.Option
	storeOpts   []store.Option
	surface     *surface.Memory
	demo        *model.Demo
	modalOnBoot bool
}

func defaultConfig() config {
	return config{
		logger:      zap.NewNop(),
		backend:     backend.Stub{},
		modalOnBoot: true,
	}
}

// WithLogger sets the logger shared with the store.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithBackend replaces the stub backend.
func WithBackend(client backend.Client) Option {
	return func(cfg *config) {
		if client != nil {
			cfg.backend = client
		}
	}
}

// WithEngine sets a prebuilt derivation engine. It wins over WithDeriveOptions.
func WithEngine(engine *derive.Engine) Option {
	return func(cfg *config) {
		cfg.engine = engine
	}
}

// WithDeriveOptions configures the default derivation engine.
func WithDeriveOptions(options ...derive.Option) Option {
	return func(cfg *config) {
		cfg.deriveOpts = append(cfg.deriveOpts, options...)
	}
}

// WithNotifyOptions configures the notification channel.
func WithNotifyOptions(options ...notify.Option) Option {
	return func(cfg *config) {
		cfg.notifyOpts = append(cfg.notifyOpts, options...)
	}
}

// WithStoreOptions passes extra options to the form store (clock, ids).
func WithStoreOptions(options ...store.Option) Option {
	return func(cfg *config) {
		cfg.storeOpts = append(cfg.storeOpts, options...)
	}
}

// WithSurface mirrors state into an existing surface. Every element name the
// dashboard writes is registered on it.
func WithSurface(mem *surface.Memory) Option {
	return func(cfg *config) {
		cfg.surface = mem
	}
}

// WithDemo replaces the embedded demo data loaded by Boot.
func WithDemo(demo model.Demo) Option {
	return func(cfg *config) {
		cfg.demo = &demo
	}
}

// WithModalOnBoot controls whether Boot opens the portfolio modal.
func WithModalOnBoot(open bool) Option {
	return func(cfg *config) {
		cfg.modalOnBoot = open
	}
}
