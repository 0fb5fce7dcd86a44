package dashboard

import (
	"net/http"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/render"
)

type GuardFunc func(r *http.Request) error

// HiddenFunc returns hidden fields emitted in every form, e.g. a CSRF token.
type HiddenFunc func(r *http.Request) map[string]string

type Options struct {
	SearchParam  string
	LimitParam   string
	DefaultLimit int
	MaxLimit     int
	Guard        GuardFunc
	Hidden       HiddenFunc
	Title        string

	// Renderers must hold "html", "pdf" and "json". Nil builds the defaults.
	Renderers *render.Registry

	ThemeSelector theme.ThemeSelector
	ThemeName     string
	ThemeVariant  string

	ChartSize charts.Size
	Logger    *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		SearchParam:  "q",
		LimitParam:   "limit",
		DefaultLimit: 50,
		MaxLimit:     200,
		ChartSize:    charts.DefaultSize,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 200
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if opts.ChartSize.Width <= 0 || opts.ChartSize.Height <= 0 {
		opts.ChartSize = charts.DefaultSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxLimit = limit
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithHidden(hidden HiddenFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Hidden = hidden
	}
}

func WithTitle(title string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Title = title
	}
}

func WithRenderers(registry *render.Registry) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderers = registry
	}
}

// WithTheme selects the default theme. Requests may override it with the
// theme and variant query parameters.
func WithTheme(selector theme.ThemeSelector, name, variant string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ThemeSelector = selector
		o.ThemeName = name
		o.ThemeVariant = variant
	}
}

func WithChartSize(size charts.Size) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ChartSize = size
	}
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
