package dashboard

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-pmr/pkg/dashboard"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/renderers/html"
	"github.com/goliatone/go-pmr/pkg/renderers/jsonview"
	"github.com/goliatone/go-pmr/pkg/renderers/pdf"
)

// Renderer names the component resolves from its registry.
const (
	RendererHTML = "html"
	RendererPDF  = "pdf"
	RendererJSON = "json"
)

// Component wraps a dashboard session with its HTTP configuration and
// routing helpers.
type Component struct {
	dash *dashboard.Dashboard
	opts Options
}

// New constructs a component for dash. Missing renderers are filled with the
// built-in HTML, PDF and JSON renderers.
func New(dash *dashboard.Dashboard, fns ...OptionFn) (*Component, error) {
	if dash == nil {
		return nil, fmt.Errorf("dashboard component: missing dashboard")
	}
	opts := NewOptions(fns...)
	registry, err := DefaultRenderers(opts.Renderers)
	if err != nil {
		return nil, err
	}
	opts.Renderers = registry
	return &Component{dash: dash, opts: opts}, nil
}

// DefaultRenderers registers the built-in renderers missing from registry.
// A nil registry starts empty.
func DefaultRenderers(registry *render.Registry) (*render.Registry, error) {
	if registry == nil {
		registry = render.NewRegistry()
	}
	if !registry.Has(RendererHTML) {
		renderer, err := html.New()
		if err != nil {
			return nil, fmt.Errorf("dashboard component: %w", err)
		}
		if err := registry.Register(renderer); err != nil {
			return nil, err
		}
	}
	if !registry.Has(RendererPDF) {
		if err := registry.Register(pdf.New()); err != nil {
			return nil, err
		}
	}
	if !registry.Has(RendererJSON) {
		if err := registry.Register(jsonview.New()); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Dashboard returns the wrapped session.
func (c *Component) Dashboard() *dashboard.Dashboard {
	return c.dash
}

// Handler returns the handler for every dashboard route under basePath.
func (c *Component) Handler(basePath string) http.Handler {
	return HandlerWithOptions(c.dash, basePath, c.opts)
}

// RegisterRoutes registers the component under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	return RegisterRoutesWithOptions(mux, c.dash, basePath, c.opts)
}
