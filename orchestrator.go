// Package pmr turns Program Management Review drafts into dashboards and slide
// decks. The root package is a facade over pkg/dashboard and the renderers for
// callers that only need one-shot generation.
package pmr

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-pmr/pkg/dashboard"
	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/renderers/html"
	"github.com/goliatone/go-pmr/pkg/renderers/jsonview"
	"github.com/goliatone/go-pmr/pkg/renderers/pdf"
	"github.com/goliatone/go-pmr/pkg/theming"
)

// Version of the pmr module and CLI.
const Version = "0.4.0"

// RenderOptions aliases render.RenderOptions for callers of the facade.
type RenderOptions = render.RenderOptions

// View aliases render.View.
type View = render.View

// Request describes one generation: the draft to load, the page to draw and
// the renderer to draw it with.
type Request struct {
	State        model.FormState
	Page         render.Page
	Renderer     string
	ThemeName    string
	ThemeVariant string
	BasePath     string
	Title        string
}

// Option customises a Generator.
type Option func(*Generator)

// Generator renders drafts through a throwaway dashboard session so the
// output matches what the server would draw for the same input.
type Generator struct {
	registry   *render.Registry
	selector   theme.ThemeSelector
	logger     *zap.Logger
	deriveOpts []derive.Option
}

// WithRegistry replaces the renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(g *Generator) {
		if registry != nil {
			g.registry = registry
		}
	}
}

// WithThemeSelector resolves Request.ThemeName/ThemeVariant through selector.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(g *Generator) {
		g.selector = selector
	}
}

// WithLogger sets the logger passed to the session.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithDeriveOptions configures the derivation engine of each session.
func WithDeriveOptions(options ...derive.Option) Option {
	return func(g *Generator) {
		g.deriveOpts = append(g.deriveOpts, options...)
	}
}

// NewGenerator builds a generator with the HTML, PDF and JSON renderers.
func NewGenerator(options ...Option) (*Generator, error) {
	g := &Generator{logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}
	if g.registry == nil {
		registry, err := DefaultRegistry()
		if err != nil {
			return nil, err
		}
		g.registry = registry
	}
	return g, nil
}

// DefaultRegistry returns a registry holding the html, pdf and json renderers.
func DefaultRegistry() (*render.Registry, error) {
	registry := render.NewRegistry()
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, fmt.Errorf("pmr: %w", err)
	}
	for _, renderer := range []render.Renderer{htmlRenderer, pdf.New(), jsonview.New(jsonview.WithIndent("  "))} {
		if err := registry.Register(renderer); err != nil {
			return nil, fmt.Errorf("pmr: %w", err)
		}
	}
	return registry, nil
}

// Registry exposes the renderers.
func (g *Generator) Registry() *render.Registry {
	return g.registry
}

// Generate loads req.State, generates slides when the slides page is asked
// for and renders the page.
func (g *Generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if req.Renderer == "" {
		return nil, errors.New("pmr: renderer name is required")
	}
	renderer, err := g.registry.Lookup(req.Renderer)
	if err != nil {
		return nil, fmt.Errorf("pmr: %w", err)
	}

	view, err := g.View(ctx, req.State, req.Page)
	if err != nil {
		return nil, err
	}

	opts := RenderOptions{BasePath: req.BasePath, Title: req.Title}
	if g.selector != nil {
		cfg, err := theming.Resolve(g.selector, req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, fmt.Errorf("pmr: resolve theme: %w", err)
		}
		opts.Theme = cfg
	}

	out, err := renderer.Render(ctx, view, opts)
	if err != nil {
		return nil, fmt.Errorf("pmr: render %s: %w", req.Renderer, err)
	}
	return out, nil
}

// View runs state through a session and captures the requested page. The
// slides page always carries a freshly generated deck.
func (g *Generator) View(ctx context.Context, state model.FormState, page render.Page) (View, error) {
	session, err := dashboard.New(
		dashboard.WithLogger(g.logger),
		dashboard.WithDeriveOptions(g.deriveOpts...),
		dashboard.WithDemo(model.Demo{State: state}),
		dashboard.WithModalOnBoot(false),
	)
	if err != nil {
		return View{}, fmt.Errorf("pmr: %w", err)
	}
	defer session.Close()

	if err := session.Boot(ctx); err != nil {
		return View{}, fmt.Errorf("pmr: %w", err)
	}
	if page == render.PageSlides {
		session.GenerateSlides(ctx)
	}
	// One-shot renders carry no notification.
	session.Notifications().Dismiss()
	return session.View(page), nil
}

// NewDashboard exposes the dashboard constructor from the top-level module.
func NewDashboard(options ...dashboard.Option) (*dashboard.Dashboard, error) {
	return dashboard.New(options...)
}
