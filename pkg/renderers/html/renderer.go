// Package html renders the dashboard and the slide deck as server-side HTML
// pages using pongo2 templates.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-pmr/pkg/render"
	rendertemplate "github.com/goliatone/go-pmr/pkg/render/template"
	gotemplate "github.com/goliatone/go-pmr/pkg/render/template/gotemplate"
)

// Template paths inside the bundle, without extension.
const (
	TemplateDashboard = "templates/dashboard"
	TemplateSlides    = "templates/slides"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	useGoTemplate    bool
	goTemplateOpts   []gotemplatepkg.Option
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. A template found
// there replaces the bundled one of the same name; the rest still come from
// the bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithGoTemplate renders through a go-template engine instead of the built-in
// pongo2 adapter. The engine reads the same bundle, with WithTemplatesDir
// overrides on top; opts are applied after the bundle and may add filters or
// global data.
func WithGoTemplate(opts ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.useGoTemplate = true
		cfg.goTemplateOpts = append(cfg.goTemplateOpts, opts...)
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	switch {
	case renderer != nil:
	case cfg.useGoTemplate:
		files := cfg.templateFS
		if cfg.templatesDir != "" {
			if _, err := os.Stat(cfg.templatesDir); err != nil {
				return nil, fmt.Errorf("html renderer: templates dir: %w", err)
			}
			files = gotemplate.Overlay(os.DirFS(cfg.templatesDir), files)
		}
		engineOpts := append([]gotemplatepkg.Option{
			gotemplatepkg.WithFS(files),
			gotemplatepkg.WithExtension(".tpl"),
		}, cfg.goTemplateOpts...)
		engine, err := gotemplatepkg.NewRenderer(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure go-template engine: %w", err)
		}
		renderer = engine
	default:
		engineOpts := []gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
			gotemplate.WithSetName("pmr-html"),
		}
		if cfg.templatesDir != "" {
			engineOpts = append(engineOpts, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	if err := registerFilters(renderer); err != nil {
		return nil, err
	}

	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the dashboard page, or the slides page when the view asks for
// it and carries a deck.
func (r *Renderer) Render(_ context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	name := TemplateDashboard
	if view.PageOrDefault() == render.PageSlides {
		if view.Deck == nil {
			return nil, fmt.Errorf("html renderer: slides page requires a generated deck")
		}
		name = TemplateSlides
	}

	result, err := r.templates.RenderTemplate(name, map[string]any{
		"page": buildPage(view, opts),
	})
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}
