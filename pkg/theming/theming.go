// Package theming resolves go-theme manifests into the renderer configuration
// consumed by the HTML, PDF and chart outputs.
package theming

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pmr/pkg/charts"
)

// Token names read by the renderers.
const (
	TokenBrand    = "brand"
	TokenSurface  = "surface"
	TokenText     = "text"
	TokenApproved = "status-approved"
	TokenPending  = "status-pending"
	TokenDraft    = "status-draft"
	TokenChart1   = "chart-1"
	TokenChart2   = "chart-2"
	TokenChart3   = "chart-3"
)

// Default theme and variant names.
const (
	DefaultTheme   = "pmr"
	DefaultVariant = "light"
)

// ErrThemeNotFound is returned when a theme name is not registered.
var ErrThemeNotFound = errors.New("theming: theme not found")

// DefaultManifest is the built-in theme with a light and a dark variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			TokenBrand:    "#1e3a8a",
			TokenSurface:  "#ffffff",
			TokenText:     "#111827",
			TokenApproved: "#10b981",
			TokenPending:  "#f59e0b",
			TokenDraft:    "#ef4444",
			TokenChart1:   "#3b82f6",
			TokenChart2:   "#10b981",
			TokenChart3:   "#f59e0b",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": "pmr.css",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					TokenSurface: "#111827",
					TokenText:    "#f9fafb",
					TokenBrand:   "#60a5fa",
				},
			},
		},
	}
}

// Selector implements theme.ThemeSelector over a fixed set of manifests.
// Unknown variants fall back to the base manifest.
type Selector struct {
	mu        sync.RWMutex
	manifests map[string]*theme.Manifest
	provider  theme.ThemeProvider
	fallback  string
}

var _ theme.ThemeSelector = (*Selector)(nil)

// NewSelector registers manifests. The first manifest becomes the fallback
// used when Select is called with an empty name.
func NewSelector(manifests ...*theme.Manifest) (*Selector, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	registry := theme.NewRegistry()
	s := &Selector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
			return nil, errors.New("theming: manifest name is required")
		}
		if _, exists := s.manifests[manifest.Name]; exists {
			return nil, fmt.Errorf("theming: theme %q already registered", manifest.Name)
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("theming: register %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
		if s.fallback == "" {
			s.fallback = manifest.Name
		}
	}
	s.provider = registry
	return s, nil
}

// Provider exposes the go-theme registry holding the same manifests.
func (s *Selector) Provider() theme.ThemeProvider {
	return s.provider
}

// Names lists registered themes.
func (s *Selector) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.manifests))
}

// Select implements theme.ThemeSelector.
func (s *Selector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.fallback
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	variant = strings.TrimSpace(variant)
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: manifest.Name, Variant: variant, Manifest: manifest}, nil
}

// Config flattens a selection into a renderer config: variant tokens override
// base tokens, every token becomes a "--name" CSS variable, and asset keys
// resolve against the manifest prefix.
func Config(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	tokens := maps.Clone(manifest.Tokens)
	partials := maps.Clone(manifest.Templates)
	assets := theme.Assets{Prefix: manifest.Assets.Prefix, Files: maps.Clone(manifest.Assets.Files)}

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = merge(tokens, variant.Tokens)
		partials = merge(partials, variant.Templates)
		assets.Files = merge(assets.Files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			assets.Prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := assets.Files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join("/", assets.Prefix, file)
		},
	}
}

// Resolve is Select followed by Config.
func Resolve(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return Config(selection), nil
}

// Palette returns the chart colours from the config tokens, falling back to
// the chart defaults for missing entries.
func Palette(cfg *theme.RendererConfig) charts.Palette {
	out := slices.Clone(charts.DefaultPalette)
	if cfg == nil {
		return out
	}
	for i, key := range []string{TokenChart1, TokenChart2, TokenChart3} {
		if value := cfg.Tokens[key]; value != "" && i < len(out) {
			out[i] = value
		}
	}
	return out
}

// Token returns a token value or fallback.
func Token(cfg *theme.RendererConfig, key, fallback string) string {
	if cfg == nil {
		return fallback
	}
	if value, ok := cfg.Tokens[key]; ok && value != "" {
		return value
	}
	return fallback
}

// CSSVarsStyle renders CSS variables as a sorted declaration list.
func CSSVarsStyle(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(cfg.CSSVars)) {
		fmt.Fprintf(&b, "%s: %s; ", key, cfg.CSSVars[key])
	}
	return strings.TrimSpace(b.String())
}

func merge(base, overlay map[string]string) map[string]string {
	if len(overlay) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(overlay))
	}
	for key, value := range overlay {
		base[key] = value
	}
	return base
}
