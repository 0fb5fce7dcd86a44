package theming_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/theming"
)

func TestSelectorFallsBackToBaseVariant(t *testing.T) {
	selector, err := theming.NewSelector()
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	selection, err := selector.Select("", "sepia")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selection.Theme != theming.DefaultTheme || selection.Variant != "" {
		t.Fatalf("unexpected selection %s/%s", selection.Theme, selection.Variant)
	}

	if _, err := selector.Select("acme", ""); !errors.Is(err, theming.ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
	if selector.Provider() == nil {
		t.Fatalf("expected go-theme provider")
	}
}

func TestConfigMergesVariantTokens(t *testing.T) {
	selector, err := theming.NewSelector()
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	cfg, err := theming.Resolve(selector, theming.DefaultTheme, "dark")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if cfg.Variant != "dark" {
		t.Fatalf("variant: want dark, got %q", cfg.Variant)
	}
	if got := cfg.Tokens[theming.TokenSurface]; got != "#111827" {
		t.Fatalf("surface token not overridden: %q", got)
	}
	if got := cfg.CSSVars["--"+theming.TokenApproved]; got != "#10b981" {
		t.Fatalf("css var missing base token: %q", got)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/pmr.css" {
		t.Fatalf("asset url: want /assets/pmr.css, got %q", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("unknown asset should resolve empty, got %q", got)
	}

	base := theming.DefaultManifest()
	if base.Tokens[theming.TokenSurface] != "#ffffff" {
		t.Fatalf("manifest mutated by Config")
	}
}

func TestPalette(t *testing.T) {
	if diff := cmp.Diff(charts.DefaultPalette, theming.Palette(nil)); diff != "" {
		t.Fatalf("nil palette mismatch (-want +got):\n%s", diff)
	}
	cfg := &theme.RendererConfig{Tokens: map[string]string{theming.TokenChart2: "#000000"}}
	want := charts.Palette{"#3b82f6", "#000000", "#f59e0b"}
	if diff := cmp.Diff(want, theming.Palette(cfg)); diff != "" {
		t.Fatalf("palette mismatch (-want +got):\n%s", diff)
	}
}

func TestCSSVarsStyle(t *testing.T) {
	cfg := &theme.RendererConfig{CSSVars: map[string]string{"--b": "2", "--a": "1"}}
	if got := theming.CSSVarsStyle(cfg); got != "--a: 1; --b: 2;" {
		t.Fatalf("unexpected style %q", got)
	}
}

func TestNewSelectorRejectsDuplicates(t *testing.T) {
	if _, err := theming.NewSelector(theming.DefaultManifest(), theming.DefaultManifest()); err == nil {
		t.Fatalf("expected duplicate theme error")
	}
}
