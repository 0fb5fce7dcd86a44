package html

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-pmr/pkg/derive"
	rendertemplate "github.com/goliatone/go-pmr/pkg/render/template"
	gotemplate "github.com/goliatone/go-pmr/pkg/render/template/gotemplate"
	"github.com/goliatone/go-pmr/pkg/slides"
)

// pageFilters are available to bundled and overriding templates:
// currency turns "2500000" into "$2,500,000", statusclass turns "Delayed"
// into "draft".
var pageFilters = map[string]func(input any, param any) (any, error){
	"currency":    filterCurrency,
	"statusclass": filterStatusClass,
}

// registerFilters installs pageFilters on renderer. A filter another engine
// already registered counts as installed.
func registerFilters(renderer rendertemplate.TemplateRenderer) error {
	for name, fn := range pageFilters {
		if err := renderer.RegisterFilter(name, fn); err != nil && !filterTaken(err) {
			return fmt.Errorf("html renderer: register filter %q: %w", name, err)
		}
	}
	return nil
}

// filterTaken recognises the duplicate-filter errors of the pongo2 adapter
// and of go-template, which reports it as plain text.
func filterTaken(err error) bool {
	return errors.Is(err, gotemplate.ErrFilterExists) || strings.Contains(err.Error(), "already exists")
}

func filterCurrency(input any, _ any) (any, error) {
	switch v := input.(type) {
	case nil:
		return "", nil
	case float64:
		return slides.FormatCurrency(v), nil
	case float32:
		return slides.FormatCurrency(float64(v)), nil
	case int:
		return slides.FormatCurrency(float64(v)), nil
	case int64:
		return slides.FormatCurrency(float64(v)), nil
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return "", nil
		}
		return slides.FormatCurrency(derive.ParseNumberOr0(raw)), nil
	default:
		return slides.FormatCurrency(derive.ParseNumberOr0(fmt.Sprint(v))), nil
	}
}

func filterStatusClass(input any, _ any) (any, error) {
	if input == nil {
		return slides.StatusClass(""), nil
	}
	return slides.StatusClass(fmt.Sprint(input)), nil
}
