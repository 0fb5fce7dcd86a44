package dashboard

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-pmr/pkg/dashboard"
)

// Mux is the minimal interface required to register a net/http handler.
// It is satisfied by *http.ServeMux.
type Mux interface {
	Handle(pattern string, handler http.Handler)
}

// MountPath returns the subtree pattern the component claims under basePath.
func MountPath(basePath string) string {
	base := normalizeBase(basePath)
	return base + "/"
}

// RegisterRoutesWithOptions registers the dashboard handler under basePath.
// Options are passed through NewOptions so defaults apply; the registry must
// already hold the renderers, see DefaultRenderers.
func RegisterRoutesWithOptions(mux Mux, dash *dashboard.Dashboard, basePath string, opts Options) (string, error) {
	if mux == nil {
		return "", fmt.Errorf("dashboard component: missing mux")
	}
	if dash == nil {
		return "", fmt.Errorf("dashboard component: missing dashboard")
	}
	opts = NewOptions(func(o *Options) { *o = opts })
	registry, err := DefaultRenderers(opts.Renderers)
	if err != nil {
		return "", err
	}
	opts.Renderers = registry
	pattern := MountPath(basePath)
	mux.Handle(pattern, HandlerWithOptions(dash, basePath, opts))
	return pattern, nil
}

// normalizeBase returns "" for the root or "/base" without a trailing slash.
func normalizeBase(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return strings.TrimRight(basePath, "/")
}
