package render

import (
	"context"
)

// Renderer converts a dashboard View into a byte representation (HTML, PDF,
// JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}
