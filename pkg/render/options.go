package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions carry per-request presentation settings that are not part of
// the dashboard state.
type RenderOptions struct {
	// Theme is the resolved theme selection. Nil renders with built-in styles.
	Theme *theme.RendererConfig
	// BasePath prefixes every link and form action, e.g. "/pmr".
	BasePath string
	// Hidden fields are emitted in every action form, e.g. a CSRF token.
	Hidden map[string]string
	// Title overrides the document title.
	Title string
}
