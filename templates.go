package pmr

import (
	"io/fs"

	"github.com/goliatone/go-pmr/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// EmbeddedAssets exposes the stylesheet served under /assets.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(pmr.EmbeddedAssets()),
//	  ),
//	)
func EmbeddedAssets() fs.FS {
	return html.AssetsFS()
}
