// Package jsonview renders a dashboard view, or the generated deck, as JSON
// for API clients.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-pmr/pkg/render"
)

type Option func(*Renderer)

// WithIndent pretty-prints the output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render encodes the whole view, or just the deck for the slides page.
func (r *Renderer) Render(_ context.Context, view render.View, _ render.RenderOptions) ([]byte, error) {
	var payload any = view
	if view.PageOrDefault() == render.PageSlides {
		if view.Deck == nil {
			return nil, fmt.Errorf("json renderer: slides page requires a generated deck")
		}
		payload = view.Deck
	}
	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(payload, "", r.indent)
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: encode: %w", err)
	}
	return out, nil
}
