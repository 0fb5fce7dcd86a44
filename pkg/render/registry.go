package render

import (
	"errors"
	"fmt"
	"mime"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ErrNotRegistered is returned when no renderer answers to a name.
var ErrNotRegistered = errors.New("render: renderer not registered")

// Registry holds renderers in registration order. The dashboard component
// picks the output of each request through it, either by name or from the
// request's Accept header.
type Registry struct {
	mu      sync.RWMutex
	entries []Renderer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds renderers under their Name(). Names must be unique.
func (r *Registry) Register(renderers ...Renderer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, renderer := range renderers {
		if renderer == nil {
			return errors.New("render: renderer is required")
		}
		name := strings.TrimSpace(renderer.Name())
		if name == "" {
			return errors.New("render: renderer name is required")
		}
		if r.indexLocked(name) >= 0 {
			return fmt.Errorf("render: renderer %q already registered", name)
		}
		r.entries = append(r.entries, renderer)
	}
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(renderers ...Renderer) {
	if err := r.Register(renderers...); err != nil {
		panic(err)
	}
}

// Lookup resolves a renderer by name.
func (r *Registry) Lookup(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexLocked(name); i >= 0 {
		return r.entries[i], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexLocked(name) >= 0
}

// Names lists renderer names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, renderer := range r.entries {
		out[i] = renderer.Name()
	}
	return out
}

// Negotiate picks the renderer that best matches an Accept header. Media
// ranges are tried by descending quality; "type/*" matches the first renderer
// of that type. An empty header, "*/*" or no match yields fallback.
func (r *Registry) Negotiate(accept, fallback string) (Renderer, error) {
	r.mu.RLock()
	entries := slices.Clone(r.entries)
	r.mu.RUnlock()

	for _, mediaRange := range parseAccept(accept) {
		if mediaRange == "*/*" {
			break
		}
		for _, renderer := range entries {
			if matchesRange(renderer.ContentType(), mediaRange) {
				return renderer, nil
			}
		}
	}
	return r.Lookup(fallback)
}

func (r *Registry) indexLocked(name string) int {
	for i, renderer := range r.entries {
		if renderer.Name() == name {
			return i
		}
	}
	return -1
}

type acceptEntry struct {
	mediaRange string
	quality    float64
}

func parseAccept(header string) []string {
	var entries []acceptEntry
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mediaRange, params, err := mime.ParseMediaType(part)
		if err != nil {
			continue
		}
		quality := 1.0
		if q, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(q, 64); err == nil {
				quality = parsed
			}
		}
		if quality <= 0 {
			continue
		}
		entries = append(entries, acceptEntry{mediaRange: mediaRange, quality: quality})
	}
	slices.SortStableFunc(entries, func(a, b acceptEntry) int {
		switch {
		case a.quality > b.quality:
			return -1
		case a.quality < b.quality:
			return 1
		default:
			return 0
		}
	})
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.mediaRange
	}
	return out
}

func matchesRange(contentType, mediaRange string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	if prefix, ok := strings.CutSuffix(mediaRange, "/*"); ok {
		return strings.HasPrefix(mediaType, prefix+"/")
	}
	return mediaType == mediaRange
}
