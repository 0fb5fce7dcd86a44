// Package charts holds the chart handles the dashboard pushes data into and
// draws them as PNG images.
package charts

import (
	"slices"
	"sync"
)

// Type selects how a chart is drawn.
type Type string

const (
	TypeDoughnut Type = "doughnut"
	TypeBar      Type = "bar"
)

// Chart names.
const (
	NameFinancial = "financial"
	NameSlide     = "slide"
)

// Dataset is a label list and the matching numeric series.
type Dataset struct {
	Title  string    `json:"title,omitempty"`
	Type   Type      `json:"type"`
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

func (d Dataset) clone() Dataset {
	d.Labels = slices.Clone(d.Labels)
	d.Data = slices.Clone(d.Data)
	return d
}

// FinancialDefaults is the primary breakdown chart as first drawn.
func FinancialDefaults() Dataset {
	return Dataset{
		Title:  "Financial Breakdown",
		Type:   TypeDoughnut,
		Labels: []string{"Billed to Date", "Remaining Funds"},
		Data:   []float64{1750000, 750000},
	}
}

// SlideDefaults is the slide bar chart as first drawn.
func SlideDefaults() Dataset {
	return Dataset{
		Title:  "Financial Overview",
		Type:   TypeBar,
		Labels: []string{"Funded Value", "Billed to Date", "Remaining"},
		Data:   []float64{2500000, 1750000, 750000},
	}
}

// RedrawFunc is called after each redraw with the dataset drawn and the
// handle's revision.
type RedrawFunc func(name string, revision int, data Dataset)

// Handle is a live chart: callers replace its data array and request a
// redraw. It is safe for concurrent use.
type Handle struct {
	mu       sync.RWMutex
	name     string
	dataset  Dataset
	pending  []float64
	revision int
	onRedraw []RedrawFunc
}

// NewHandle returns a handle drawn once with dataset.
func NewHandle(name string, dataset Dataset) *Handle {
	return &Handle{name: name, dataset: dataset.clone(), revision: 1}
}

// Name returns the chart name.
func (h *Handle) Name() string {
	return h.name
}

// OnRedraw registers a callback invoked after every redraw.
func (h *Handle) OnRedraw(fn RedrawFunc) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.onRedraw = append(h.onRedraw, fn)
	h.mu.Unlock()
}

// Replace swaps the data array. The change is not visible until Redraw.
func (h *Handle) Replace(data []float64) {
	h.mu.Lock()
	h.pending = slices.Clone(data)
	h.mu.Unlock()
}

// Redraw applies any pending data and bumps the revision.
func (h *Handle) Redraw() {
	h.mu.Lock()
	if h.pending != nil {
		h.dataset.Data = h.pending
		h.pending = nil
	}
	h.revision++
	revision := h.revision
	data := h.dataset.clone()
	callbacks := slices.Clone(h.onRedraw)
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(h.name, revision, data)
	}
}

// Update is Replace followed by Redraw.
func (h *Handle) Update(data []float64) {
	h.Replace(data)
	h.Redraw()
}

// Dataset returns a copy of the drawn dataset.
func (h *Handle) Dataset() Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dataset.clone()
}

// Revision counts redraws, starting at 1 for the initial draw.
func (h *Handle) Revision() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.revision
}
