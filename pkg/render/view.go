package render

import (
	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/notify"
	"github.com/goliatone/go-pmr/pkg/slides"
)

// Page selects what a renderer draws from a View.
type Page string

const (
	PageDashboard Page = "dashboard"
	PageSlides    Page = "slides"
)

// View is everything a renderer needs to draw the dashboard at one instant.
// It is a value copy; renderers never reach back into live state.
type View struct {
	Page         Page                      `json:"page"`
	State        model.FormState           `json:"state"`
	ActiveTab    string                    `json:"activeTab"`
	ActiveSlide  string                    `json:"activeSlide"`
	Deck         *slides.Deck              `json:"deck,omitempty"`
	Notification *notify.Message           `json:"notification,omitempty"`
	ModalOpen    bool                      `json:"modalOpen"`
	Programs     []model.Program           `json:"programs,omitempty"`
	Query        string                    `json:"query,omitempty"`
	Charts       map[string]charts.Dataset `json:"charts,omitempty"`
}

// PageOrDefault returns the requested page, defaulting to the dashboard.
func (v View) PageOrDefault() Page {
	if v.Page == "" {
		return PageDashboard
	}
	return v.Page
}
