package pdf_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/renderers/pdf"
	"github.com/goliatone/go-pmr/pkg/slides"
	"github.com/goliatone/go-pmr/pkg/testsupport"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
}

func TestRenderDeck(t *testing.T) {
	deck := testsupport.DemoDeck(t)
	renderer := pdf.New(pdf.WithClock(fixedClock), pdf.WithChartSize(charts.Size{Width: 320, Height: 200}))

	out, err := renderer.Render(testsupport.Context(), render.View{Deck: &deck}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", out[:min(len(out), 16)])
	}
	if renderer.ContentType() != "application/pdf" || renderer.Name() != "pdf" {
		t.Fatalf("unexpected renderer identity")
	}
}

func TestRenderIsReproducible(t *testing.T) {
	deck := testsupport.DemoDeck(t)
	renderer := pdf.New(pdf.WithClock(fixedClock))
	view := render.View{Deck: &deck, Charts: map[string]charts.Dataset{charts.NameSlide: charts.SlideDefaults()}}

	first, err := renderer.Render(testsupport.Context(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := renderer.Render(testsupport.Context(), view, render.RenderOptions{})
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical output for identical input")
	}
}

func TestRenderEmptySnapshot(t *testing.T) {
	deck := slides.Project(model.SlideSnapshot{ID: "empty"})
	out, err := pdf.New(pdf.WithClock(fixedClock)).Render(testsupport.Context(), render.View{Deck: &deck}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("expected PDF header")
	}
}

func TestRenderRequiresDeck(t *testing.T) {
	_, err := pdf.New().Render(testsupport.Context(), render.View{}, render.RenderOptions{})
	if !errors.Is(err, pdf.ErrNoDeck) {
		t.Fatalf("expected ErrNoDeck, got %v", err)
	}
}
