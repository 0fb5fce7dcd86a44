// Package pdf exports the generated slide deck as a PDF document with one
// landscape page per slide.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/slides"
	"github.com/goliatone/go-pmr/pkg/theming"
)

// ErrNoDeck is returned when the view carries no generated deck.
var ErrNoDeck = errors.New("pdf renderer: no slide deck to export")

const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
)

type Option func(*config)

type config struct {
	now       func() time.Time
	chartSize charts.Size
}

// WithClock fixes the document creation date, mainly for reproducible output.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithChartSize overrides the pixel size of the embedded chart image.
func WithChartSize(size charts.Size) Option {
	return func(cfg *config) {
		if size.Width > 0 && size.Height > 0 {
			cfg.chartSize = size
		}
	}
}

type Renderer struct {
	cfg config
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the PDF renderer.
func New(options ...Option) *Renderer {
	cfg := config{now: time.Now, chartSize: charts.DefaultSize}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Renderer{cfg: cfg}
}

func (r *Renderer) Name() string {
	return "pdf"
}

func (r *Renderer) ContentType() string {
	return "application/pdf"
}

// Render writes the deck in view.Deck. The slide chart is drawn from
// view.Charts when present, otherwise from the deck's chart series.
func (r *Renderer) Render(_ context.Context, view render.View, opts render.RenderOptions) ([]byte, error) {
	if view.Deck == nil {
		return nil, ErrNoDeck
	}
	deck := *view.Deck

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetMargins(marginLeft, marginTop, marginRight)
	doc.SetAutoPageBreak(true, marginBottom)
	now := r.cfg.now()
	doc.SetCreationDate(now)
	doc.SetModificationDate(now)
	doc.SetCatalogSort(true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	title := opts.Title
	if title == "" {
		title = deck.ContractName + " PMR"
	}
	doc.SetTitle(title, true)
	doc.SetAuthor(deck.Manager, true)
	doc.SetCreator("go-pmr", true)

	w := &writer{doc: doc, tr: tr, theme: opts.Theme}
	chartName, err := r.registerChart(doc, view, deck, opts.Theme)
	if err != nil {
		return nil, err
	}
	for _, slide := range deck.Slides {
		w.slide(deck, slide, chartName)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf renderer: output: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) registerChart(doc *fpdf.Fpdf, view render.View, deck slides.Deck, cfg *theme.RendererConfig) (string, error) {
	dataset, ok := view.Charts[charts.NameSlide]
	if !ok {
		dataset = charts.SlideDefaults()
		dataset.Data = append([]float64(nil), deck.ChartSeries...)
	}
	var png bytes.Buffer
	if err := charts.WritePNG(&png, dataset, theming.Palette(cfg), r.cfg.chartSize); err != nil {
		return "", fmt.Errorf("pdf renderer: draw chart: %w", err)
	}
	name := "chart-" + charts.NameSlide
	doc.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, &png)
	if err := doc.Error(); err != nil {
		return "", fmt.Errorf("pdf renderer: register chart: %w", err)
	}
	return name, nil
}

type writer struct {
	doc   *fpdf.Fpdf
	tr    func(string) string
	theme *theme.RendererConfig
}

func (w *writer) slide(deck slides.Deck, slide slides.Slide, chartName string) {
	doc := w.doc
	doc.AddPage()

	w.fill(theming.TokenBrand, "#1e3a8a")
	doc.Rect(0, 0, pageWidth, 24, "F")
	doc.SetTextColor(255, 255, 255)
	doc.SetFont("Helvetica", "B", 18)
	doc.SetXY(marginLeft, 7)
	doc.CellFormat(contentWidth*0.7, 10, w.tr(slide.Title), "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(contentWidth*0.3, 10, w.tr(slide.Period), "", 1, "R", false, 0, "")

	doc.SetXY(marginLeft, 30)
	w.text(theming.TokenText, "#111827")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(contentWidth, 6, w.tr(deck.ContractName+" · "+deck.ContractNumber+" · "+deck.Manager), "", 1, "L", false, 0, "")
	doc.Ln(2)

	if len(slide.Metrics) > 0 {
		w.metrics(slide.Metrics)
	}
	if slide.Chart != "" && chartName != "" {
		y := doc.GetY()
		doc.ImageOptions(chartName, marginLeft, y, 140, 0, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		doc.SetY(y + 90)
	}
	for _, table := range slide.Tables {
		w.table(table)
	}
	if len(slide.Bullets) > 0 {
		w.list("Key Accomplishments", slide.Bullets)
	}
	if len(slide.Risks) > 0 {
		w.list("Risks & Issues", slide.Risks)
	}
	if body := plainText(slide.Body); body != "" {
		doc.Ln(2)
		w.text(theming.TokenText, "#111827")
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(contentWidth, 5.5, w.tr(body), "", "L", false)
	}
}

func (w *writer) metrics(metrics []slides.Metric) {
	doc := w.doc
	width := contentWidth / float64(len(metrics))
	y := doc.GetY()
	doc.SetDrawColor(229, 231, 235)
	for i, metric := range metrics {
		x := marginLeft + float64(i)*width
		doc.Rect(x, y, width-3, 20, "D")
		doc.SetXY(x+2, y+2)
		doc.SetFont("Helvetica", "", 8)
		w.text(theming.TokenText, "#111827")
		doc.CellFormat(width-7, 5, w.tr(metric.Label), "", 2, "L", false, 0, "")
		doc.SetFont("Helvetica", "B", 13)
		w.statusText(metric.Class)
		doc.CellFormat(width-7, 9, w.tr(metric.Value), "", 0, "L", false, 0, "")
	}
	doc.SetXY(marginLeft, y+24)
}

func (w *writer) table(table slides.Table) {
	doc := w.doc
	if len(table.Headers) == 0 {
		return
	}
	colWidth := contentWidth / float64(len(table.Headers))

	doc.SetFont("Helvetica", "B", 12)
	w.text(theming.TokenText, "#111827")
	doc.CellFormat(contentWidth, 8, w.tr(table.Title), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(243, 244, 246)
	doc.SetDrawColor(229, 231, 235)
	for i, header := range table.Headers {
		ln := 0
		if i == len(table.Headers)-1 {
			ln = 1
		}
		doc.CellFormat(colWidth, 7, w.tr(header), "1", ln, "L", true, 0, "")
	}

	doc.SetFont("Helvetica", "", 9)
	if len(table.Rows) == 0 {
		doc.CellFormat(contentWidth, 7, "None reported", "1", 1, "C", false, 0, "")
	}
	for _, row := range table.Rows {
		for i := range table.Headers {
			cell := ""
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			w.text(theming.TokenText, "#111827")
			if row.Status != "" && cell == row.Status {
				w.statusText(row.Class)
			}
			ln := 0
			if i == len(table.Headers)-1 {
				ln = 1
			}
			doc.CellFormat(colWidth, 7, w.tr(cell), "1", ln, "L", false, 0, "")
		}
	}
	doc.Ln(3)
}

func (w *writer) list(title string, items []string) {
	doc := w.doc
	doc.SetFont("Helvetica", "B", 12)
	w.text(theming.TokenText, "#111827")
	doc.CellFormat(contentWidth, 8, w.tr(title), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	for _, item := range items {
		doc.MultiCell(contentWidth, 5.5, w.tr("- "+item), "", "L", false)
	}
	doc.Ln(2)
}

func (w *writer) statusText(class string) {
	switch class {
	case slides.ClassApproved:
		w.text(theming.TokenApproved, "#10b981")
	case slides.ClassPending:
		w.text(theming.TokenPending, "#f59e0b")
	case slides.ClassDraft:
		w.text(theming.TokenDraft, "#ef4444")
	default:
		w.text(theming.TokenText, "#111827")
	}
}

func (w *writer) text(token, fallback string) {
	r, g, b := rgb(theming.Token(w.theme, token, fallback))
	w.doc.SetTextColor(r, g, b)
}

func (w *writer) fill(token, fallback string) {
	r, g, b := rgb(theming.Token(w.theme, token, fallback))
	w.doc.SetFillColor(r, g, b)
}

// plainText drops markup from rich text fields; PDF cells take plain text.
func plainText(raw string) string {
	raw = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "</p>", "\n").Replace(raw)
	return strings.TrimSpace(html.UnescapeString(bluemonday.StrictPolicy().Sanitize(raw)))
}

// rgb parses #rrggbb or #rgb; anything else is black.
func rgb(hex string) (int, int, int) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
