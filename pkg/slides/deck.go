// Package slides projects a saved draft into the structured view model of the
// presentation deck. Projection is pure: the same snapshot always yields the
// same deck, and nothing here touches live form state.
package slides

import (
	"strings"

	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
)

// Slide identifiers in deck order.
const (
	SlideOverview  = "1"
	SlideFinancial = "2"
	SlideStaffing  = "3"
	SlideSchedule  = "4"
	SlideRisks     = "5"
)

// Placeholders used when a title field is empty in the snapshot.
const (
	PlaceholderContractName   = "Sample Contract"
	PlaceholderContractNumber = "FA8771-20-C-0001"
	PlaceholderManager        = "John Smith"
)

// Metric is a labelled value block.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Class string `json:"class,omitempty"`
}

// Row is one projected table row. Class is derived from the status column.
type Row struct {
	Cells  []string `json:"cells"`
	Status string   `json:"status,omitempty"`
	Class  string   `json:"class,omitempty"`
}

// Table is a projected collection with its headings.
type Table struct {
	Title   string   `json:"title"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Slide is one page of the deck.
type Slide struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Period  string   `json:"period"`
	Metrics []Metric `json:"metrics,omitempty"`
	Tables  []Table  `json:"tables,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
	Risks   []string `json:"risks,omitempty"`
	Body    string   `json:"body,omitempty"`
	Chart   string   `json:"chart,omitempty"`
}

// Deck is the projected presentation.
type Deck struct {
	SnapshotID     string                  `json:"snapshotId"`
	ContractName   string                  `json:"contractName"`
	ContractNumber string                  `json:"contractNumber"`
	Manager        string                  `json:"manager"`
	Period         string                  `json:"period"`
	Status         string                  `json:"status"`
	StatusClass    string                  `json:"statusClass"`
	Financials     model.DerivedFinancials `json:"financials"`
	ChartSeries    []float64               `json:"chartSeries"`
	Slides         []Slide                 `json:"slides"`
}

// Slide returns the slide with the given id.
func (d Deck) Slide(id string) (Slide, bool) {
	for _, slide := range d.Slides {
		if slide.ID == id {
			return slide, true
		}
	}
	return Slide{}, false
}

// IDs lists slide ids in deck order.
func (d Deck) IDs() []string {
	out := make([]string, len(d.Slides))
	for i, slide := range d.Slides {
		out[i] = slide.ID
	}
	return out
}

// Project builds the deck for a snapshot. Financials are recomputed from the
// snapshot's own fields.
func Project(snapshot model.SlideSnapshot) Deck {
	fin := derive.Financials(snapshot)
	period := FormatPeriod(snapshot.Value(model.FieldReportingPeriod))
	status := snapshot.Value(model.FieldOverallStatus)

	deck := Deck{
		SnapshotID:     snapshot.ID,
		ContractName:   orPlaceholder(snapshot.Value(model.FieldContractName), PlaceholderContractName),
		ContractNumber: orPlaceholder(snapshot.Value(model.FieldContractNumber), PlaceholderContractNumber),
		Manager:        orPlaceholder(snapshot.Value(model.FieldPMName), PlaceholderManager),
		Period:         period,
		Status:         status,
		StatusClass:    StatusClass(status),
		Financials:     fin,
		ChartSeries:    []float64{fin.Funded, fin.Billed, fin.Remaining},
	}

	deck.Slides = []Slide{
		overviewSlide(deck, snapshot),
		financialSlide(deck, snapshot, fin),
		staffingSlide(deck, snapshot),
		scheduleSlide(deck, snapshot),
		risksSlide(deck, snapshot),
	}
	return deck
}

func overviewSlide(deck Deck, snapshot model.SlideSnapshot) Slide {
	return Slide{
		ID:     SlideOverview,
		Title:  "Program Overview",
		Period: deck.Period,
		Metrics: []Metric{
			{Label: "Contract", Value: deck.ContractName},
			{Label: "Contract Number", Value: deck.ContractNumber},
			{Label: "Program Manager", Value: deck.Manager},
			{Label: "Period of Performance", Value: popRange(snapshot)},
			{Label: "Overall Status", Value: deck.Status, Class: deck.StatusClass},
		},
		Body: snapshot.Value(model.FieldExecutiveSummary),
	}
}

func financialSlide(deck Deck, snapshot model.SlideSnapshot, fin model.DerivedFinancials) Slide {
	return Slide{
		ID:     SlideFinancial,
		Title:  "Financial Status",
		Period: deck.Period,
		Metrics: []Metric{
			{Label: "Funded Value", Value: FormatCurrency(fin.Funded)},
			{Label: "Billed to Date", Value: FormatCurrency(fin.Billed)},
			{Label: "Remaining", Value: FormatCurrency(fin.Remaining), Class: remainingClass(fin.Remaining)},
			{Label: "Burn Rate", Value: FormatRate(derive.ParseNumberOr0(snapshot.Value(model.FieldBurnRate)))},
			{Label: "EAC", Value: FormatCurrency(derive.ParseNumberOr0(snapshot.Value(model.FieldEAC)))},
		},
		Chart: "slide",
	}
}

func staffingSlide(deck Deck, snapshot model.SlideSnapshot) Slide {
	staffing := derive.Staffing(snapshot)
	return Slide{
		ID:     SlideStaffing,
		Title:  "Staffing & Customer Satisfaction",
		Period: deck.Period,
		Metrics: []Metric{
			{Label: "Authorized", Value: derive.FormatCount(staffing.Authorized)},
			{Label: "Current", Value: derive.FormatCount(staffing.Current)},
			{Label: "Vacancies", Value: derive.FormatCount(staffing.Vacancies)},
			{Label: "Customer Rating", Value: ratingText(snapshot.Value(model.FieldCustomerRating))},
		},
		Tables: []Table{projectTable(model.CollectionStaffing, snapshot.Staffing)},
		Body:   snapshot.Value(model.FieldCustomerFeedback),
	}
}

func scheduleSlide(deck Deck, snapshot model.SlideSnapshot) Slide {
	return Slide{
		ID:     SlideSchedule,
		Title:  "Schedule & Action Items",
		Period: deck.Period,
		Tables: []Table{
			projectTable(model.CollectionMilestones, snapshot.Milestones),
			projectTable(model.CollectionActionItems, snapshot.ActionItems),
		},
	}
}

func risksSlide(deck Deck, snapshot model.SlideSnapshot) Slide {
	return Slide{
		ID:      SlideRisks,
		Title:   "Accomplishments, Risks & Issues",
		Period:  deck.Period,
		Bullets: append([]string{}, snapshot.Accomplishments...),
		Risks:   append([]string{}, snapshot.Risks...),
	}
}

func projectTable(id model.CollectionID, rows [][]string) Table {
	spec, _ := model.LookupCollection(id)
	table := Table{Title: spec.Label, Rows: []Row{}}
	for _, col := range spec.Columns {
		table.Headers = append(table.Headers, col.Label)
	}
	statusCol := spec.StatusColumn()
	for _, cells := range rows {
		row := Row{Cells: make([]string, len(cells))}
		for i, cell := range cells {
			if i < len(spec.Columns) && spec.Columns[i].Kind == model.FieldKindDate {
				cell = FormatDate(cell)
			}
			row.Cells[i] = cell
		}
		if statusCol >= 0 && statusCol < len(cells) {
			row.Status = cells[statusCol]
			row.Class = StatusClass(row.Status)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func popRange(snapshot model.SlideSnapshot) string {
	start := FormatDate(snapshot.Value(model.FieldPopStart))
	end := FormatDate(snapshot.Value(model.FieldPopEnd))
	if start == "" && end == "" {
		return ""
	}
	return start + " - " + end
}

func ratingText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return raw + " / 5"
}

func remainingClass(remaining float64) string {
	if remaining < 0 {
		return ClassDraft
	}
	return ""
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
