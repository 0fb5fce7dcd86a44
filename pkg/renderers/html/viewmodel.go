package html

import (
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/slides"
	"github.com/goliatone/go-pmr/pkg/theming"
)

var tabLabels = map[string]string{
	model.TabContract:  "Contract Info",
	model.TabFinancial: "Financial",
	model.TabStaffing:  "Staffing",
	model.TabSchedule:  "Schedule",
	model.TabRisks:     "Risks & Accomplishments",
	model.TabSlides:    "Slides",
}

// Indexes and counts are strings: the template engine prints JSON numbers as
// floats.
type page struct {
	Title        string               `json:"title"`
	Base         string               `json:"base"`
	Stylesheet   string               `json:"stylesheet"`
	ThemeStyle   string               `json:"themeStyle"`
	ThemeLink    string               `json:"themeLink,omitempty"`
	Theme        string               `json:"theme,omitempty"`
	Variant      string               `json:"variant,omitempty"`
	Hidden       []render.HiddenField `json:"hidden,omitempty"`
	ActiveTab    string               `json:"activeTab"`
	Tabs         []tabView            `json:"tabs"`
	Notification *notificationView    `json:"notification,omitempty"`
	Modal        *modalView           `json:"modal,omitempty"`
	Deck         *deckView            `json:"deck,omitempty"`
}

type tabView struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Active      bool             `json:"active"`
	Fields      []fieldView      `json:"fields,omitempty"`
	Collections []collectionView `json:"collections,omitempty"`
}

type fieldView struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Kind        string   `json:"kind"`
	Input       string   `json:"input"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`
	ReadOnly    bool     `json:"readOnly"`
	Min         string   `json:"min,omitempty"`
	Max         string   `json:"max,omitempty"`
	Class       string   `json:"class,omitempty"`
}

type collectionView struct {
	ID      string     `json:"id"`
	Kind    string     `json:"kind"`
	Label   string     `json:"label"`
	Table   bool       `json:"table"`
	Headers []string   `json:"headers,omitempty"`
	Rows    []rowView  `json:"rows,omitempty"`
	Items   []itemView `json:"items,omitempty"`
	Risk    bool       `json:"risk"`
	Levels  []string   `json:"levels,omitempty"`
}

type rowView struct {
	Index string     `json:"index"`
	Class string     `json:"class,omitempty"`
	Cells []cellView `json:"cells"`
}

type cellView struct {
	Name        string   `json:"name"`
	Input       string   `json:"input"`
	Value       string   `json:"value"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`
}

type itemView struct {
	Index    string `json:"index"`
	Text     string `json:"text"`
	Severity string `json:"severity,omitempty"`
	Class    string `json:"class,omitempty"`
}

type notificationView struct {
	Text  string `json:"text"`
	Kind  string `json:"kind"`
	Phase string `json:"phase"`
}

type modalView struct {
	Query    string        `json:"query"`
	Programs []programView `json:"programs"`
	Empty    bool          `json:"empty"`
}

type programView struct {
	Cells []string `json:"cells"`
	Class string   `json:"class"`
}

type deckView struct {
	SnapshotID     string      `json:"snapshotId"`
	ContractName   string      `json:"contractName"`
	ContractNumber string      `json:"contractNumber"`
	Manager        string      `json:"manager"`
	Period         string      `json:"period"`
	Status         string      `json:"status"`
	StatusClass    string      `json:"statusClass"`
	Active         string      `json:"active"`
	Slides         []slideView `json:"slides"`
}

type slideView struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Period  string          `json:"period"`
	Active  bool            `json:"active"`
	Metrics []slides.Metric `json:"metrics,omitempty"`
	Tables  []slides.Table  `json:"tables,omitempty"`
	Bullets []string        `json:"bullets,omitempty"`
	Risks   []string        `json:"risks,omitempty"`
	Body    string          `json:"body,omitempty"`
	Chart   string          `json:"chart,omitempty"`
}

func buildPage(view render.View, opts render.RenderOptions) page {
	base := strings.TrimRight(strings.TrimSpace(opts.BasePath), "/")
	out := page{
		Title:      opts.Title,
		Base:       base,
		Stylesheet: defaultStylesheet(),
		ThemeStyle: theming.CSSVarsStyle(opts.Theme),
		Hidden:     opts.FormFields(),
		ActiveTab:  activeTab(view.ActiveTab),
	}
	if out.Title == "" {
		out.Title = "PMR Dashboard"
	}
	applyTheme(&out, opts.Theme)

	for _, tab := range model.Tabs() {
		out.Tabs = append(out.Tabs, buildTab(tab, out.ActiveTab, view.State))
	}
	if msg := view.Notification; msg != nil && msg.Phase != "" && msg.Text != "" {
		out.Notification = &notificationView{Text: msg.Text, Kind: string(msg.Kind), Phase: string(msg.Phase)}
	}
	if view.ModalOpen {
		out.Modal = buildModal(view.Query, view.Programs)
	}
	if view.Deck != nil {
		out.Deck = buildDeck(*view.Deck, view.ActiveSlide)
	}
	return out
}

func applyTheme(out *page, cfg *theme.RendererConfig) {
	if cfg == nil {
		return
	}
	out.Theme = cfg.Theme
	out.Variant = cfg.Variant
	if cfg.AssetURL == nil {
		return
	}
	if href := cfg.AssetURL("stylesheet"); href != "" && !strings.HasSuffix(href, "/"+StylesheetName) {
		if strings.HasPrefix(href, "/") {
			href = out.Base + href
		}
		out.ThemeLink = href
	}
}

func activeTab(tab string) string {
	if model.IsTab(tab) {
		return tab
	}
	return model.TabContract
}

func buildTab(tab, active string, state model.FormState) tabView {
	view := tabView{ID: tab, Label: tabLabels[tab], Active: tab == active}
	for _, spec := range model.FieldsForTab(tab) {
		view.Fields = append(view.Fields, buildField(spec, state.Value(spec.Name)))
	}
	for _, spec := range model.Collections() {
		if spec.Tab != tab {
			continue
		}
		view.Collections = append(view.Collections, buildCollection(spec, state))
	}
	return view
}

func buildField(spec model.FieldSpec, value string) fieldView {
	field := fieldView{
		Name:        spec.Name,
		Label:       spec.Label,
		Kind:        string(spec.Kind),
		Input:       inputType(spec.Kind),
		Value:       value,
		Placeholder: spec.Placeholder,
		Options:     spec.Options,
		ReadOnly:    spec.ReadOnly,
	}
	if spec.Kind == model.FieldKindRange {
		field.Min = strconv.Itoa(spec.Min)
		field.Max = strconv.Itoa(spec.Max)
	}
	if spec.Kind == model.FieldKindStatus {
		field.Class = slides.StatusClass(value)
	}
	return field
}

func buildCollection(spec model.CollectionSpec, state model.FormState) collectionView {
	view := collectionView{
		ID:    string(spec.ID),
		Kind:  string(spec.Kind),
		Label: spec.Label,
		Table: spec.IsTable(),
		Risk:  spec.Kind == model.KindRisk,
	}
	if !view.Table {
		for i, item := range state.Lists[spec.ID] {
			view.Items = append(view.Items, itemView{
				Index:    strconv.Itoa(i),
				Text:     item.Text,
				Severity: string(item.Severity),
				Class:    item.Severity.Class(),
			})
		}
		if view.Risk {
			for _, level := range model.Severities() {
				view.Levels = append(view.Levels, string(level))
			}
		}
		return view
	}

	for _, col := range spec.Columns {
		view.Headers = append(view.Headers, col.Label)
	}
	statusCol := spec.StatusColumn()
	for i, row := range state.Tables[spec.ID] {
		rv := rowView{Index: strconv.Itoa(i)}
		if statusCol >= 0 && row.Cell(statusCol) != "" {
			rv.Class = slides.StatusClass(row.Cell(statusCol))
		}
		for c, col := range spec.Columns {
			rv.Cells = append(rv.Cells, cellView{
				Name:        "cell" + strconv.Itoa(c),
				Input:       inputType(col.Kind),
				Value:       row.Cell(c),
				Placeholder: col.Placeholder,
				Options:     col.Options,
			})
		}
		view.Rows = append(view.Rows, rv)
	}
	return view
}

func buildModal(query string, programs []model.Program) *modalView {
	modal := &modalView{Query: query, Programs: []programView{}}
	for _, program := range programs {
		modal.Programs = append(modal.Programs, programView{
			Cells: program.Cells(),
			Class: slides.StatusClass(program.Status),
		})
	}
	modal.Empty = len(modal.Programs) == 0
	return modal
}

func buildDeck(deck slides.Deck, active string) *deckView {
	if _, ok := deck.Slide(active); !ok {
		active = slides.SlideOverview
	}
	view := &deckView{
		SnapshotID:     deck.SnapshotID,
		ContractName:   deck.ContractName,
		ContractNumber: deck.ContractNumber,
		Manager:        deck.Manager,
		Period:         deck.Period,
		Status:         deck.Status,
		StatusClass:    deck.StatusClass,
		Active:         active,
	}
	for _, slide := range deck.Slides {
		view.Slides = append(view.Slides, slideView{
			ID:      slide.ID,
			Title:   slide.Title,
			Period:  slide.Period,
			Active:  slide.ID == active,
			Metrics: slide.Metrics,
			Tables:  slide.Tables,
			Bullets: slide.Bullets,
			Risks:   slide.Risks,
			Body:    SanitizeRichText(slide.Body),
			Chart:   slide.Chart,
		})
	}
	return view
}

func inputType(kind model.FieldKind) string {
	switch kind {
	case model.FieldKindRichText:
		return "textarea"
	case model.FieldKindDate:
		return "date"
	case model.FieldKindMonth:
		return "month"
	case model.FieldKindCurrency, model.FieldKindCount:
		return "number"
	case model.FieldKindRange:
		return "range"
	case model.FieldKindStatus:
		return "select"
	default:
		return "text"
	}
}
