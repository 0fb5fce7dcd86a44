// Package store holds the live form state and emits change events to
// subscribers. Derivations run inside Set before it returns, so subscribers
// always observe consistent derived values.
//
// A Store is not safe for concurrent use; callers serialise access.
package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-pmr/pkg/collect"
	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
)

// EventKind classifies a change event.
type EventKind string

const (
	EventFieldChanged   EventKind = "field"
	EventFieldDerived   EventKind = "derived"
	EventChartUpdated   EventKind = "chart"
	EventChartSkipped   EventKind = "chart-skipped"
	EventRecordAppended EventKind = "appended"
	EventRecordRemoved  EventKind = "removed"
	EventCellChanged    EventKind = "cell"
	EventStateLoaded    EventKind = "loaded"
	EventDraftSaved     EventKind = "draft"
)

// Event describes one mutation. Only the fields relevant to Kind are set.
type Event struct {
	Kind       EventKind            `json:"kind"`
	Field      string               `json:"field,omitempty"`
	Value      string               `json:"value,omitempty"`
	Collection model.CollectionID   `json:"collection,omitempty"`
	Index      int                  `json:"index,omitempty"`
	Column     int                  `json:"column,omitempty"`
	Chart      *derive.ChartUpdate  `json:"chart,omitempty"`
	Snapshot   *model.SlideSnapshot `json:"snapshot,omitempty"`
}

// Listener receives change events in emission order.
type Listener func(Event)

// Option customises a Store.
type Option func(*Store)

// WithLogger sets the logger used for missing-target diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEngine overrides the derivation engine.
func WithEngine(engine *derive.Engine) Option {
	return func(s *Store) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the snapshot id source.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.newID = next
		}
	}
}

type subscription struct {
	id       int
	listener Listener
}

// Store owns a FormState and the latest draft snapshot.
type Store struct {
	state    model.FormState
	engine   *derive.Engine
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
	subs     []subscription
	nextSub  int
	snapshot *model.SlideSnapshot
}

// New returns an empty store.
func New(options ...Option) *Store {
	s := &Store{
		state:  model.NewFormState(),
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.engine == nil {
		s.engine = derive.MustNew()
	}
	return s
}

// Subscribe registers a listener and returns its cancel function.
func (s *Store) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, listener: listener})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) emit(event Event) {
	for _, sub := range s.subs {
		sub.listener(event)
	}
}

// Value implements derive.Reader over the live state.
func (s *Store) Value(name string) string {
	return s.state.Value(name)
}

// State returns a deep copy of the live state.
func (s *Store) State() model.FormState {
	return s.state.Clone()
}

// Rows returns a copy of the rows of a table collection.
func (s *Store) Rows(id model.CollectionID) []model.DynamicRow {
	rows := s.state.Tables[id]
	out := make([]model.DynamicRow, len(rows))
	for i, row := range rows {
		out[i] = model.DynamicRow{Cells: append([]string(nil), row.Cells...)}
	}
	return out
}

// Items returns a copy of the items of a list collection.
func (s *Store) Items(id model.CollectionID) []model.ListItem {
	return append([]model.ListItem(nil), s.state.Lists[id]...)
}

// Set writes a user-editable field and runs the derivations depending on it.
// Unknown and read-only fields are logged and ignored.
func (s *Store) Set(name, value string) bool {
	spec, ok := model.LookupField(name)
	if !ok {
		s.logger.Warn("store: unknown field", zap.String("field", name))
		return false
	}
	if spec.ReadOnly || s.engine.IsDerived(spec.Name) {
		s.logger.Warn("store: field is derived", zap.String("field", name))
		return false
	}

	s.state.Fields[spec.Name] = value
	s.emit(Event{Kind: EventFieldChanged, Field: spec.Name, Value: value})
	s.applyOutcomes(s.engine.Apply(s, spec.Name))
	return true
}

func (s *Store) applyOutcomes(outcomes []derive.Outcome) {
	for _, outcome := range outcomes {
		s.state.Fields[outcome.Field] = outcome.Value
		s.emit(Event{Kind: EventFieldDerived, Field: outcome.Field, Value: outcome.Value})
		if outcome.Chart == nil {
			continue
		}
		if outcome.Chart.Skipped {
			s.logger.Warn("store: chart update skipped",
				zap.String("chart", outcome.Chart.Chart),
				zap.String("reason", outcome.Chart.Reason),
			)
			s.emit(Event{Kind: EventChartSkipped, Field: outcome.Field, Chart: outcome.Chart})
			continue
		}
		s.emit(Event{Kind: EventChartUpdated, Field: outcome.Field, Chart: outcome.Chart})
	}
}

// Load replaces the live state wholesale and recomputes every derived field.
func (s *Store) Load(state model.FormState) {
	next := state.Clone()
	base := model.NewFormState()
	for id := range base.Tables {
		if _, ok := next.Tables[id]; !ok {
			next.Tables[id] = nil
		}
	}
	for id := range base.Lists {
		if _, ok := next.Lists[id]; !ok {
			next.Lists[id] = nil
		}
	}
	s.state = next
	s.emit(Event{Kind: EventStateLoaded})
	s.applyOutcomes(s.engine.ApplyAll(s))
}

// Append adds a blank record to the end of a collection. The kind must match
// the collection. Unknown collections and mismatched kinds are logged and
// ignored.
func (s *Store) Append(id model.CollectionID, kind model.RecordKind) bool {
	spec, ok := model.LookupCollection(id)
	if !ok {
		s.logger.Warn("store: collection not found", zap.String("collection", string(id)))
		return false
	}
	if kind != "" && kind != spec.Kind {
		s.logger.Warn("store: record kind does not match collection",
			zap.String("collection", string(id)),
			zap.String("kind", string(kind)),
		)
		return false
	}

	var index int
	if spec.IsTable() {
		s.state.Tables[id] = append(s.state.Tables[id], model.BlankRow(spec))
		index = len(s.state.Tables[id]) - 1
	} else {
		s.state.Lists[id] = append(s.state.Lists[id], model.ListItem{})
		index = len(s.state.Lists[id]) - 1
	}
	s.emit(Event{Kind: EventRecordAppended, Collection: id, Index: index})
	return true
}

// AddListItem appends a list item with trimmed text. Blank text is ignored.
// Severity is kept for risks only.
func (s *Store) AddListItem(id model.CollectionID, text string, severity model.Severity) bool {
	spec, ok := model.LookupCollection(id)
	if !ok || spec.IsTable() {
		s.logger.Warn("store: list not found", zap.String("collection", string(id)))
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if spec.Kind != model.KindRisk {
		severity = model.SeverityNone
	}
	s.state.Lists[id] = append(s.state.Lists[id], model.ListItem{Text: text, Severity: severity})
	s.emit(Event{Kind: EventRecordAppended, Collection: id, Index: len(s.state.Lists[id]) - 1})
	return true
}

// Remove deletes exactly one record by position.
func (s *Store) Remove(id model.CollectionID, index int) bool {
	spec, ok := model.LookupCollection(id)
	if !ok {
		s.logger.Warn("store: collection not found", zap.String("collection", string(id)))
		return false
	}

	var size int
	if spec.IsTable() {
		size = len(s.state.Tables[id])
	} else {
		size = len(s.state.Lists[id])
	}
	if index < 0 || index >= size {
		s.logger.Warn("store: record not found",
			zap.String("collection", string(id)),
			zap.Int("index", index),
		)
		return false
	}

	if spec.IsTable() {
		rows := s.state.Tables[id]
		s.state.Tables[id] = append(rows[:index:index], rows[index+1:]...)
	} else {
		items := s.state.Lists[id]
		s.state.Lists[id] = append(items[:index:index], items[index+1:]...)
	}
	s.emit(Event{Kind: EventRecordRemoved, Collection: id, Index: index})
	return true
}

// SetCell edits one cell of a table row.
func (s *Store) SetCell(id model.CollectionID, index, column int, value string) bool {
	spec, ok := model.LookupCollection(id)
	if !ok || !spec.IsTable() {
		s.logger.Warn("store: table not found", zap.String("collection", string(id)))
		return false
	}
	rows := s.state.Tables[id]
	if index < 0 || index >= len(rows) || column < 0 || column >= len(spec.Columns) {
		s.logger.Warn("store: cell not found",
			zap.String("collection", string(id)),
			zap.Int("index", index),
			zap.Int("column", column),
		)
		return false
	}
	row := rows[index]
	if len(row.Cells) < len(spec.Columns) {
		cells := make([]string, len(spec.Columns))
		copy(cells, row.Cells)
		row.Cells = cells
	}
	row.Cells[column] = value
	rows[index] = row
	s.emit(Event{Kind: EventCellChanged, Collection: id, Index: index, Column: column, Value: value})
	return true
}

// SaveDraft captures the current form into a snapshot held by the store,
// replacing any previous one. Blank rows and items are dropped; list items
// keep their text only.
func (s *Store) SaveDraft() model.SlideSnapshot {
	snapshot := model.SlideSnapshot{
		ID:              s.newID(),
		TakenAt:         s.now(),
		Fields:          make(map[string]string, len(s.state.Fields)),
		Staffing:        collect.Table(s.state.Tables[model.CollectionStaffing]),
		Milestones:      collect.Table(s.state.Tables[model.CollectionMilestones]),
		ActionItems:     collect.Table(s.state.Tables[model.CollectionActionItems]),
		Accomplishments: collect.List(s.state.Lists[model.CollectionAccomplishments]),
		Risks:           collect.List(s.state.Lists[model.CollectionRisks]),
	}
	for name, value := range s.state.Fields {
		snapshot.Fields[name] = value
	}
	snapshot.Financials = derive.Financials(snapshot)

	held := cloneSnapshot(snapshot)
	s.snapshot = &held
	s.emit(Event{Kind: EventDraftSaved, Snapshot: &snapshot})
	return cloneSnapshot(snapshot)
}

// Snapshot returns the latest draft, if any.
func (s *Store) Snapshot() (model.SlideSnapshot, bool) {
	if s.snapshot == nil {
		return model.SlideSnapshot{}, false
	}
	return cloneSnapshot(*s.snapshot), true
}

func cloneSnapshot(in model.SlideSnapshot) model.SlideSnapshot {
	out := in
	out.Fields = make(map[string]string, len(in.Fields))
	for k, v := range in.Fields {
		out.Fields[k] = v
	}
	out.Staffing = cloneTable(in.Staffing)
	out.Milestones = cloneTable(in.Milestones)
	out.ActionItems = cloneTable(in.ActionItems)
	out.Accomplishments = append([]string{}, in.Accomplishments...)
	out.Risks = append([]string{}, in.Risks...)
	return out
}

func cloneTable(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
