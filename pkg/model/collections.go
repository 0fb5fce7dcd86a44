package model

import "strings"

// CollectionID names a dynamic collection on the form.
type CollectionID string

const (
	CollectionStaffing        CollectionID = "staffingTable"
	CollectionMilestones      CollectionID = "milestonesTable"
	CollectionActionItems     CollectionID = "actionItemsTable"
	CollectionAccomplishments CollectionID = "accomplishments-list"
	CollectionRisks           CollectionID = "risks-list"
)

// RecordKind identifies the record shape appended to a collection.
type RecordKind string

const (
	KindStaffMember    RecordKind = "staffing"
	KindMilestone      RecordKind = "milestone"
	KindActionItem     RecordKind = "action-item"
	KindAccomplishment RecordKind = "accomplishment"
	KindRisk           RecordKind = "risk"
)

// ColumnSpec describes one cell of a dynamic row.
type ColumnSpec struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
}

// CollectionSpec describes a collection and the record kind it accepts. Tables
// carry Columns; lists carry none and store ListItem values instead.
type CollectionSpec struct {
	ID      CollectionID `json:"id"`
	Kind    RecordKind   `json:"kind"`
	Label   string       `json:"label"`
	Tab     string       `json:"tab"`
	Columns []ColumnSpec `json:"columns,omitempty"`
}

// IsTable reports whether the collection holds DynamicRow records.
func (s CollectionSpec) IsTable() bool {
	return len(s.Columns) > 0
}

// StatusColumn returns the index of the status column, or -1.
func (s CollectionSpec) StatusColumn() int {
	for i, col := range s.Columns {
		if col.Kind == FieldKindStatus {
			return i
		}
	}
	return -1
}

var collections = []CollectionSpec{
	{
		ID: CollectionStaffing, Kind: KindStaffMember, Label: "Key Personnel", Tab: TabStaffing,
		Columns: []ColumnSpec{
			{Name: "name", Label: "Name", Kind: FieldKindText, Placeholder: "Employee name"},
			{Name: "role", Label: "Role", Kind: FieldKindText, Placeholder: "Role/Position"},
			{Name: "status", Label: "Status", Kind: FieldKindStatus, Options: []string{StatusActive, StatusOnLeave, StatusTransitioning}},
		},
	},
	{
		ID: CollectionMilestones, Kind: KindMilestone, Label: "Milestones", Tab: TabSchedule,
		Columns: []ColumnSpec{
			{Name: "description", Label: "Milestone", Kind: FieldKindText, Placeholder: "Milestone description"},
			{Name: "planned", Label: "Planned Date", Kind: FieldKindDate},
			{Name: "actual", Label: "Actual/Forecast", Kind: FieldKindDate},
			{Name: "status", Label: "Status", Kind: FieldKindStatus, Options: []string{StatusOnTrack, StatusAtRisk, StatusDelayed}},
		},
	},
	{
		ID: CollectionActionItems, Kind: KindActionItem, Label: "Action Items", Tab: TabSchedule,
		Columns: []ColumnSpec{
			{Name: "description", Label: "Action Item", Kind: FieldKindText, Placeholder: "Action item description"},
			{Name: "owner", Label: "Owner", Kind: FieldKindText, Placeholder: "Owner name"},
			{Name: "due", Label: "Due Date", Kind: FieldKindDate},
			{Name: "status", Label: "Status", Kind: FieldKindStatus, Options: []string{StatusNotStarted, StatusInProgress, StatusOverdue, StatusComplete}},
		},
	},
	{ID: CollectionAccomplishments, Kind: KindAccomplishment, Label: "Key Accomplishments", Tab: TabRisks},
	{ID: CollectionRisks, Kind: KindRisk, Label: "Risks & Issues", Tab: TabRisks},
}

// Collections returns every collection spec in display order.
func Collections() []CollectionSpec {
	out := make([]CollectionSpec, len(collections))
	for i, spec := range collections {
		out[i] = cloneCollectionSpec(spec)
	}
	return out
}

// LookupCollection resolves a collection spec by id.
func LookupCollection(id CollectionID) (CollectionSpec, bool) {
	for _, spec := range collections {
		if spec.ID == id {
			return cloneCollectionSpec(spec), true
		}
	}
	return CollectionSpec{}, false
}

func cloneCollectionSpec(spec CollectionSpec) CollectionSpec {
	if spec.Columns == nil {
		return spec
	}
	cols := make([]ColumnSpec, len(spec.Columns))
	for i, col := range spec.Columns {
		col.Options = append([]string(nil), col.Options...)
		cols[i] = col
	}
	spec.Columns = cols
	return spec
}

// DynamicRow is one record of a table collection. Cells follow the column
// order of the owning CollectionSpec; the status select is one of the cells.
// Identity is positional.
type DynamicRow struct {
	Cells []string `json:"cells" yaml:"cells"`
}

// BlankRow returns a row with one empty cell per column.
func BlankRow(spec CollectionSpec) DynamicRow {
	return DynamicRow{Cells: make([]string, len(spec.Columns))}
}

// IsBlank reports whether every cell is empty after trimming.
func (r DynamicRow) IsBlank() bool {
	for _, cell := range r.Cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Cell returns the value at column i, or "" when the row is short.
func (r DynamicRow) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// ListItem is an accomplishment or risk. Severity is only set for risks.
type ListItem struct {
	Text     string   `json:"text" yaml:"text"`
	Severity Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
}

// IsBlank reports whether the item text is empty after trimming.
func (i ListItem) IsBlank() bool {
	return strings.TrimSpace(i.Text) == ""
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
