package model

import (
	"maps"
	"time"
)

// FormState is the in-memory form: plain field values keyed by field name plus
// the dynamic collections. It is mutated in place by the store and never
// persisted.
type FormState struct {
	Fields map[string]string             `json:"fields" yaml:"fields"`
	Tables map[CollectionID][]DynamicRow `json:"tables,omitempty" yaml:"tables,omitempty"`
	Lists  map[CollectionID][]ListItem   `json:"lists,omitempty" yaml:"lists,omitempty"`
}

// NewFormState returns an empty state with every collection initialised.
func NewFormState() FormState {
	state := FormState{
		Fields: make(map[string]string),
		Tables: make(map[CollectionID][]DynamicRow),
		Lists:  make(map[CollectionID][]ListItem),
	}
	for _, spec := range collections {
		if spec.IsTable() {
			state.Tables[spec.ID] = nil
		} else {
			state.Lists[spec.ID] = nil
		}
	}
	return state
}

// Value returns a field value; missing fields read as "".
func (s FormState) Value(name string) string {
	if s.Fields == nil {
		return ""
	}
	return s.Fields[name]
}

// Clone deep-copies the state so later edits cannot leak into the copy.
func (s FormState) Clone() FormState {
	out := FormState{
		Fields: maps.Clone(s.Fields),
		Tables: make(map[CollectionID][]DynamicRow, len(s.Tables)),
		Lists:  make(map[CollectionID][]ListItem, len(s.Lists)),
	}
	if out.Fields == nil {
		out.Fields = make(map[string]string)
	}
	for id, rows := range s.Tables {
		if rows == nil {
			out.Tables[id] = nil
			continue
		}
		copied := make([]DynamicRow, len(rows))
		for i, row := range rows {
			copied[i] = DynamicRow{Cells: append([]string(nil), row.Cells...)}
		}
		out.Tables[id] = copied
	}
	for id, items := range s.Lists {
		if items == nil {
			out.Lists[id] = nil
			continue
		}
		out.Lists[id] = append([]ListItem(nil), items...)
	}
	return out
}

// DerivedFinancials holds funded/billed as parsed plus the remaining balance.
// Remaining may be negative: over-billing is representable.
type DerivedFinancials struct {
	Funded    float64 `json:"funded"`
	Billed    float64 `json:"billed"`
	Remaining float64 `json:"remaining"`
}

// DerivedStaffing holds the parsed headcounts and the non-negative vacancy
// count.
type DerivedStaffing struct {
	Authorized int64 `json:"authorized"`
	Current    int64 `json:"current"`
	Vacancies  int64 `json:"vacancies"`
}

// SlideSnapshot is the read-only copy of the form captured by a draft save.
// Collections are already filtered: blank rows and items are gone and list
// items carry their text only.
type SlideSnapshot struct {
	ID              string            `json:"id" yaml:"id"`
	TakenAt         time.Time         `json:"takenAt" yaml:"takenAt"`
	Fields          map[string]string `json:"fields" yaml:"fields"`
	Staffing        [][]string        `json:"staffing" yaml:"staffing"`
	Milestones      [][]string        `json:"milestones" yaml:"milestones"`
	ActionItems     [][]string        `json:"actionItems" yaml:"actionItems"`
	Accomplishments []string          `json:"accomplishments" yaml:"accomplishments"`
	Risks           []string          `json:"risks" yaml:"risks"`
	Financials      DerivedFinancials `json:"financials" yaml:"financials"`
}

// Value returns a snapshot field value; missing fields read as "".
func (s SlideSnapshot) Value(name string) string {
	if s.Fields == nil {
		return ""
	}
	return s.Fields[name]
}
