package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pmr/pkg/model"
)

func TestDemoDefaults(t *testing.T) {
	demo, err := model.DemoDefaults()
	if err != nil {
		t.Fatalf("demo defaults: %v", err)
	}

	if got := demo.State.Value(model.FieldFundedValue); got != "2500000" {
		t.Fatalf("funded value: want 2500000, got %q", got)
	}
	if got := demo.State.Value(model.FieldAuthorizedHeadcount); got != "25" {
		t.Fatalf("authorized headcount: want 25, got %q", got)
	}
	if len(demo.Programs) == 0 {
		t.Fatalf("expected demo programs")
	}

	for _, spec := range model.Collections() {
		if spec.IsTable() {
			if _, ok := demo.State.Tables[spec.ID]; !ok {
				t.Fatalf("table %s not initialised", spec.ID)
			}
			continue
		}
		if _, ok := demo.State.Lists[spec.ID]; !ok {
			t.Fatalf("list %s not initialised", spec.ID)
		}
	}

	risks := demo.State.Lists[model.CollectionRisks]
	if len(risks) != 1 || risks[0].Severity != model.SeverityMedium {
		t.Fatalf("unexpected risks: %+v", risks)
	}
}

func TestFormStateCloneIsDeep(t *testing.T) {
	state := model.NewFormState()
	state.Fields[model.FieldContractName] = "Alpha"
	state.Tables[model.CollectionStaffing] = []model.DynamicRow{{Cells: []string{"Ada", "Lead", "Active"}}}
	state.Lists[model.CollectionAccomplishments] = []model.ListItem{{Text: "Shipped"}}

	clone := state.Clone()
	state.Fields[model.FieldContractName] = "Beta"
	state.Tables[model.CollectionStaffing][0].Cells[0] = "Grace"
	state.Lists[model.CollectionAccomplishments][0].Text = "Changed"

	if diff := cmp.Diff("Alpha", clone.Value(model.FieldContractName)); diff != "" {
		t.Fatalf("field leaked (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Ada", "Lead", "Active"}, clone.Tables[model.CollectionStaffing][0].Cells); diff != "" {
		t.Fatalf("row leaked (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("Shipped", clone.Lists[model.CollectionAccomplishments][0].Text); diff != "" {
		t.Fatalf("item leaked (-want +got):\n%s", diff)
	}
}

func TestCollectionSpecs(t *testing.T) {
	spec, ok := model.LookupCollection(model.CollectionMilestones)
	if !ok {
		t.Fatalf("milestones collection missing")
	}
	if spec.StatusColumn() != 3 {
		t.Fatalf("status column: want 3, got %d", spec.StatusColumn())
	}
	row := model.BlankRow(spec)
	if len(row.Cells) != 4 || !row.IsBlank() {
		t.Fatalf("blank row malformed: %+v", row)
	}

	list, ok := model.LookupCollection(model.CollectionRisks)
	if !ok || list.IsTable() {
		t.Fatalf("risks should be a list collection")
	}

	if _, ok := model.LookupCollection("unknown"); ok {
		t.Fatalf("unknown collection should not resolve")
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]model.Severity{
		"High":    model.SeverityHigh,
		" medium": model.SeverityMedium,
		"LOW":     model.SeverityLow,
		"other":   model.SeverityNone,
	}
	for raw, want := range cases {
		if got := model.ParseSeverity(raw); got != want {
			t.Fatalf("ParseSeverity(%q): want %q, got %q", raw, want, got)
		}
	}
	if got := model.SeverityHigh.Class(); got != "risk-high" {
		t.Fatalf("class: want risk-high, got %q", got)
	}
}

func TestFormStateRoundTripYAML(t *testing.T) {
	state := model.NewFormState()
	state.Fields[model.FieldPMName] = "Sarah Johnson"
	state.Tables[model.CollectionActionItems] = []model.DynamicRow{{Cells: []string{"Report", "Sarah", "2024-04-05", "In Progress"}}}

	data, err := model.MarshalFormState(state)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := model.ParseFormState(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(state.Tables[model.CollectionActionItems], decoded.Tables[model.CollectionActionItems]); diff != "" {
		t.Fatalf("action items mismatch (-want +got):\n%s", diff)
	}
	if decoded.Value(model.FieldPMName) != "Sarah Johnson" {
		t.Fatalf("pm name not decoded")
	}
}
