package store_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pmr/pkg/collect"
	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/store"
)

func newStore(t *testing.T, options ...store.Option) *store.Store {
	t.Helper()
	ids := 0
	base := []store.Option{
		store.WithClock(func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }),
		store.WithIDGenerator(func() string {
			ids++
			return "draft-" + string(rune('0'+ids))
		}),
	}
	return store.New(append(base, options...)...)
}

func TestSetRunsDerivationsBeforeReturning(t *testing.T) {
	s := newStore(t)
	var events []store.Event
	s.Subscribe(func(e store.Event) { events = append(events, e) })

	s.Set(model.FieldFundedValue, "2500000")
	events = nil
	if !s.Set(model.FieldBilledToDate, "1750000") {
		t.Fatalf("set billed should succeed")
	}

	if got := s.Value(model.FieldRemainingFunds); got != "750000.00" {
		t.Fatalf("remaining: want 750000.00, got %q", got)
	}

	want := []store.Event{
		{Kind: store.EventFieldChanged, Field: model.FieldBilledToDate, Value: "1750000"},
		{Kind: store.EventFieldDerived, Field: model.FieldRemainingFunds, Value: "750000.00"},
		{
			Kind:  store.EventChartUpdated,
			Field: model.FieldRemainingFunds,
			Chart: &derive.ChartUpdate{Chart: derive.ChartFinancial, Data: []float64{1750000, 750000}},
		},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSetReportsSkippedChartUpdate(t *testing.T) {
	s := newStore(t)
	var kinds []store.EventKind
	s.Subscribe(func(e store.Event) { kinds = append(kinds, e.Kind) })

	s.Set(model.FieldBilledToDate, "100")

	want := []store.EventKind{store.EventFieldChanged, store.EventFieldDerived, store.EventChartSkipped}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("event kinds mismatch (-want +got):\n%s", diff)
	}
	if got := s.Value(model.FieldRemainingFunds); got != "-100.00" {
		t.Fatalf("remaining: want -100.00, got %q", got)
	}
}

func TestSetRefusesDerivedAndUnknownFields(t *testing.T) {
	s := newStore(t)
	if s.Set(model.FieldVacancies, "9") {
		t.Fatalf("derived field should be read-only")
	}
	if s.Set("nope", "1") {
		t.Fatalf("unknown field should be ignored")
	}
	if got := s.Value(model.FieldVacancies); got != "" {
		t.Fatalf("vacancies should be untouched, got %q", got)
	}
}

func TestVacanciesNeverNegative(t *testing.T) {
	s := newStore(t)
	s.Set(model.FieldAuthorizedHeadcount, "25")
	s.Set(model.FieldCurrentHeadcount, "23")
	if got := s.Value(model.FieldVacancies); got != "2" {
		t.Fatalf("vacancies: want 2, got %q", got)
	}
	s.Set(model.FieldCurrentHeadcount, "30")
	if got := s.Value(model.FieldVacancies); got != "0" {
		t.Fatalf("vacancies: want 0, got %q", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := newStore(t)
	var count int
	cancel := s.Subscribe(func(store.Event) { count++ })
	s.Set(model.FieldContractName, "Alpha")
	cancel()
	s.Set(model.FieldContractName, "Beta")
	if count != 1 {
		t.Fatalf("expected one event before cancel, got %d", count)
	}
}

func TestAppendRemoveRoundTrip(t *testing.T) {
	s := newStore(t)
	s.Load(mustDemo(t).State)

	for _, spec := range model.Collections() {
		before := serialize(s, spec)
		if !s.Append(spec.ID, spec.Kind) {
			t.Fatalf("append to %s failed", spec.ID)
		}
		last := len(s.Rows(spec.ID)) - 1
		if !spec.IsTable() {
			last = len(s.Items(spec.ID)) - 1
		}
		if !s.Remove(spec.ID, last) {
			t.Fatalf("remove from %s failed", spec.ID)
		}
		if diff := cmp.Diff(before, serialize(s, spec)); diff != "" {
			t.Fatalf("%s round trip mismatch (-want +got):\n%s", spec.ID, diff)
		}
	}
}

func TestAppendAddsBlankRecord(t *testing.T) {
	s := newStore(t)
	if !s.Append(model.CollectionMilestones, model.KindMilestone) {
		t.Fatalf("append failed")
	}
	rows := s.Rows(model.CollectionMilestones)
	if len(rows) != 1 || len(rows[0].Cells) != 4 || !rows[0].IsBlank() {
		t.Fatalf("expected one blank milestone row, got %+v", rows)
	}

	if s.Append("missing", model.KindMilestone) {
		t.Fatalf("unknown collection should be a no-op")
	}
	if s.Append(model.CollectionStaffing, model.KindRisk) {
		t.Fatalf("mismatched kind should be a no-op")
	}
	if s.Remove(model.CollectionMilestones, 4) {
		t.Fatalf("out of range remove should be a no-op")
	}
}

func TestAddListItemTrimsAndIgnoresBlank(t *testing.T) {
	s := newStore(t)
	if s.AddListItem(model.CollectionRisks, "   ", model.SeverityHigh) {
		t.Fatalf("blank risk should be ignored")
	}
	s.AddListItem(model.CollectionRisks, "  Vendor delay ", model.SeverityHigh)
	s.AddListItem(model.CollectionAccomplishments, "Go-live", model.SeverityHigh)

	want := []model.ListItem{{Text: "Vendor delay", Severity: model.SeverityHigh}}
	if diff := cmp.Diff(want, s.Items(model.CollectionRisks)); diff != "" {
		t.Fatalf("risks mismatch (-want +got):\n%s", diff)
	}
	if got := s.Items(model.CollectionAccomplishments)[0].Severity; got != model.SeverityNone {
		t.Fatalf("accomplishments carry no severity, got %q", got)
	}
}

func TestSaveDraftFiltersAndIsolates(t *testing.T) {
	s := newStore(t)
	s.Set(model.FieldContractName, "Alpha")
	s.Set(model.FieldFundedValue, "1000")
	s.Set(model.FieldBilledToDate, "400")
	s.Append(model.CollectionStaffing, model.KindStaffMember)
	s.Append(model.CollectionStaffing, model.KindStaffMember)
	s.SetCell(model.CollectionStaffing, 1, 0, "Ada")
	s.AddListItem(model.CollectionRisks, "Late parts", model.SeverityLow)

	first := s.SaveDraft()
	if first.ID != "draft-1" {
		t.Fatalf("snapshot id: want draft-1, got %q", first.ID)
	}
	if diff := cmp.Diff([][]string{{"Ada", "", ""}}, first.Staffing); diff != "" {
		t.Fatalf("staffing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Late parts"}, first.Risks); diff != "" {
		t.Fatalf("risks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.DerivedFinancials{Funded: 1000, Billed: 400, Remaining: 600}, first.Financials); diff != "" {
		t.Fatalf("financials mismatch (-want +got):\n%s", diff)
	}

	s.Set(model.FieldContractName, "Beta")
	held, ok := s.Snapshot()
	if !ok || held.Value(model.FieldContractName) != "Alpha" {
		t.Fatalf("held snapshot should not see later edits: %+v", held.Fields)
	}

	first.Fields[model.FieldContractName] = "mutated"
	held, _ = s.Snapshot()
	if held.Value(model.FieldContractName) != "Alpha" {
		t.Fatalf("returned snapshot shares memory with the held one")
	}

	second := s.SaveDraft()
	if second.ID != "draft-2" || second.Value(model.FieldContractName) != "Beta" {
		t.Fatalf("second snapshot should replace the first: %+v", second)
	}
}

func TestLoadRecomputesDerivedFields(t *testing.T) {
	s := newStore(t)
	s.Load(mustDemo(t).State)

	if got := s.Value(model.FieldRemainingFunds); got != "750000.00" {
		t.Fatalf("remaining: want 750000.00, got %q", got)
	}
	if got := s.Value(model.FieldVacancies); got != "2" {
		t.Fatalf("vacancies: want 2, got %q", got)
	}
	if got := s.Value(model.FieldRatingValue); got != "4" {
		t.Fatalf("rating: want 4, got %q", got)
	}
}

func mustDemo(t *testing.T) model.Demo {
	t.Helper()
	demo, err := model.DemoDefaults()
	if err != nil {
		t.Fatalf("demo defaults: %v", err)
	}
	return demo
}

func serialize(s *store.Store, spec model.CollectionSpec) any {
	if spec.IsTable() {
		return collect.Table(s.Rows(spec.ID))
	}
	return collect.List(s.Items(spec.ID))
}
