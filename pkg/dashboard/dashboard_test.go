package dashboard_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-pmr/pkg/backend"
	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/dashboard"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/notify"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/slides"
	"github.com/goliatone/go-pmr/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	mu        sync.Mutex
	contract  *backend.ContractData
	financial *backend.FinancialData
	fetchErr  error
	saveErr   error
	saved     []backend.PMRData
}

func (f *fakeBackend) FetchContractData(_ context.Context, number string) (*backend.ContractData, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.contract, nil
}

func (f *fakeBackend) FetchFinancialData(_ context.Context, number string) (*backend.FinancialData, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.financial, nil
}

func (f *fakeBackend) SavePMRData(_ context.Context, data backend.PMRData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, data)
	return f.saveErr
}

func newDashboard(t *testing.T, options ...dashboard.Option) *dashboard.Dashboard {
	t.Helper()
	ids := 0
	base := []dashboard.Option{
		dashboard.WithNotifyOptions(notify.WithDisplay(time.Hour)),
		dashboard.WithStoreOptions(
			store.WithClock(func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }),
			store.WithIDGenerator(func() string {
				ids++
				return "draft-" + string(rune('0'+ids))
			}),
		),
	}
	d, err := dashboard.New(append(base, options...)...)
	if err != nil {
		t.Fatalf("new dashboard: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func boot(t *testing.T, d *dashboard.Dashboard) {
	t.Helper()
	if err := d.Boot(context.Background()); err != nil {
		t.Fatalf("boot: %v", err)
	}
}

func TestBootLoadsDemoAndOpensModal(t *testing.T) {
	d := newDashboard(t)
	boot(t, d)

	if got := d.Value(model.FieldRemainingFunds); got != "750000.00" {
		t.Fatalf("remaining: want 750000.00, got %q", got)
	}
	if len(d.Programs()) != 3 {
		t.Fatalf("expected three demo programs, got %d", len(d.Programs()))
	}

	view := d.View(render.PageDashboard)
	if !view.ModalOpen || view.ActiveTab != model.TabContract {
		t.Fatalf("unexpected boot view: modal=%v tab=%q", view.ModalOpen, view.ActiveTab)
	}
	if el, _ := d.Surface().Element(dashboard.ElementModal); !el.HasClass(dashboard.ClassOpen) {
		t.Fatalf("modal element should carry the open class")
	}
	if el, _ := d.Surface().Element(model.FieldVacancies); el.Text != "2" {
		t.Fatalf("vacancies should be mirrored to the surface, got %q", el.Text)
	}

	d.CloseModal()
	if el, _ := d.Surface().Element(dashboard.ElementModal); el.HasClass(dashboard.ClassOpen) {
		t.Fatalf("modal element should lose the open class")
	}
}

func TestBootWithoutModal(t *testing.T) {
	d := newDashboard(t, dashboard.WithModalOnBoot(false))
	boot(t, d)
	if d.View(render.PageDashboard).ModalOpen {
		t.Fatalf("modal should stay closed")
	}
}

func TestSetFieldUpdatesFinancialChart(t *testing.T) {
	d := newDashboard(t)
	boot(t, d)

	handle, _ := d.ChartHandle(charts.NameFinancial)
	before := handle.Revision()

	if !d.SetField(model.FieldBilledToDate, "2000000") {
		t.Fatalf("set billed should succeed")
	}
	data, _ := d.Chart(charts.NameFinancial)
	if diff := cmp.Diff([]float64{2000000, 500000}, data.Data); diff != "" {
		t.Fatalf("financial chart mismatch (-want +got):\n%s", diff)
	}
	if handle.Revision() != before+1 {
		t.Fatalf("expected one redraw, revision %d -> %d", before, handle.Revision())
	}
	if el, _ := d.Surface().Element(model.FieldRemainingFunds); el.Text != "500000.00" {
		t.Fatalf("remaining should be mirrored, got %q", el.Text)
	}
}

func TestUnfundedEditLeavesChartAlone(t *testing.T) {
	d := newDashboard(t)
	d.SetField(model.FieldBilledToDate, "100")

	data, _ := d.Chart(charts.NameFinancial)
	if diff := cmp.Diff(charts.FinancialDefaults().Data, data.Data); diff != "" {
		t.Fatalf("chart should keep its defaults (-want +got):\n%s", diff)
	}
	if got := d.Value(model.FieldRemainingFunds); got != "-100.00" {
		t.Fatalf("remaining: want -100.00, got %q", got)
	}
}

func TestSetFieldsSkipsDerivedAndUnknown(t *testing.T) {
	d := newDashboard(t)
	applied := d.SetFields(map[string]string{
		model.FieldContractName: "Alpha",
		model.FieldVacancies:    "9",
		"bogus":                 "x",
	})
	if applied != 1 {
		t.Fatalf("expected one applied field, got %d", applied)
	}
	if d.Value(model.FieldVacancies) == "9" {
		t.Fatalf("vacancies should not be writable, got %q", d.Value(model.FieldVacancies))
	}
}

func TestCollectionsAndUnknownTargets(t *testing.T) {
	d := newDashboard(t)
	boot(t, d)

	if !d.AddRow(model.CollectionStaffing) {
		t.Fatalf("append staffing row failed")
	}
	if !d.SetRow(model.CollectionStaffing, 2, []string{"Ada Lovelace", "Analyst", "Active"}) {
		t.Fatalf("set row failed")
	}
	if d.AddRow("missing") {
		t.Fatalf("unknown collection should be a no-op")
	}
	if d.SetRow(model.CollectionStaffing, 9, []string{"x"}) {
		t.Fatalf("out of range row should be a no-op")
	}
	if d.RemoveRecord(model.CollectionMilestones, 7) {
		t.Fatalf("out of range remove should be a no-op")
	}
	if d.AddRisk("   ", model.SeverityHigh) {
		t.Fatalf("blank risk should be ignored")
	}
	d.AddRisk("Supplier delay", model.SeverityHigh)
	d.AddAccomplishment("Passed audit")

	state := d.State()
	if got := state.Tables[model.CollectionStaffing][2].Cells; !cmp.Equal(got, []string{"Ada Lovelace", "Analyst", "Active"}) {
		t.Fatalf("unexpected staffing row %v", got)
	}
	if n := len(state.Lists[model.CollectionRisks]); n != 2 {
		t.Fatalf("expected two risks, got %d", n)
	}
	if n := len(state.Lists[model.CollectionAccomplishments]); n != 3 {
		t.Fatalf("expected three accomplishments, got %d", n)
	}

	if d.SwitchTab("nope") || d.ActiveTab() != model.TabContract {
		t.Fatalf("unknown tab should be ignored")
	}
	if d.ShowSlide("9") {
		t.Fatalf("unknown slide should be ignored")
	}
}

func TestSwitchTabTogglesSurface(t *testing.T) {
	d := newDashboard(t)
	if !d.SwitchTab(model.TabRisks) {
		t.Fatalf("switch tab failed")
	}
	if el, _ := d.Surface().Element(model.TabRisks); !el.HasClass(dashboard.ClassActive) {
		t.Fatalf("risks tab should be active")
	}
	if el, _ := d.Surface().Element(model.TabContract); el.HasClass(dashboard.ClassActive) {
		t.Fatalf("contract tab should be inactive")
	}
}

func TestSaveDraftNotifiesAndPersists(t *testing.T) {
	client := &fakeBackend{}
	d := newDashboard(t, dashboard.WithBackend(client))
	boot(t, d)

	snapshot := d.SaveDraft(context.Background())
	if snapshot.ID != "draft-1" {
		t.Fatalf("snapshot id: want draft-1, got %q", snapshot.ID)
	}
	if len(client.saved) != 1 || client.saved[0].ContractNumber != "FA8771-20-C-0001" {
		t.Fatalf("backend should receive the snapshot, got %+v", client.saved)
	}
	msg, ok := d.Notifications().Current()
	if !ok || msg.Text != dashboard.MessageDraftSaved || msg.Kind != notify.KindSuccess {
		t.Fatalf("unexpected notification %+v", msg)
	}
	if el, _ := d.Surface().Element(dashboard.ElementNotification); el.Text != dashboard.MessageDraftSaved || !el.HasClass(string(notify.KindSuccess)) {
		t.Fatalf("notification element not mirrored: %+v", el)
	}
}

func TestSnapshotIsolatedFromLaterEdits(t *testing.T) {
	d := newDashboard(t)
	boot(t, d)

	deck := d.GenerateSlides(context.Background())
	d.SetField(model.FieldContractName, "Renamed")

	held, ok := d.Deck()
	if !ok {
		t.Fatalf("deck should be kept")
	}
	if held.ContractName != "DTESS Support Services" || deck.ContractName != held.ContractName {
		t.Fatalf("deck should not see later edits, got %q", held.ContractName)
	}
}

func TestGenerateSlidesTwiceReflectsLatestSave(t *testing.T) {
	d := newDashboard(t)
	boot(t, d)

	first := d.GenerateSlides(context.Background())

	d.SetField(model.FieldFundedValue, "1000")
	d.SetField(model.FieldBilledToDate, "1500")
	if !d.RemoveRecord(model.CollectionRisks, 0) {
		t.Fatalf("remove risk failed")
	}
	second := d.GenerateSlides(context.Background())

	if second.SnapshotID == first.SnapshotID {
		t.Fatalf("second generation should take a new snapshot")
	}
	wantSeries := []float64{1000, 1500, -500}
	if diff := cmp.Diff(wantSeries, second.ChartSeries); diff != "" {
		t.Fatalf("deck series mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.DerivedFinancials{Funded: 1000, Billed: 1500, Remaining: -500}, second.Financials); diff != "" {
		t.Fatalf("deck financials mismatch (-want +got):\n%s", diff)
	}
	risks, _ := second.Slide(slides.SlideRisks)
	if len(risks.Risks) != 0 {
		t.Fatalf("removed risk should be gone from the deck, got %q", risks.Risks)
	}

	d.SetField(model.FieldFundedValue, "9999")
	d.SetField(model.FieldContractName, "Renamed")

	held, ok := d.Deck()
	if !ok {
		t.Fatalf("deck should be kept")
	}
	if diff := cmp.Diff(second, held); diff != "" {
		t.Fatalf("held deck should match the latest generation (-want +got):\n%s", diff)
	}
	data, _ := d.Chart(charts.NameSlide)
	if diff := cmp.Diff(wantSeries, data.Data); diff != "" {
		t.Fatalf("slide chart mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateSlides(t *testing.T) {
	d := newDashboard(t)
	boot(t, d)
	d.ShowSlide(slides.SlideRisks)

	deck := d.GenerateSlides(context.Background())

	if d.ActiveTab() != model.TabSlides {
		t.Fatalf("generate should switch to the slides tab, got %q", d.ActiveTab())
	}
	view := d.View(render.PageSlides)
	if view.ActiveSlide != slides.SlideOverview || view.Deck == nil {
		t.Fatalf("expected first slide active with a deck, got %q", view.ActiveSlide)
	}
	data, _ := d.Chart(charts.NameSlide)
	if diff := cmp.Diff(deck.ChartSeries, data.Data); diff != "" {
		t.Fatalf("slide chart mismatch (-want +got):\n%s", diff)
	}
	if el, _ := d.Surface().Element(dashboard.ElementDeckPeriod); el.Text != "March 2024" {
		t.Fatalf("period: want March 2024, got %q", el.Text)
	}
	if msg, _ := d.Notifications().Current(); msg.Text != dashboard.MessageSlidesGenerated {
		t.Fatalf("generate should replace the save message, got %q", msg.Text)
	}
	if el, _ := d.Surface().Element("slide-1"); !el.HasClass(dashboard.ClassActive) {
		t.Fatalf("first slide element should be active")
	}
}

func TestBackendFailureBecomesWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := &fakeBackend{fetchErr: errors.New("connection refused"), saveErr: errors.New("connection refused")}
	d := newDashboard(t, dashboard.WithBackend(client), dashboard.WithLogger(zap.New(core)))

	if err := d.Boot(context.Background()); err != nil {
		t.Fatalf("boot should survive backend errors: %v", err)
	}
	msg, ok := d.Notifications().Current()
	if !ok || msg.Kind != notify.KindWarning {
		t.Fatalf("expected warning notification, got %+v", msg)
	}

	snapshot := d.SaveDraft(context.Background())
	if snapshot.ID == "" {
		t.Fatalf("snapshot should be kept when the backend fails")
	}
	if logs.FilterMessage("save draft to backend failed").Len() != 1 {
		t.Fatalf("expected save failure to be logged")
	}
}

func TestSyncContractAppliesBackendData(t *testing.T) {
	client := &fakeBackend{
		contract:  &backend.ContractData{ContractNumber: "FA8771-20-C-0001", ProgramManager: "Dana Reyes"},
		financial: &backend.FinancialData{ContractNumber: "FA8771-20-C-0001", FundedValue: 3000000, BilledToDate: 1000000},
	}
	d := newDashboard(t, dashboard.WithBackend(client))
	boot(t, d)

	if got := d.Value(model.FieldPMName); got != "Dana Reyes" {
		t.Fatalf("pm name: want Dana Reyes, got %q", got)
	}
	if got := d.Value(model.FieldRemainingFunds); got != "2000000.00" {
		t.Fatalf("remaining: want 2000000.00, got %q", got)
	}
}

func TestFilterPrograms(t *testing.T) {
	programs := []model.Program{
		{Name: "Alpha", ContractNumber: "A-1", Manager: "Sarah", Status: "On Track"},
		{Name: "Beta", ContractNumber: "B-2", Manager: "David", Status: "At Risk"},
		{Name: "Gamma", ContractNumber: "C-3", Manager: "Sara", Status: "Delayed"},
	}
	cases := map[string][]string{
		"":        {"Alpha", "Beta", "Gamma"},
		"  ":      {"Alpha", "Beta", "Gamma"},
		"sara":    {"Alpha", "Gamma"},
		"AT RISK": {"Beta"},
		"nothing": {},
		"b-2":     {"Beta"},
	}
	for query, want := range cases {
		var got []string
		for _, p := range dashboard.FilterPrograms(programs, query) {
			got = append(got, p.Name)
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("filter %q mismatch (-want +got):\n%s", query, diff)
		}
	}

	if got := dashboard.LimitPrograms(programs, 2); len(got) != 2 {
		t.Fatalf("limit should truncate, got %d", len(got))
	}
}

func TestViewFiltersProgramsByQuery(t *testing.T) {
	d := newDashboard(t)
	boot(t, d)
	d.FilterPrograms("cyber")

	view := d.View(render.PageDashboard)
	if view.Query != "cyber" || len(view.Programs) != 1 || view.Programs[0].Name != "Cyber Range Modernization" {
		t.Fatalf("unexpected filtered view: %q %+v", view.Query, view.Programs)
	}

	d.CloseModal()
	view = d.View(render.PageDashboard)
	if view.Query != "" || len(view.Programs) != len(d.Programs()) {
		t.Fatalf("closing the modal should clear the query: %q %d", view.Query, len(view.Programs))
	}
}
