// Package dashboard is the controller that owns one editing session: the form
// store, the derivation engine, both chart handles, the notification channel,
// the rendering surface and the generated deck. Every user action is a method
// here; actions are serialized so the HTTP layer may call them concurrently.
package dashboard

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-pmr/pkg/backend"
	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/notify"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/slides"
	"github.com/goliatone/go-pmr/pkg/store"
	"github.com/goliatone/go-pmr/pkg/surface"
)

// Notification texts.
const (
	MessageDraftSaved      = "Draft saved successfully!"
	MessageSlidesGenerated = "Slides generated successfully!"
	MessageBackendFailed   = "Backend unavailable, changes kept locally"
)

// Surface element names written besides the field names.
const (
	ElementModal        = "programsModal"
	ElementNotification = "notification"
	ElementDeckName     = "slide-contract-name"
	ElementDeckNumber   = "slide-contract-number"
	ElementDeckManager  = "slide-pm-name"
	ElementDeckPeriod   = "slide-period"
	ClassActive         = "active"
	ClassOpen           = "open"
)

// Dashboard is safe for concurrent use.
type Dashboard struct {
	mu sync.Mutex

	logger    *zap.Logger
	backend   backend.Client
	store     *store.Store
	notifier  *notify.Channel
	surface   *surface.Memory
	financial *charts.Handle
	slide     *charts.Handle
	demo      *model.Demo

	modalOnBoot bool
	activeTab   string
	activeSlide string
	modalOpen   bool
	query       string
	programs    []model.Program
	deck        *slides.Deck
}

// New wires a dashboard. The form starts empty; call Boot to load demo data.
func New(options ...Option) (*Dashboard, error) {
	cfg := defaultConfig()
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	engine := cfg.engine
	if engine == nil {
		var err error
		engine, err = derive.New(cfg.deriveOpts...)
		if err != nil {
			return nil, fmt.Errorf("dashboard: derivation engine: %w", err)
		}
	}

	mem := cfg.surface
	if mem == nil {
		mem = surface.NewMemory()
	}
	mem.Register(SurfaceNames()...)

	d := &Dashboard{
		logger:      cfg.logger,
		backend:     cfg.backend,
		surface:     mem,
		financial:   charts.NewHandle(charts.NameFinancial, charts.FinancialDefaults()),
		slide:       charts.NewHandle(charts.NameSlide, charts.SlideDefaults()),
		demo:        cfg.demo,
		modalOnBoot: cfg.modalOnBoot,
		activeTab:   model.TabContract,
		activeSlide: slides.SlideOverview,
	}

	storeOpts := append([]store.Option{store.WithEngine(engine), store.WithLogger(cfg.logger)}, cfg.storeOpts...)
	d.store = store.New(storeOpts...)
	d.store.Subscribe(d.onStoreEvent)

	notifyOpts := append([]notify.Option{notify.WithListener(d.onNotification)}, cfg.notifyOpts...)
	d.notifier = notify.New(notifyOpts...)

	d.syncTabsLocked()
	d.syncSlidesLocked()
	return d, nil
}

// SurfaceNames lists every element the dashboard writes to.
func SurfaceNames() []string {
	names := []string{ElementModal, ElementNotification, ElementDeckName, ElementDeckNumber, ElementDeckManager, ElementDeckPeriod}
	for _, spec := range model.Catalogue() {
		names = append(names, spec.Name)
	}
	names = append(names, model.Tabs()...)
	for _, id := range []string{slides.SlideOverview, slides.SlideFinancial, slides.SlideStaffing, slides.SlideSchedule, slides.SlideRisks} {
		names = append(names, slideElement(id))
	}
	return names
}

func slideElement(id string) string {
	return "slide-" + id
}

// Boot loads the demo data, opens the portfolio modal once and pulls
// contract and financial data from the backend for the demo contract.
func (d *Dashboard) Boot(ctx context.Context) error {
	demo := d.demo
	if demo == nil {
		loaded, err := model.DemoDefaults()
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		demo = &loaded
	}

	d.mu.Lock()
	d.store.Load(demo.State)
	d.programs = slices.Clone(demo.Programs)
	d.activeTab = model.TabContract
	d.syncTabsLocked()
	if d.modalOnBoot {
		d.setModalLocked(true)
	}
	d.mu.Unlock()

	d.logger.Info("dashboard booted",
		zap.String("contract", demo.State.Value(model.FieldContractNumber)),
		zap.Int("programs", len(demo.Programs)),
	)
	if err := ctx.Err(); err != nil {
		return err
	}
	d.SyncContract(ctx)
	return nil
}

// Close stops pending notification timers.
func (d *Dashboard) Close() {
	d.notifier.Close()
}

// Subscribe registers a store listener. Listeners run while the dashboard
// lock is held and must not call back into the dashboard.
func (d *Dashboard) Subscribe(listener store.Listener) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	cancel := d.store.Subscribe(listener)
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		cancel()
	}
}

// Notifications exposes the notification channel, e.g. to subscribe.
func (d *Dashboard) Notifications() *notify.Channel {
	return d.notifier
}

// Surface exposes the mirrored rendering surface.
func (d *Dashboard) Surface() *surface.Memory {
	return d.surface
}

// State returns a copy of the live form.
func (d *Dashboard) State() model.FormState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.State()
}

// Value reads one field.
func (d *Dashboard) Value(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Value(name)
}

// SetField writes one field and runs its derivations before returning.
func (d *Dashboard) SetField(name, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Set(name, value)
}

// SetFields writes several fields in catalogue order and reports how many
// were accepted. Unknown and derived names are skipped.
func (d *Dashboard) SetFields(values map[string]string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	applied := 0
	for _, spec := range model.Catalogue() {
		value, ok := values[spec.Name]
		if !ok || spec.ReadOnly {
			continue
		}
		if d.store.Value(spec.Name) == value {
			continue
		}
		if d.store.Set(spec.Name, value) {
			applied++
		}
	}
	return applied
}

// AddRow appends a blank record to a collection.
func (d *Dashboard) AddRow(id model.CollectionID) bool {
	spec, ok := model.LookupCollection(id)
	if !ok {
		d.logger.Warn("append to unknown collection", zap.String("collection", string(id)))
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Append(id, spec.Kind)
}

// RemoveRecord removes the row or list item at index.
func (d *Dashboard) RemoveRecord(id model.CollectionID, index int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Remove(id, index)
}

// SetCell edits one cell of a table row.
func (d *Dashboard) SetCell(id model.CollectionID, index, column int, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.SetCell(id, index, column, value)
}

// SetRow writes cells left to right; extra cells are ignored.
func (d *Dashboard) SetRow(id model.CollectionID, index int, cells []string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if index < 0 || index >= len(d.store.Rows(id)) {
		d.logger.Warn("row out of range", zap.String("collection", string(id)), zap.Int("index", index))
		return false
	}
	ok := true
	for column, value := range cells {
		if d.store.Rows(id)[index].Cell(column) == value {
			continue
		}
		ok = d.store.SetCell(id, index, column, value) && ok
	}
	return ok
}

// AddListItem appends an accomplishment or risk; blank text is ignored.
func (d *Dashboard) AddListItem(id model.CollectionID, text string, severity model.Severity) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.AddListItem(id, text, severity)
}

// AddAccomplishment appends to the accomplishments list.
func (d *Dashboard) AddAccomplishment(text string) bool {
	return d.AddListItem(model.CollectionAccomplishments, text, model.SeverityNone)
}

// AddRisk appends to the risks list.
func (d *Dashboard) AddRisk(text string, severity model.Severity) bool {
	return d.AddListItem(model.CollectionRisks, text, severity)
}

// SaveDraft captures a snapshot, hands it to the backend and notifies.
// Backend failures are logged and reported as a warning; the snapshot is kept
// either way.
func (d *Dashboard) SaveDraft(ctx context.Context) model.SlideSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saveDraftLocked(ctx)
}

func (d *Dashboard) saveDraftLocked(ctx context.Context) model.SlideSnapshot {
	snapshot := d.store.SaveDraft()
	err := d.backend.SavePMRData(ctx, backend.PMRData{
		ContractNumber: snapshot.Value(model.FieldContractNumber),
		Snapshot:       snapshot,
	})
	if err != nil {
		d.logger.Warn("save draft to backend failed", zap.String("snapshot", snapshot.ID), zap.Error(err))
		d.notifier.Warning(MessageBackendFailed)
		return snapshot
	}
	d.logger.Info("draft saved", zap.String("snapshot", snapshot.ID))
	d.notifier.Success(MessageDraftSaved)
	return snapshot
}

// GenerateSlides saves a draft, projects it into a deck, redraws the slide
// chart with (funded, billed, remaining) and switches to the slides tab.
func (d *Dashboard) GenerateSlides(ctx context.Context) slides.Deck {
	d.mu.Lock()
	defer d.mu.Unlock()

	snapshot := d.saveDraftLocked(ctx)
	deck := slides.Project(snapshot)
	d.deck = &deck
	d.slide.Update(deck.ChartSeries)

	d.surface.SetText(ElementDeckName, deck.ContractName)
	d.surface.SetText(ElementDeckNumber, deck.ContractNumber)
	d.surface.SetText(ElementDeckManager, deck.Manager)
	if deck.Period != "" {
		d.surface.SetText(ElementDeckPeriod, deck.Period)
	}

	d.activeTab = model.TabSlides
	d.syncTabsLocked()
	d.activeSlide = slides.SlideOverview
	d.syncSlidesLocked()

	d.logger.Info("slides generated", zap.String("snapshot", deck.SnapshotID), zap.Int("slides", len(deck.Slides)))
	d.notifier.Success(MessageSlidesGenerated)
	return deck
}

// Deck returns the last generated deck.
func (d *Dashboard) Deck() (slides.Deck, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deck == nil {
		return slides.Deck{}, false
	}
	return *d.deck, true
}

// SwitchTab activates a tab; unknown tabs are logged and ignored.
func (d *Dashboard) SwitchTab(tab string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !model.IsTab(tab) {
		d.logger.Warn("switch to unknown tab", zap.String("tab", tab))
		return false
	}
	d.activeTab = tab
	d.syncTabsLocked()
	return true
}

// ActiveTab reports the active tab.
func (d *Dashboard) ActiveTab() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeTab
}

// ShowSlide activates one slide of the deck.
func (d *Dashboard) ShowSlide(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !isSlide(id) {
		d.logger.Warn("show unknown slide", zap.String("slide", id))
		return false
	}
	d.activeSlide = id
	d.syncSlidesLocked()
	return true
}

// OpenModal shows the portfolio modal.
func (d *Dashboard) OpenModal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setModalLocked(true)
}

// CloseModal hides the portfolio modal.
func (d *Dashboard) CloseModal() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setModalLocked(false)
}

// FilterPrograms stores the portfolio query and returns the matching rows.
func (d *Dashboard) FilterPrograms(query string) []model.Program {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.query = query
	return FilterPrograms(d.programs, query)
}

// Programs returns the full portfolio.
func (d *Dashboard) Programs() []model.Program {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.programs)
}

// Chart returns the current dataset of a chart by name.
func (d *Dashboard) Chart(name string) (charts.Dataset, bool) {
	switch name {
	case charts.NameFinancial:
		return d.financial.Dataset(), true
	case charts.NameSlide:
		return d.slide.Dataset(), true
	default:
		return charts.Dataset{}, false
	}
}

// ChartHandle exposes a chart handle so callers can observe redraws.
func (d *Dashboard) ChartHandle(name string) (*charts.Handle, bool) {
	switch name {
	case charts.NameFinancial:
		return d.financial, true
	case charts.NameSlide:
		return d.slide, true
	default:
		return nil, false
	}
}

// SyncContract pulls contract and financial data for the current contract
// number and writes them into the form. Failures are logged and notified.
func (d *Dashboard) SyncContract(ctx context.Context) {
	number := d.Value(model.FieldContractNumber)
	if number == "" {
		return
	}

	contract, err := d.backend.FetchContractData(ctx, number)
	if err != nil {
		d.backendFailed("fetch contract data", number, err)
		return
	}
	financial, err := d.backend.FetchFinancialData(ctx, number)
	if err != nil {
		d.backendFailed("fetch financial data", number, err)
		return
	}

	values := map[string]string{}
	if contract != nil {
		for name, value := range contract.Fields() {
			values[name] = value
		}
	}
	if financial != nil {
		for name, value := range financial.Fields() {
			values[name] = value
		}
	}
	if len(values) == 0 {
		return
	}
	applied := d.SetFields(values)
	d.logger.Info("contract synced", zap.String("contract", number), zap.Int("fields", applied))
}

func (d *Dashboard) backendFailed(op, number string, err error) {
	d.logger.Warn("backend call failed", zap.String("op", op), zap.String("contract", number), zap.Error(err))
	d.notifier.Warning(MessageBackendFailed)
}

// View captures everything a renderer needs for page.
func (d *Dashboard) View(page render.Page) render.View {
	d.mu.Lock()
	defer d.mu.Unlock()

	view := render.View{
		Page:        page,
		State:       d.store.State(),
		ActiveTab:   d.activeTab,
		ActiveSlide: d.activeSlide,
		ModalOpen:   d.modalOpen,
		Query:       d.query,
		Programs:    FilterPrograms(d.programs, d.query),
		Charts: map[string]charts.Dataset{
			charts.NameFinancial: d.financial.Dataset(),
			charts.NameSlide:     d.slide.Dataset(),
		},
	}
	if d.deck != nil {
		deck := *d.deck
		view.Deck = &deck
	}
	if msg, ok := d.notifier.Current(); ok {
		view.Notification = &msg
	}
	return view
}

func (d *Dashboard) onStoreEvent(e store.Event) {
	switch e.Kind {
	case store.EventFieldChanged, store.EventFieldDerived:
		if !d.surface.SetText(e.Field, e.Value) {
			d.logger.Warn("surface target missing", zap.String("field", e.Field))
		}
	case store.EventChartUpdated:
		if e.Chart != nil && e.Chart.Chart == derive.ChartFinancial {
			d.financial.Update(e.Chart.Data)
		}
	case store.EventStateLoaded:
		for _, spec := range model.Catalogue() {
			d.surface.SetText(spec.Name, d.store.Value(spec.Name))
		}
	}
}

func (d *Dashboard) onNotification(msg notify.Message) {
	d.surface.SetText(ElementNotification, msg.Text)
	for _, kind := range []notify.Kind{notify.KindInfo, notify.KindSuccess, notify.KindWarning, notify.KindError} {
		d.surface.Toggle(ElementNotification, string(kind), msg.Kind == kind && msg.Phase != notify.PhaseDismissed)
	}
	for _, phase := range []notify.Phase{notify.PhaseShown, notify.PhaseFading, notify.PhaseDismissed} {
		d.surface.Toggle(ElementNotification, string(phase), msg.Phase == phase)
	}
}

func (d *Dashboard) syncTabsLocked() {
	for _, tab := range model.Tabs() {
		d.surface.Toggle(tab, ClassActive, tab == d.activeTab)
	}
}

func (d *Dashboard) syncSlidesLocked() {
	for i := 1; i <= 5; i++ {
		id := strconv.Itoa(i)
		d.surface.Toggle(slideElement(id), ClassActive, id == d.activeSlide)
	}
}

func (d *Dashboard) setModalLocked(open bool) {
	d.modalOpen = open
	if !open {
		d.query = ""
	}
	d.surface.Toggle(ElementModal, ClassOpen, open)
}

func isSlide(id string) bool {
	switch id {
	case slides.SlideOverview, slides.SlideFinancial, slides.SlideStaffing, slides.SlideSchedule, slides.SlideRisks:
		return true
	default:
		return false
	}
}
