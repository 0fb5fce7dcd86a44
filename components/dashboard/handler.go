package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/dashboard"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/renderers/html"
	"github.com/goliatone/go-pmr/pkg/renderers/pdf"
	"github.com/goliatone/go-pmr/pkg/theming"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

func notFound(format string, args ...any) error {
	return StatusError{Code: http.StatusNotFound, Err: fmt.Errorf(format, args...)}
}

func badRequest(format string, args ...any) error {
	return StatusError{Code: http.StatusBadRequest, Err: fmt.Errorf(format, args...)}
}

type programsResponse struct {
	Data []model.Program `json:"data"`
}

type handler struct {
	dash *dashboard.Dashboard
	opts Options
	base string
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// HandlerWithOptions builds the dashboard handler for routes under basePath.
// Callers are expected to pass an Options value whose registry holds the
// renderers, see DefaultRenderers.
func HandlerWithOptions(dash *dashboard.Dashboard, basePath string, opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	if opts.Renderers == nil {
		opts.Renderers = render.NewRegistry()
	}
	h := &handler{dash: dash, opts: opts, base: normalizeBase(basePath)}

	mux := http.NewServeMux()
	h.route(mux, "GET /{$}", h.index)
	h.route(mux, "GET /state", h.state)
	h.route(mux, "GET /notification", h.notification)
	h.route(mux, "GET /programs", h.programs)
	h.route(mux, "GET /slides", h.slides)
	h.route(mux, "GET /slides.pdf", h.slidesPDF)
	h.route(mux, "GET /charts/{file}", h.chart)
	h.route(mux, "POST /fields", h.setFields)
	h.route(mux, "POST /tabs/{tab}", h.switchTab)
	h.route(mux, "POST /collections/{id}/append", h.appendRecord)
	h.route(mux, "POST /collections/{id}/items", h.addItem)
	h.route(mux, "POST /collections/{id}/{index}", h.setRow)
	h.route(mux, "POST /collections/{id}/{index}/remove", h.removeRecord)
	h.route(mux, "POST /draft", h.saveDraft)
	h.route(mux, "POST /slides/generate", h.generateSlides)
	h.route(mux, "POST /slides/{id}/show", h.showSlide)
	h.route(mux, "POST /modal/open", h.openModal)
	h.route(mux, "POST /modal/close", h.closeModal)

	assets := http.StripPrefix(h.base+"/assets/", http.FileServerFS(html.AssetsFS()))
	mux.Handle("GET "+h.base+"/assets/", h.guarded(assets))
	return mux
}

func (h *handler) route(mux *http.ServeMux, pattern string, fn handlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	mux.Handle(method+" "+h.base+path, h.guarded(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, r, err)
		}
	})))
}

func (h *handler) guarded(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.opts.Guard != nil {
			if err := h.opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// index renders the dashboard. The tab and modal query parameters only shape
// this response; the session itself changes through the POST routes.
func (h *handler) index(w http.ResponseWriter, r *http.Request) error {
	view := h.dash.View(render.PageDashboard)
	query := r.URL.Query()
	if tab := query.Get("tab"); tab != "" {
		if !model.IsTab(tab) {
			return notFound("unknown tab %q", tab)
		}
		view.ActiveTab = tab
	}
	if query.Get("modal") == "programs" {
		view.ModalOpen = true
		view.Query = query.Get(h.opts.SearchParam)
		view.Programs = dashboard.FilterPrograms(h.dash.Programs(), view.Query)
	}
	renderer, err := h.pick(r, RendererHTML)
	if err != nil {
		return err
	}
	return h.renderWith(w, r, renderer, view)
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) error {
	return h.render(w, r, RendererJSON, render.PageDashboard)
}

func (h *handler) slides(w http.ResponseWriter, r *http.Request) error {
	if _, ok := h.dash.Deck(); !ok {
		return notFound("no slides generated yet")
	}
	renderer, err := h.pick(r, RendererHTML)
	if err != nil {
		return err
	}
	return h.renderWith(w, r, renderer, h.dash.View(render.PageSlides))
}

func (h *handler) slidesPDF(w http.ResponseWriter, r *http.Request) error {
	if _, ok := h.dash.Deck(); !ok {
		return notFound("no slides generated yet")
	}
	w.Header().Set("Content-Disposition", `inline; filename="pmr-slides.pdf"`)
	return h.render(w, r, RendererPDF, render.PageSlides)
}

func (h *handler) notification(w http.ResponseWriter, r *http.Request) error {
	msg, ok := h.dash.Notifications().Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
	return writeJSON(w, r, http.StatusOK, msg)
}

func (h *handler) programs(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query().Get(h.opts.SearchParam)
	limit := parseInt(r.URL.Query().Get(h.opts.LimitParam))
	results := Search(h.dash.Programs(), query, limit, h.opts)
	if results == nil {
		results = []model.Program{}
	}
	return writeJSON(w, r, http.StatusOK, programsResponse{Data: results})
}

func (h *handler) chart(w http.ResponseWriter, r *http.Request) error {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		return notFound("chart %q not found", r.PathValue("file"))
	}
	dataset, ok := h.dash.Chart(name)
	if !ok {
		return notFound("chart %q not found", name)
	}
	cfg, err := h.theme(r)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	return charts.WritePNG(w, dataset, theming.Palette(cfg), h.opts.ChartSize)
}

func (h *handler) setFields(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return badRequest("parse form: %w", err)
	}
	values := map[string]string{}
	for _, spec := range model.Catalogue() {
		if _, ok := r.PostForm[spec.Name]; ok {
			values[spec.Name] = r.PostForm.Get(spec.Name)
		}
	}
	applied := h.dash.SetFields(values)
	h.opts.Logger.Debug("fields submitted", zap.Int("submitted", len(values)), zap.Int("applied", applied))
	return h.done(w, r, "/")
}

func (h *handler) switchTab(w http.ResponseWriter, r *http.Request) error {
	tab := r.PathValue("tab")
	if !h.dash.SwitchTab(tab) {
		return notFound("unknown tab %q", tab)
	}
	return h.done(w, r, "/")
}

func (h *handler) appendRecord(w http.ResponseWriter, r *http.Request) error {
	spec, err := collection(r)
	if err != nil {
		return err
	}
	if kind := r.FormValue("kind"); kind != "" && model.RecordKind(kind) != spec.Kind {
		return badRequest("record kind %q does not match collection %q", kind, spec.ID)
	}
	h.dash.AddRow(spec.ID)
	return h.done(w, r, "/")
}

func (h *handler) addItem(w http.ResponseWriter, r *http.Request) error {
	spec, err := collection(r)
	if err != nil {
		return err
	}
	if spec.IsTable() {
		return badRequest("collection %q holds rows, not items", spec.ID)
	}
	h.dash.AddListItem(spec.ID, r.FormValue("text"), model.ParseSeverity(r.FormValue("severity")))
	return h.done(w, r, "/")
}

func (h *handler) setRow(w http.ResponseWriter, r *http.Request) error {
	spec, err := collection(r)
	if err != nil {
		return err
	}
	if !spec.IsTable() {
		return badRequest("collection %q holds items, not rows", spec.ID)
	}
	index, err := recordIndex(r)
	if err != nil {
		return err
	}
	if err := r.ParseForm(); err != nil {
		return badRequest("parse form: %w", err)
	}
	cells := make([]string, len(spec.Columns))
	for i := range spec.Columns {
		cells[i] = r.PostForm.Get("cell" + strconv.Itoa(i))
	}
	if !h.dash.SetRow(spec.ID, index, cells) {
		return notFound("row %d of %q not found", index, spec.ID)
	}
	return h.done(w, r, "/")
}

func (h *handler) removeRecord(w http.ResponseWriter, r *http.Request) error {
	spec, err := collection(r)
	if err != nil {
		return err
	}
	index, err := recordIndex(r)
	if err != nil {
		return err
	}
	if !h.dash.RemoveRecord(spec.ID, index) {
		return notFound("record %d of %q not found", index, spec.ID)
	}
	return h.done(w, r, "/")
}

func (h *handler) saveDraft(w http.ResponseWriter, r *http.Request) error {
	h.dash.SaveDraft(r.Context())
	return h.done(w, r, "/")
}

func (h *handler) generateSlides(w http.ResponseWriter, r *http.Request) error {
	h.dash.GenerateSlides(r.Context())
	return h.done(w, r, "/slides")
}

func (h *handler) showSlide(w http.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")
	if !h.dash.ShowSlide(id) {
		return notFound("unknown slide %q", id)
	}
	return h.done(w, r, "/slides")
}

// openModal opens the portfolio modal for the session and stores the search
// query when the form carries one.
func (h *handler) openModal(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return badRequest("parse form: %w", err)
	}
	h.dash.OpenModal()
	if r.PostForm.Has(h.opts.SearchParam) {
		h.dash.FilterPrograms(r.PostForm.Get(h.opts.SearchParam))
	}
	return h.done(w, r, "/")
}

func (h *handler) closeModal(w http.ResponseWriter, r *http.Request) error {
	h.dash.CloseModal()
	return h.done(w, r, "/")
}

// done answers a successful action: the JSON view for JSON clients, a 303 to
// next otherwise.
func (h *handler) done(w http.ResponseWriter, r *http.Request, next string) error {
	if h.wantsJSON(r) {
		return h.render(w, r, RendererJSON, render.PageDashboard)
	}
	target := h.base + next
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
	return nil
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, name string, page render.Page) error {
	renderer, err := h.opts.Renderers.Lookup(name)
	if err != nil {
		return StatusError{Code: http.StatusNotAcceptable, Err: err}
	}
	return h.renderWith(w, r, renderer, h.dash.View(page))
}

func (h *handler) renderWith(w http.ResponseWriter, r *http.Request, renderer render.Renderer, view render.View) error {
	cfg, err := h.theme(r)
	if err != nil {
		return err
	}
	opts := render.RenderOptions{Theme: cfg, BasePath: h.base, Title: h.opts.Title}
	if h.opts.Hidden != nil {
		opts.Hidden = h.opts.Hidden(r)
	}
	out, err := renderer.Render(r.Context(), view, opts)
	if err != nil {
		if errors.Is(err, pdf.ErrNoDeck) {
			return notFound("no slides generated yet")
		}
		return fmt.Errorf("render %s: %w", renderer.Name(), err)
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return nil
	}
	_, err = w.Write(out)
	return err
}

func (h *handler) theme(r *http.Request) (*theme.RendererConfig, error) {
	if h.opts.ThemeSelector == nil {
		return nil, nil
	}
	name := h.opts.ThemeName
	variant := h.opts.ThemeVariant
	if value := r.URL.Query().Get("theme"); value != "" {
		name = value
	}
	if value := r.URL.Query().Get("variant"); value != "" {
		variant = value
	}
	cfg, err := theming.Resolve(h.opts.ThemeSelector, name, variant)
	if err != nil {
		return nil, badRequest("theme: %w", err)
	}
	return cfg, nil
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
	}
	if code >= http.StatusInternalServerError {
		h.opts.Logger.Error("dashboard request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		h.opts.Logger.Warn("dashboard request rejected", zap.String("path", r.URL.Path), zap.Int("status", code), zap.Error(err))
	}
	if h.wantsJSON(r) {
		_ = writeJSON(w, r, code, map[string]string{"error": err.Error()})
		return
	}
	http.Error(w, err.Error(), code)
}

func collection(r *http.Request) (model.CollectionSpec, error) {
	id := model.CollectionID(r.PathValue("id"))
	spec, ok := model.LookupCollection(id)
	if !ok {
		return model.CollectionSpec{}, notFound("unknown collection %q", id)
	}
	return spec, nil
}

func recordIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, badRequest("invalid record index %q", raw)
	}
	return index, nil
}

// pick resolves the renderer for a page: an explicit ?format= wins, then the
// Accept header, then fallback.
func (h *handler) pick(r *http.Request, fallback string) (render.Renderer, error) {
	name := r.URL.Query().Get("format")
	if name == "" {
		renderer, err := h.opts.Renderers.Negotiate(r.Header.Get("Accept"), fallback)
		if err != nil {
			return nil, StatusError{Code: http.StatusNotAcceptable, Err: err}
		}
		return renderer, nil
	}
	renderer, err := h.opts.Renderers.Lookup(name)
	if err != nil {
		return nil, StatusError{Code: http.StatusNotAcceptable, Err: err}
	}
	return renderer, nil
}

func (h *handler) wantsJSON(r *http.Request) bool {
	renderer, err := h.pick(r, RendererHTML)
	return err == nil && renderer.Name() == RendererJSON
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, payload any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	return enc.Encode(payload)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
