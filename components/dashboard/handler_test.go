package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	component "github.com/goliatone/go-pmr/components/dashboard"
	"github.com/goliatone/go-pmr/pkg/dashboard"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/notify"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/theming"
)

func newServer(t *testing.T, fns ...component.OptionFn) (*dashboard.Dashboard, *http.ServeMux) {
	t.Helper()
	dash, err := dashboard.New(dashboard.WithNotifyOptions(notify.WithDisplay(time.Hour)))
	require.NoError(t, err)
	t.Cleanup(dash.Close)
	require.NoError(t, dash.Boot(context.Background()))

	c, err := component.New(dash, fns...)
	require.NoError(t, err)

	mux := http.NewServeMux()
	pattern, err := c.RegisterRoutes(mux, "/pmr")
	require.NoError(t, err)
	require.Equal(t, "/pmr/", pattern)
	return dash, mux
}

func serve(mux http.Handler, method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestMountPath(t *testing.T) {
	assert.Equal(t, "/pmr/", component.MountPath("/pmr"))
	assert.Equal(t, "/pmr/", component.MountPath("pmr/"))
	assert.Equal(t, "/", component.MountPath(""))
}

func TestIndexRendersDashboard(t *testing.T) {
	_, mux := newServer(t)

	rec := serve(mux, http.MethodGet, "/pmr/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	body := rec.Body.String()
	assert.Contains(t, body, "DTESS Support Services")
	assert.Contains(t, body, `action="/pmr/fields"`)
	assert.Contains(t, body, `id="programsModal"`)
}

func TestIndexSearchesPortfolio(t *testing.T) {
	dash, mux := newServer(t)
	dash.CloseModal()

	rec := serve(mux, http.MethodGet, "/pmr/?modal=programs&q=cyber&tab=staffing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cyber Range Modernization")
	assert.NotContains(t, rec.Body.String(), "Base Operations Support")
	assert.Contains(t, rec.Body.String(), `class="tab-content active" id="staffing"`)

	view := dash.View(render.PageDashboard)
	assert.False(t, view.ModalOpen, "GET must not open the session modal")
	assert.Empty(t, view.Query, "GET must not store the search query")
	assert.Equal(t, model.TabContract, view.ActiveTab, "GET must not switch the session tab")

	rec = serve(mux, http.MethodGet, "/pmr/?tab=nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenModalStoresQuery(t *testing.T) {
	dash, mux := newServer(t)
	dash.CloseModal()

	rec := serve(mux, http.MethodPost, "/pmr/modal/open", url.Values{"q": {"cyber"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	view := dash.View(render.PageDashboard)
	assert.True(t, view.ModalOpen)
	assert.Equal(t, "cyber", view.Query)
	require.Len(t, view.Programs, 1)

	rec = serve(mux, http.MethodPost, "/pmr/modal/close", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	view = dash.View(render.PageDashboard)
	assert.False(t, view.ModalOpen)
	assert.Empty(t, view.Query)
}

func TestSetFieldsRedirectsAndDerives(t *testing.T) {
	dash, mux := newServer(t)

	form := url.Values{model.FieldFundedValue: {"3000000"}, model.FieldRemainingFunds: {"1"}}
	rec := serve(mux, http.MethodPost, "/pmr/fields", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pmr/", rec.Header().Get("Location"))
	assert.Equal(t, "1250000.00", dash.Value(model.FieldRemainingFunds))
}

func TestActionsAnswerJSON(t *testing.T) {
	_, mux := newServer(t)

	rec := serve(mux, http.MethodPost, "/pmr/tabs/financial", url.Values{}, "Accept", "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var view render.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, model.TabFinancial, view.ActiveTab)
}

func TestUnknownTargets(t *testing.T) {
	_, mux := newServer(t)

	cases := []struct {
		target string
		code   int
	}{
		{"/pmr/tabs/nope", http.StatusNotFound},
		{"/pmr/collections/missing/append", http.StatusNotFound},
		{"/pmr/collections/staffingTable/x/remove", http.StatusBadRequest},
		{"/pmr/collections/staffingTable/9/remove", http.StatusNotFound},
		{"/pmr/collections/risks-list/0", http.StatusBadRequest},
		{"/pmr/slides/9/show", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := serve(mux, http.MethodPost, tc.target, url.Values{})
		assert.Equal(t, tc.code, rec.Code, tc.target)
	}
}

func TestCollectionRoutes(t *testing.T) {
	dash, mux := newServer(t)

	rec := serve(mux, http.MethodPost, "/pmr/collections/staffingTable/append", url.Values{"kind": {string(model.KindStaffMember)}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serve(mux, http.MethodPost, "/pmr/collections/staffingTable/2", url.Values{
		"cell0": {"Ada Lovelace"},
		"cell1": {"Analyst"},
		"cell2": {"Active"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serve(mux, http.MethodPost, "/pmr/collections/risks-list/items", url.Values{"text": {"Vendor slip"}, "severity": {"High"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serve(mux, http.MethodPost, "/pmr/collections/accomplishments-list/0/remove", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	state := dash.State()
	assert.Equal(t, []string{"Ada Lovelace", "Analyst", "Active"}, state.Tables[model.CollectionStaffing][2].Cells)
	risks := state.Lists[model.CollectionRisks]
	require.Len(t, risks, 2)
	assert.Equal(t, model.ListItem{Text: "Vendor slip", Severity: model.SeverityHigh}, risks[1])
	assert.Len(t, state.Lists[model.CollectionAccomplishments], 1)

	rec = serve(mux, http.MethodPost, "/pmr/collections/staffingTable/append", url.Values{"kind": {string(model.KindRisk)}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSlidesFlow(t *testing.T) {
	_, mux := newServer(t, component.WithTheme(mustSelector(t), theming.DefaultTheme, "dark"))

	rec := serve(mux, http.MethodGet, "/pmr/slides", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(mux, http.MethodPost, "/pmr/slides/generate", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/pmr/slides", rec.Header().Get("Location"))

	rec = serve(mux, http.MethodPost, "/pmr/slides/3/show", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = serve(mux, http.MethodGet, "/pmr/slides", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-variant="dark"`)

	rec = serve(mux, http.MethodGet, "/pmr/slides.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = serve(mux, http.MethodGet, "/pmr/slides?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"snapshotId"`)
}

func TestChartPNG(t *testing.T) {
	_, mux := newServer(t)

	rec := serve(mux, http.MethodGet, "/pmr/charts/financial.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = serve(mux, http.MethodGet, "/pmr/charts/other.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProgramsSearchClampsLimit(t *testing.T) {
	_, mux := newServer(t, component.WithMaxLimit(2))

	rec := serve(mux, http.MethodGet, "/pmr/programs?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data []model.Program `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Len(t, payload.Data, 2)

	rec = serve(mux, http.MethodGet, "/pmr/programs?q=nothing-matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestNotificationEndpoint(t *testing.T) {
	_, mux := newServer(t)

	rec := serve(mux, http.MethodGet, "/pmr/notification", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	serve(mux, http.MethodPost, "/pmr/draft", url.Values{})
	rec = serve(mux, http.MethodGet, "/pmr/notification", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var msg notify.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	assert.Equal(t, dashboard.MessageDraftSaved, msg.Text)
	assert.Equal(t, notify.KindSuccess, msg.Kind)
}

func TestGuardRejects(t *testing.T) {
	_, mux := newServer(t, component.WithGuard(func(*http.Request) error {
		return component.StatusError{Code: http.StatusUnauthorized, Err: errors.New("login required")}
	}))

	rec := serve(mux, http.MethodGet, "/pmr/", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = serve(mux, http.MethodGet, "/pmr/assets/pmr.css", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHiddenFieldsAndAssets(t *testing.T) {
	_, mux := newServer(t, component.WithHidden(func(*http.Request) map[string]string {
		return map[string]string{"csrf": "tok-123"}
	}))

	rec := serve(mux, http.MethodGet, "/pmr/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="tok-123"`)

	rec = serve(mux, http.MethodGet, "/pmr/assets/pmr.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--")
}

func mustSelector(t *testing.T) *theming.Selector {
	t.Helper()
	selector, err := theming.NewSelector()
	require.NoError(t, err)
	return selector
}

func TestIndexNegotiatesRenderer(t *testing.T) {
	_, mux := newServer(t)

	rec := serve(mux, http.MethodGet, "/pmr/", nil, "Accept", "application/json;q=0.9, text/plain;q=0.1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))

	rec = serve(mux, http.MethodGet, "/pmr/?format=docx", nil)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)

	rec = serve(mux, http.MethodGet, "/pmr/?format=pdf", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
