package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmr "github.com/goliatone/go-pmr"
	"github.com/goliatone/go-pmr/internal/config"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/renderers/tui"
	"github.com/goliatone/go-pmr/pkg/slides"
)

// keepDriver accepts every default and declines to add records.
type keepDriver struct{}

func (keepDriver) Ask(_ context.Context, p tui.Prompt) (string, error) {
	return p.Default, nil
}

func (keepDriver) AddMore(context.Context, string) (bool, error) {
	return false, nil
}

func (keepDriver) Print(context.Context, string) error {
	return nil
}

func run(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a.out = &out
	a.errOut = &errOut
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeDraft(t *testing.T) string {
	t.Helper()
	demo, err := model.DemoDefaults()
	require.NoError(t, err)
	state := demo.State
	state.Fields[model.FieldContractName] = "Harbor Logistics"
	data, err := model.MarshalFormState(state)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, newApp(nil, nil, nil), "version")
	require.NoError(t, err)
	assert.Equal(t, "pmr "+pmr.Version+"\n", out)
}

func TestSlidesHonoursTemplatesDir(t *testing.T) {
	for _, engine := range []string{config.EnginePongo2, config.EngineGoTemplate} {
		t.Run(engine, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(dir, "templates", "partials"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "templates", "partials", "head.tpl"),
				[]byte(`<head><title>{{ "1750000"|currency }} billed</title></head>`), 0o644))
			t.Setenv("PMR_TEMPLATES_DIR", dir)
			t.Setenv("PMR_TEMPLATES_ENGINE", engine)

			out, _, err := run(t, newApp(nil, nil, nil), "slides", "--format", "html")
			require.NoError(t, err)
			assert.Contains(t, out, "<title>$1,750,000 billed</title>")
			assert.Contains(t, out, "DTESS Support Services")
		})
	}
}

func TestSlidesJSONFromDraft(t *testing.T) {
	out, _, err := run(t, newApp(nil, nil, nil), "slides", writeDraft(t), "--format", "json")
	require.NoError(t, err)

	var deck slides.Deck
	require.NoError(t, json.Unmarshal([]byte(out), &deck))
	assert.Equal(t, "Harbor Logistics", deck.ContractName)
	assert.Len(t, deck.Slides, 5)
	assert.Equal(t, []float64{2500000, 1750000, 750000}, deck.ChartSeries)
}

func TestSlidesPDFToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "review.pdf")
	_, errOut, err := run(t, newApp(nil, nil, nil), "slides", "--format", "pdf", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, errOut, "written to "+target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestSlidesDashboardHTMLDarkVariant(t *testing.T) {
	out, _, err := run(t, newApp(nil, nil, nil), "slides", "--page", "dashboard", "--variant", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, `data-variant="dark"`)
	assert.Contains(t, out, "DTESS Support Services")
}

func TestSlidesRejectsBadInput(t *testing.T) {
	_, _, err := run(t, newApp(nil, nil, nil), "slides", "--page", "cover")
	require.Error(t, err)

	_, _, err = run(t, newApp(nil, nil, nil), "slides", "--format", "docx")
	require.Error(t, err)

	_, _, err = run(t, newApp(nil, nil, nil), "slides", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestChartPNG(t *testing.T) {
	out, _, err := run(t, newApp(nil, nil, nil), "chart", "--name", "slide", "--width", "320", "--height", "200")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\x89PNG"))

	_, _, err = run(t, newApp(nil, nil, nil), "chart", "--name", "radar")
	require.Error(t, err)
}

func TestEditKeepsDraft(t *testing.T) {
	a := newApp(nil, nil, nil)
	a.driver = keepDriver{}

	out, _, err := run(t, a, "edit", writeDraft(t), "--tabs", "contract,financial")
	require.NoError(t, err)

	state, err := model.ParseFormState([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "Harbor Logistics", state.Value(model.FieldContractName))
	assert.Equal(t, "750000.00", state.Value(model.FieldRemainingFunds))
	assert.Len(t, state.Tables[model.CollectionStaffing], 2)
}

func TestEditRejectsUnknownTabAndFormat(t *testing.T) {
	a := newApp(nil, nil, nil)
	a.driver = keepDriver{}
	_, _, err := run(t, a, "edit", "--tabs", "slides")
	require.Error(t, err)

	_, _, err = run(t, a, "edit", "--format", "xml")
	require.Error(t, err)
}

func TestServeMountsDashboard(t *testing.T) {
	a := newApp(nil, io.Discard, io.Discard)
	cfg, err := config.Load("")
	require.NoError(t, err)
	a.cfg = cfg

	ctx, cancel := context.WithCancel(context.Background())
	handler, dash, err := a.buildServer(ctx, "/pmr")
	require.NoError(t, err)
	defer dash.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, listener, handler) }()

	res, err := http.Get("http://" + listener.Addr().String() + "/pmr/state")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"activeTab":"contract"`)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
