package pmr_test

import (
	"context"
	"encoding/json"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	pmr "github.com/goliatone/go-pmr"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/slides"
	"github.com/goliatone/go-pmr/pkg/testsupport"
	"github.com/goliatone/go-pmr/pkg/theming"
)

func TestGenerateSlidesJSONMatchesProjection(t *testing.T) {
	gen, err := pmr.NewGenerator()
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	out, err := gen.Generate(context.Background(), pmr.Request{
		State:    testsupport.DemoState(t),
		Page:     render.PageSlides,
		Renderer: "json",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var got slides.Deck
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode deck: %v", err)
	}
	want := testsupport.DemoDeck(t)
	if diff := cmp.Diff(want.Slides, got.Slides, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("slides mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateHTMLWithTheme(t *testing.T) {
	selector, err := theming.NewSelector()
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	gen, err := pmr.NewGenerator(pmr.WithThemeSelector(selector))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	out, err := gen.Generate(context.Background(), pmr.Request{
		State:        testsupport.DemoState(t),
		Page:         render.PageDashboard,
		Renderer:     "html",
		ThemeName:    theming.DefaultTheme,
		ThemeVariant: "dark",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	html := string(out)
	for _, want := range []string{`data-variant="dark"`, "DTESS Support Services", "750000.00"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(html, "Draft saved") {
		t.Errorf("one-shot output should not carry a notification")
	}
}

func TestGenerateRejectsUnknownRenderer(t *testing.T) {
	gen, err := pmr.NewGenerator()
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, err := gen.Generate(context.Background(), pmr.Request{State: model.NewFormState(), Renderer: "docx"}); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
	if _, err := gen.Generate(context.Background(), pmr.Request{State: model.NewFormState()}); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}

func TestViewDerivesFromDraft(t *testing.T) {
	gen, err := pmr.NewGenerator()
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	state := model.NewFormState()
	state.Fields[model.FieldAuthorizedHeadcount] = "10"
	state.Fields[model.FieldCurrentHeadcount] = "4"

	view, err := gen.View(context.Background(), state, render.PageDashboard)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if got := view.State.Value(model.FieldVacancies); got != "6" {
		t.Fatalf("vacancies: want 6, got %q", got)
	}
	if view.Deck != nil || view.Notification != nil {
		t.Fatalf("dashboard view should have no deck or notification")
	}
}

func TestEmbeddedFS(t *testing.T) {
	if _, err := fs.Stat(pmr.EmbeddedTemplates(), "templates/dashboard.tpl"); err != nil {
		t.Fatalf("dashboard template missing: %v", err)
	}
	if _, err := fs.ReadFile(pmr.EmbeddedAssets(), "pmr.css"); err != nil {
		t.Fatalf("stylesheet missing: %v", err)
	}
}
