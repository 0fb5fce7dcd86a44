// Package testsupport holds fixture and golden-file helpers shared by package
// tests. Goldens are rewritten when UPDATE_GOLDENS is set.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/slides"
)

// DemoState returns the embedded demo form values.
func DemoState(t *testing.T) model.FormState {
	t.Helper()
	demo, err := model.DemoDefaults()
	if err != nil {
		t.Fatalf("demo defaults: %v", err)
	}
	return demo.State
}

// DemoDeck projects the demo state into a deck with a fixed snapshot id.
func DemoDeck(t *testing.T) slides.Deck {
	t.Helper()
	state := DemoState(t)
	snapshot := model.SlideSnapshot{
		ID:              "demo",
		Fields:          state.Fields,
		Staffing:        rows(state.Tables[model.CollectionStaffing]),
		Milestones:      rows(state.Tables[model.CollectionMilestones]),
		ActionItems:     rows(state.Tables[model.CollectionActionItems]),
		Accomplishments: texts(state.Lists[model.CollectionAccomplishments]),
		Risks:           texts(state.Lists[model.CollectionRisks]),
	}
	return slides.Project(snapshot)
}

func rows(in []model.DynamicRow) [][]string {
	out := make([][]string, 0, len(in))
	for _, row := range in {
		out = append(out, row.Cells)
	}
	return out
}

func texts(in []model.ListItem) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		out = append(out, item.Text)
	}
	return out
}

// WriteMaybeGolden writes raw data when UPDATE_GOLDENS is set and reports
// whether it did, so the caller can skip the comparison.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// MustReadGolden reads a golden file.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file as a string.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput runs render against a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
