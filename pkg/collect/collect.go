// Package collect turns the dynamic collections of a form into the plain
// record lists consumed by snapshots and slide projections.
package collect

import (
	"iter"
	"strings"

	"github.com/goliatone/go-pmr/pkg/model"
)

// Rows yields the cells of each non-blank row, in order. A row is blank when
// every cell is empty after trimming. Cells are copied so consumers cannot
// mutate the source. The sequence can be ranged over any number of times.
func Rows(rows []model.DynamicRow) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		for _, row := range rows {
			if row.IsBlank() {
				continue
			}
			if !yield(append([]string(nil), row.Cells...)) {
				return
			}
		}
	}
}

// ListItems yields the trimmed text of each non-blank item, in order.
func ListItems(items []model.ListItem) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, item := range items {
			text := strings.TrimSpace(item.Text)
			if text == "" {
				continue
			}
			if !yield(text) {
				return
			}
		}
	}
}

// Table materialises Rows. It never returns nil so encoders emit [].
func Table(rows []model.DynamicRow) [][]string {
	out := [][]string{}
	for cells := range Rows(rows) {
		out = append(out, cells)
	}
	return out
}

// List materialises ListItems. It never returns nil.
func List(items []model.ListItem) []string {
	out := []string{}
	for text := range ListItems(items) {
		out = append(out, text)
	}
	return out
}
