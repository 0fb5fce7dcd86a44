package dashboard

import (
	"slices"
	"strings"

	"github.com/goliatone/go-pmr/pkg/model"
)

// FilterPrograms keeps the programs where any cell contains query, ignoring
// case. Order is preserved; a blank query keeps every row.
func FilterPrograms(programs []model.Program, query string) []model.Program {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(programs)
	}
	out := make([]model.Program, 0, len(programs))
	for _, program := range programs {
		if slices.ContainsFunc(program.Cells(), func(cell string) bool {
			return strings.Contains(strings.ToLower(cell), q)
		}) {
			out = append(out, program)
		}
	}
	return out
}

// LimitPrograms truncates to limit rows; limit <= 0 keeps everything.
func LimitPrograms(programs []model.Program, limit int) []model.Program {
	if limit <= 0 || len(programs) <= limit {
		return programs
	}
	return programs[:limit]
}
