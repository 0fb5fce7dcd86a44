package dashboard

import (
	"github.com/goliatone/go-pmr/pkg/dashboard"
	"github.com/goliatone/go-pmr/pkg/model"
)

// Search filters the portfolio and applies the clamped limit.
func Search(programs []model.Program, query string, limit int, opts Options) []model.Program {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}
	return dashboard.LimitPrograms(dashboard.FilterPrograms(programs, query), limit)
}
