package derive

import "github.com/goliatone/go-pmr/pkg/model"

// Chart names the chart a rule may push data into.
const ChartFinancial = "financial"

// Reader exposes field values by name. Missing fields read as "".
type Reader interface {
	Value(name string) string
}

// ChartUpdate is the data a rule asks the chart surface to draw. Skipped is set
// when the rule decided not to update the chart; Reason says why.
type ChartUpdate struct {
	Chart   string    `json:"chart"`
	Data    []float64 `json:"data,omitempty"`
	Skipped bool      `json:"skipped,omitempty"`
	Reason  string    `json:"reason,omitempty"`
}

// Outcome is the result of one rule evaluation.
type Outcome struct {
	Rule  string       `json:"rule"`
	Field string       `json:"field"`
	Value string       `json:"value"`
	Chart *ChartUpdate `json:"chart,omitempty"`
}

// Rule derives one output field from its inputs.
type Rule struct {
	Name    string
	Inputs  []string
	Output  string
	Compute func(Reader) Outcome
}

// Remaining computes funded - billed with zero fallback for either operand.
func Remaining(funded, billed string) float64 {
	return ParseNumberOr0(funded) - ParseNumberOr0(billed)
}

// Vacancies computes max(0, authorized - current) with zero fallback.
func Vacancies(authorized, current string) int64 {
	return max(0, ParseIntOr0(authorized)-ParseIntOr0(current))
}

// Financials evaluates the financial rule against a reader.
func Financials(r Reader) model.DerivedFinancials {
	funded := ParseNumberOr0(r.Value(model.FieldFundedValue))
	billed := ParseNumberOr0(r.Value(model.FieldBilledToDate))
	return model.DerivedFinancials{
		Funded:    funded,
		Billed:    billed,
		Remaining: funded - billed,
	}
}

// Staffing evaluates the staffing rule against a reader.
func Staffing(r Reader) model.DerivedStaffing {
	authorized := ParseIntOr0(r.Value(model.FieldAuthorizedHeadcount))
	current := ParseIntOr0(r.Value(model.FieldCurrentHeadcount))
	return model.DerivedStaffing{
		Authorized: authorized,
		Current:    current,
		Vacancies:  max(0, authorized-current),
	}
}

// FinancialRule fills remainingFunds and pushes (billed, remaining) to the
// financial chart. With guardUnfunded the chart push is skipped while funded
// is not positive, so editing billed alone against a zero funded value leaves
// the chart untouched.
func FinancialRule(guardUnfunded bool) Rule {
	return Rule{
		Name:   "financials",
		Inputs: []string{model.FieldFundedValue, model.FieldBilledToDate},
		Output: model.FieldRemainingFunds,
		Compute: func(r Reader) Outcome {
			fin := Financials(r)
			update := &ChartUpdate{Chart: ChartFinancial}
			if guardUnfunded && fin.Funded <= 0 {
				update.Skipped = true
				update.Reason = "funded value is not positive"
			} else {
				update.Data = []float64{fin.Billed, fin.Remaining}
			}
			return Outcome{
				Field: model.FieldRemainingFunds,
				Value: FormatAmount(fin.Remaining),
				Chart: update,
			}
		},
	}
}

// StaffingRule fills vacancies.
func StaffingRule() Rule {
	return Rule{
		Name:   "staffing",
		Inputs: []string{model.FieldAuthorizedHeadcount, model.FieldCurrentHeadcount},
		Output: model.FieldVacancies,
		Compute: func(r Reader) Outcome {
			return Outcome{
				Field: model.FieldVacancies,
				Value: FormatCount(Staffing(r).Vacancies),
			}
		},
	}
}

// RatingRule mirrors the satisfaction slider into its display label.
func RatingRule() Rule {
	return Rule{
		Name:   "rating",
		Inputs: []string{model.FieldCustomerRating},
		Output: model.FieldRatingValue,
		Compute: func(r Reader) Outcome {
			return Outcome{
				Field: model.FieldRatingValue,
				Value: r.Value(model.FieldCustomerRating),
			}
		},
	}
}
