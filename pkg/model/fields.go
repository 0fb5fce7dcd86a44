package model

import "strings"

// FieldKind is the simplified enum for the value types the dashboard captures.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindRichText FieldKind = "richtext"
	FieldKindDate     FieldKind = "date"
	FieldKindMonth    FieldKind = "month"
	FieldKindCurrency FieldKind = "currency"
	FieldKindCount    FieldKind = "count"
	FieldKindRange    FieldKind = "range"
	FieldKindStatus   FieldKind = "status"
)

// Tab identifiers. The slides tab holds no inputs; it hosts the projection.
const (
	TabContract  = "contract"
	TabFinancial = "financial"
	TabStaffing  = "staffing"
	TabSchedule  = "schedule"
	TabRisks     = "risks"
	TabSlides    = "slides"
)

// Tabs lists every tab in display order.
func Tabs() []string {
	return []string{TabContract, TabFinancial, TabStaffing, TabSchedule, TabRisks, TabSlides}
}

// Field names match the control names used by the rendering surface.
const (
	FieldContractName     = "contractName"
	FieldContractNumber   = "contractNumber"
	FieldPMName           = "pmName"
	FieldReportingPeriod  = "reportingPeriod"
	FieldPopStart         = "popStart"
	FieldPopEnd           = "popEnd"
	FieldOverallStatus    = "overallStatus"
	FieldExecutiveSummary = "executiveSummary"

	FieldFundedValue    = "fundedValue"
	FieldBilledToDate   = "billedToDate"
	FieldRemainingFunds = "remainingFunds"
	FieldBurnRate       = "burnRate"
	FieldEAC            = "eac"

	FieldAuthorizedHeadcount = "authorizedHeadcount"
	FieldCurrentHeadcount    = "currentHeadcount"
	FieldVacancies           = "vacancies"
	FieldCustomerRating      = "customerRating"
	FieldRatingValue         = "ratingValue"
	FieldCustomerFeedback    = "customerFeedback"
)

// FieldSpec describes a single named control. Derived fields are ReadOnly:
// the store refuses direct writes and only the derivation engine fills them.
type FieldSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Label       string    `json:"label" yaml:"label"`
	Kind        FieldKind `json:"kind" yaml:"kind"`
	Tab         string    `json:"tab" yaml:"tab"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"`
	ReadOnly    bool      `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Min         int       `json:"min,omitempty" yaml:"min,omitempty"`
	Max         int       `json:"max,omitempty" yaml:"max,omitempty"`
}

var catalogue = []FieldSpec{
	{Name: FieldContractName, Label: "Contract Name", Kind: FieldKindText, Tab: TabContract, Placeholder: "Contract name"},
	{Name: FieldContractNumber, Label: "Contract Number", Kind: FieldKindText, Tab: TabContract, Placeholder: "FA8771-20-C-0001"},
	{Name: FieldPMName, Label: "Program Manager", Kind: FieldKindText, Tab: TabContract, Placeholder: "Program manager name"},
	{Name: FieldReportingPeriod, Label: "Reporting Period", Kind: FieldKindMonth, Tab: TabContract},
	{Name: FieldPopStart, Label: "Period of Performance Start", Kind: FieldKindDate, Tab: TabContract},
	{Name: FieldPopEnd, Label: "Period of Performance End", Kind: FieldKindDate, Tab: TabContract},
	{Name: FieldOverallStatus, Label: "Overall Status", Kind: FieldKindStatus, Tab: TabContract, Options: []string{StatusOnTrack, StatusAtRisk, StatusDelayed}},
	{Name: FieldExecutiveSummary, Label: "Executive Summary", Kind: FieldKindRichText, Tab: TabContract},

	{Name: FieldFundedValue, Label: "Funded Value ($)", Kind: FieldKindCurrency, Tab: TabFinancial},
	{Name: FieldBilledToDate, Label: "Billed to Date ($)", Kind: FieldKindCurrency, Tab: TabFinancial},
	{Name: FieldRemainingFunds, Label: "Remaining Funds ($)", Kind: FieldKindCurrency, Tab: TabFinancial, ReadOnly: true},
	{Name: FieldBurnRate, Label: "Monthly Burn Rate ($)", Kind: FieldKindCurrency, Tab: TabFinancial},
	{Name: FieldEAC, Label: "Estimate at Completion ($)", Kind: FieldKindCurrency, Tab: TabFinancial},

	{Name: FieldAuthorizedHeadcount, Label: "Authorized Headcount", Kind: FieldKindCount, Tab: TabStaffing},
	{Name: FieldCurrentHeadcount, Label: "Current Headcount", Kind: FieldKindCount, Tab: TabStaffing},
	{Name: FieldVacancies, Label: "Vacancies", Kind: FieldKindCount, Tab: TabStaffing, ReadOnly: true},
	{Name: FieldCustomerRating, Label: "Customer Satisfaction", Kind: FieldKindRange, Tab: TabStaffing, Min: 1, Max: 5},
	{Name: FieldRatingValue, Label: "Rating", Kind: FieldKindText, Tab: TabStaffing, ReadOnly: true},
	{Name: FieldCustomerFeedback, Label: "Customer Feedback", Kind: FieldKindRichText, Tab: TabStaffing},
}

// Catalogue returns a copy of every field spec in display order.
func Catalogue() []FieldSpec {
	out := make([]FieldSpec, len(catalogue))
	for i, spec := range catalogue {
		spec.Options = append([]string(nil), spec.Options...)
		out[i] = spec
	}
	return out
}

// FieldsForTab returns the specs rendered on the given tab.
func FieldsForTab(tab string) []FieldSpec {
	var out []FieldSpec
	for _, spec := range Catalogue() {
		if spec.Tab == tab {
			out = append(out, spec)
		}
	}
	return out
}

// LookupField resolves a field spec by name.
func LookupField(name string) (FieldSpec, bool) {
	name = strings.TrimSpace(name)
	for _, spec := range catalogue {
		if spec.Name == name {
			spec.Options = append([]string(nil), spec.Options...)
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// IsTab reports whether tab names a known tab.
func IsTab(tab string) bool {
	for _, candidate := range Tabs() {
		if candidate == tab {
			return true
		}
	}
	return false
}
