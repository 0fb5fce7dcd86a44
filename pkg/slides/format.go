package slides

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/goliatone/go-pmr/pkg/model"
)

// Presentational severity classes, least severe first.
const (
	ClassApproved = "approved"
	ClassPending  = "pending"
	ClassDraft    = "draft"
)

var statusClasses = map[string]string{
	model.StatusOnTrack:       ClassApproved,
	model.StatusComplete:      ClassApproved,
	model.StatusActive:        ClassApproved,
	model.StatusAtRisk:        ClassPending,
	model.StatusInProgress:    ClassPending,
	model.StatusNotStarted:    ClassPending,
	model.StatusOnLeave:       ClassPending,
	model.StatusTransitioning: ClassPending,
	model.StatusDelayed:       ClassDraft,
	model.StatusOverdue:       ClassDraft,
}

// StatusClass maps a status value to its presentational class. Unknown values
// map to the most severe class.
func StatusClass(status string) string {
	if class, ok := statusClasses[strings.TrimSpace(status)]; ok {
		return class
	}
	return ClassDraft
}

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders whole US dollars with grouping, "$2,500,000".
// Negative amounts render as "-$750,000".
func FormatCurrency(amount float64) string {
	rounded := math.Round(amount)
	if math.IsNaN(rounded) || math.IsInf(rounded, 0) {
		rounded = 0
	}
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + "$" + printer.Sprintf("%d", int64(rounded))
}

// FormatRate renders a monthly amount, "$150,000/mo".
func FormatRate(amount float64) string {
	return FormatCurrency(amount) + "/mo"
}

// FormatPeriod turns "2024-03" into "March 2024". Values that are not a
// YYYY-MM month are returned unchanged.
func FormatPeriod(period string) string {
	trimmed := strings.TrimSpace(period)
	if trimmed == "" {
		return ""
	}
	parsed, err := time.Parse("2006-01", trimmed)
	if err != nil {
		return period
	}
	return parsed.Format("January 2006")
}

// FormatDate turns "2024-03-15" into "Mar 15, 2024"; other values pass through.
func FormatDate(date string) string {
	parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return date
	}
	return parsed.Format("Jan 2, 2006")
}
