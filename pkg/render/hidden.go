package render

import (
	"slices"
	"strings"
)

// CSRFField is the form field name carrying the CSRF token.
const CSRFField = "_csrf"

// HiddenField is a hidden input emitted inside every action form.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CSRF returns the hidden input carrying token.
func CSRF(token string) HiddenField {
	return HiddenField{Name: CSRFField, Value: token}
}

// FormFields returns the hidden inputs of an action form: o.Hidden plus extra,
// sorted by name. Names are trimmed, blank names dropped, and extra wins over
// o.Hidden.
func (o RenderOptions) FormFields(extra ...HiddenField) []HiddenField {
	merged := make(map[string]string, len(o.Hidden)+len(extra))
	for name, value := range o.Hidden {
		if name = strings.TrimSpace(name); name != "" {
			merged[name] = value
		}
	}
	for _, field := range extra {
		if name := strings.TrimSpace(field.Name); name != "" {
			merged[name] = field.Value
		}
	}
	if len(merged) == 0 {
		return nil
	}

	out := make([]HiddenField, 0, len(merged))
	for name, value := range merged {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	slices.SortFunc(out, func(a, b HiddenField) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
