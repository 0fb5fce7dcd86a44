package derive

import (
	"fmt"
	"strings"
)

// Option customises the engine configuration.
type Option func(*config)

type config struct {
	guardUnfunded bool
	extra         []Rule
}

// WithUnfundedChartUpdates lets the financial rule update the chart even when
// the funded value is zero or negative.
func WithUnfundedChartUpdates() Option {
	return func(cfg *config) {
		cfg.guardUnfunded = false
	}
}

// WithRules registers additional rules after the built-in ones.
func WithRules(rules ...Rule) Option {
	return func(cfg *config) {
		cfg.extra = append(cfg.extra, rules...)
	}
}

// Engine indexes rules by the fields they depend on. It is stateless between
// calls: Apply recomputes from the reader every time, so repeated application
// is idempotent.
type Engine struct {
	rules    []Rule
	byInput  map[string][]int
	byOutput map[string]int
}

// New constructs an engine with the financial, staffing and rating rules.
func New(options ...Option) (*Engine, error) {
	cfg := config{guardUnfunded: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	engine := &Engine{
		byInput:  make(map[string][]int),
		byOutput: make(map[string]int),
	}
	rules := append([]Rule{FinancialRule(cfg.guardUnfunded), StaffingRule(), RatingRule()}, cfg.extra...)
	for _, rule := range rules {
		if err := engine.add(rule); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// MustNew panics when New fails. Useful for init-time wiring.
func MustNew(options ...Option) *Engine {
	engine, err := New(options...)
	if err != nil {
		panic(err)
	}
	return engine
}

func (e *Engine) add(rule Rule) error {
	name := strings.TrimSpace(rule.Name)
	if name == "" {
		return fmt.Errorf("derive: rule name is required")
	}
	if rule.Compute == nil {
		return fmt.Errorf("derive: rule %q has no compute function", name)
	}
	if rule.Output == "" {
		return fmt.Errorf("derive: rule %q has no output field", name)
	}
	if _, exists := e.byOutput[rule.Output]; exists {
		return fmt.Errorf("derive: field %q already derived", rule.Output)
	}

	idx := len(e.rules)
	e.rules = append(e.rules, rule)
	e.byOutput[rule.Output] = idx
	for _, input := range rule.Inputs {
		e.byInput[input] = append(e.byInput[input], idx)
	}
	return nil
}

// Apply evaluates every rule that depends on changed, in registration order.
func (e *Engine) Apply(r Reader, changed string) []Outcome {
	indexes := e.byInput[changed]
	if len(indexes) == 0 {
		return nil
	}
	out := make([]Outcome, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, e.evaluate(r, idx))
	}
	return out
}

// ApplyAll evaluates every rule, used after bulk loads.
func (e *Engine) ApplyAll(r Reader) []Outcome {
	out := make([]Outcome, 0, len(e.rules))
	for idx := range e.rules {
		out = append(out, e.evaluate(r, idx))
	}
	return out
}

// IsDerived reports whether a rule owns the field.
func (e *Engine) IsDerived(field string) bool {
	_, ok := e.byOutput[field]
	return ok
}

// Dependents lists the output fields recomputed when field changes.
func (e *Engine) Dependents(field string) []string {
	var out []string
	for _, idx := range e.byInput[field] {
		out = append(out, e.rules[idx].Output)
	}
	return out
}

func (e *Engine) evaluate(r Reader, idx int) Outcome {
	rule := e.rules[idx]
	outcome := rule.Compute(r)
	outcome.Rule = rule.Name
	if outcome.Field == "" {
		outcome.Field = rule.Output
	}
	return outcome
}
