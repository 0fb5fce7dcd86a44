package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/slides"
	"github.com/goliatone/go-pmr/pkg/store"
)

const defaultMaxAttempts = 5

var numberPattern = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// Renderer implements render.Renderer for terminal-driven editing sessions.
// It walks the form tab by tab, writes every answer through a store so
// derived fields update as the user types, and serializes the edited form.
type Renderer struct {
	driver            PromptDriver
	out               io.Writer
	outputFormat      OutputFormat
	tabs              []string
	engine            *derive.Engine
	logger            *zap.Logger
	maxAttempts       int
	submitTransformer SubmitTransformer
	theme             Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, YAML output,
// every input tab).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatYAML,
		logger:       zap.NewNop(),
		maxAttempts:  defaultMaxAttempts,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	if r.engine == nil {
		engine, err := derive.New()
		if err != nil {
			return nil, fmt.Errorf("tui: derivation engine: %w", err)
		}
		r.engine = engine
	}
	if len(r.tabs) == 0 {
		for _, tab := range model.Tabs() {
			if tab != model.TabSlides {
				r.tabs = append(r.tabs, tab)
			}
		}
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatJSON:
		return "application/json"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/yaml"
	}
}

// Render runs the prompt session starting from view.State and returns the
// edited form.
func (r *Renderer) Render(ctx context.Context, view render.View, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	st := store.New(store.WithEngine(r.engine), store.WithLogger(r.logger))
	st.Load(view.State)

	session := &session{r: r, ctx: ctx, store: st}
	cancel := st.Subscribe(session.onEvent)
	defer cancel()

	for _, tab := range r.tabs {
		if err := session.tab(tab); err != nil {
			return nil, err
		}
	}

	state := st.State()
	if r.submitTransformer != nil {
		var err error
		state, err = r.submitTransformer(state)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(state)
}

func (r *Renderer) serialize(state model.FormState) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatJSON:
		out, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return out, nil
	case OutputFormatPrettyText:
		return prettyText(state), nil
	default:
		return model.MarshalFormState(state)
	}
}

type session struct {
	r     *Renderer
	ctx   context.Context
	store *store.Store
	err   error
}

// onEvent echoes derived values so the user sees recalculations immediately.
func (s *session) onEvent(e store.Event) {
	if s.err != nil {
		return
	}
	switch e.Kind {
	case store.EventFieldDerived:
		s.err = s.info(fmt.Sprintf("%s = %s", labelFor(e.Field), e.Value))
	case store.EventChartSkipped:
		if e.Chart != nil {
			s.err = s.info("chart not updated: " + e.Chart.Reason)
		}
	}
}

func (s *session) info(msg string) error {
	return s.r.driver.Print(s.ctx, s.r.theme.InfoPrefix+msg)
}

func (s *session) fail(msg string) error {
	return s.r.driver.Print(s.ctx, s.r.theme.ErrorPrefix+msg)
}

func (s *session) tab(tab string) error {
	if !model.IsTab(tab) {
		s.r.logger.Warn("unknown tab skipped", zap.String("tab", tab))
		return nil
	}
	if err := s.info("== " + strings.ToUpper(tab) + " =="); err != nil {
		return err
	}
	for _, spec := range model.FieldsForTab(tab) {
		if spec.ReadOnly {
			continue
		}
		if err := s.field(spec); err != nil {
			return err
		}
	}
	for _, spec := range model.Collections() {
		if spec.Tab != tab {
			continue
		}
		if err := s.collection(spec); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) field(spec model.FieldSpec) error {
	current := s.store.Value(spec.Name)
	prompt := Prompt{
		Label:       s.r.theme.PromptPrefix + spec.Label,
		Kind:        spec.Kind,
		Default:     current,
		Placeholder: spec.Placeholder,
		Options:     spec.Options,
	}
	if spec.Kind == model.FieldKindRange {
		prompt.Options = rangeOptions(spec.Min, spec.Max)
	}

	value, err := s.ask(prompt)
	if err != nil {
		return err
	}
	if value != current {
		s.store.Set(spec.Name, value)
	}
	return s.err
}

func (s *session) collection(spec model.CollectionSpec) error {
	for {
		more, err := s.r.driver.AddMore(s.ctx, spec.Label)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
		if spec.IsTable() {
			err = s.row(spec)
		} else {
			err = s.item(spec)
		}
		if err != nil {
			return err
		}
	}
}

func (s *session) row(spec model.CollectionSpec) error {
	if !s.store.Append(spec.ID, spec.Kind) {
		return fmt.Errorf("tui: append to %s failed", spec.ID)
	}
	index := len(s.store.Rows(spec.ID)) - 1
	for c, col := range spec.Columns {
		value, err := s.ask(Prompt{
			Label:       s.r.theme.PromptPrefix + col.Label,
			Kind:        col.Kind,
			Placeholder: col.Placeholder,
			Options:     col.Options,
		})
		if err != nil {
			return err
		}
		s.store.SetCell(spec.ID, index, c, value)
	}
	return nil
}

func (s *session) item(spec model.CollectionSpec) error {
	text, err := s.ask(Prompt{Label: s.r.theme.PromptPrefix + spec.Label, Kind: model.FieldKindText})
	if err != nil {
		return err
	}
	severity := model.SeverityNone
	if spec.Kind == model.KindRisk {
		var options []string
		for _, level := range model.Severities() {
			options = append(options, string(level))
		}
		picked, err := s.ask(Prompt{
			Label:   s.r.theme.PromptPrefix + "Severity",
			Kind:    model.FieldKindStatus,
			Default: string(model.SeverityMedium),
			Options: options,
		})
		if err != nil {
			return err
		}
		severity = model.ParseSeverity(picked)
	}
	if !s.store.AddListItem(spec.ID, text, severity) {
		return s.fail("blank entry ignored")
	}
	return nil
}

// ask runs one prompt. Choices outside the option list keep the default;
// free-form answers are trimmed and re-asked until they validate.
func (s *session) ask(p Prompt) (string, error) {
	if p.IsChoice() {
		answer, err := s.r.driver.Ask(s.ctx, p)
		if err != nil {
			return "", err
		}
		if !slices.Contains(p.Options, answer) {
			return p.Default, nil
		}
		return answer, nil
	}

	if p.Validate == nil {
		p.Validate = validatorFor(p.Kind)
	}
	for attempt := 0; attempt < s.r.maxAttempts; attempt++ {
		answer, err := s.r.driver.Ask(s.ctx, p)
		if err != nil {
			return "", err
		}
		if p.Kind != model.FieldKindRichText {
			answer = strings.TrimSpace(answer)
		}
		if p.Validate == nil {
			return answer, nil
		}
		if verr := p.Validate(answer); verr != nil {
			if err := s.fail(verr.Error()); err != nil {
				return "", err
			}
			continue
		}
		return answer, nil
	}
	return "", ErrTooManyAttempts
}

func validatorFor(kind model.FieldKind) func(string) error {
	switch kind {
	case model.FieldKindCurrency, model.FieldKindCount:
		return func(value string) error {
			if value == "" || numberPattern.MatchString(value) {
				return nil
			}
			return fmt.Errorf("%q is not a number", value)
		}
	case model.FieldKindDate:
		return layoutValidator("2006-01-02")
	case model.FieldKindMonth:
		return layoutValidator("2006-01")
	default:
		return nil
	}
}

func layoutValidator(layout string) func(string) error {
	return func(value string) error {
		if value == "" {
			return nil
		}
		if _, err := time.Parse(layout, value); err != nil {
			return fmt.Errorf("%q does not match %s", value, layout)
		}
		return nil
	}
}

func rangeOptions(lo, hi int) []string {
	var out []string
	for i := lo; i <= hi; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}

func labelFor(name string) string {
	if spec, ok := model.LookupField(name); ok {
		return spec.Label
	}
	return name
}

func prettyText(state model.FormState) []byte {
	var buf bytes.Buffer
	for _, tab := range model.Tabs() {
		specs := model.FieldsForTab(tab)
		if len(specs) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "[%s]\n", tab)
		for _, spec := range specs {
			value := state.Value(spec.Name)
			if spec.Kind == model.FieldKindCurrency && value != "" {
				value = slides.FormatCurrency(derive.ParseNumberOr0(value))
			}
			fmt.Fprintf(&buf, "  %s: %s\n", spec.Label, value)
		}
	}
	for _, spec := range model.Collections() {
		if spec.IsTable() {
			fmt.Fprintf(&buf, "%s: %d rows\n", spec.Label, len(state.Tables[spec.ID]))
			continue
		}
		fmt.Fprintf(&buf, "%s: %d items\n", spec.Label, len(state.Lists[spec.ID]))
	}
	return buf.Bytes()
}
