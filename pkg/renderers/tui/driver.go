package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-pmr/pkg/model"
)

// Prompt asks for one field or cell value. A prompt with Options is a choice
// and the answer must be one of them; rich text prompts accept several lines.
type Prompt struct {
	Label       string
	Kind        model.FieldKind
	Default     string
	Placeholder string
	Options     []string
	Validate    func(string) error
}

// IsChoice reports whether the prompt offers a fixed option list.
func (p Prompt) IsChoice() bool {
	return len(p.Options) > 0
}

// PromptDriver is the terminal the editing session talks to. Tests script it;
// the default implementation is backed by survey.
type PromptDriver interface {
	// Ask returns the answer for a field or cell.
	Ask(ctx context.Context, p Prompt) (string, error)
	// AddMore asks whether another record should be added to a collection.
	AddMore(ctx context.Context, collection string) (bool, error)
	// Print writes a status line.
	Print(ctx context.Context, line string) error
}

type surveyDriver struct {
	out io.Writer
}

func newSurveyDriver(out io.Writer) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Ask(ctx context.Context, p Prompt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		answer string
		prompt survey.Prompt
		opts   []survey.AskOpt
	)
	switch {
	case p.IsChoice():
		sel := &survey.Select{Message: p.Label, Options: p.Options}
		if slices.Contains(p.Options, p.Default) {
			sel.Default = p.Default
		}
		prompt = sel
	case p.Kind == model.FieldKindRichText:
		prompt = &survey.Multiline{Message: p.Label, Default: p.Default}
	default:
		prompt = &survey.Input{Message: p.Label, Default: p.Default, Help: p.Placeholder}
		if p.Validate != nil {
			opts = append(opts, survey.WithValidator(func(ans any) error {
				text, _ := ans.(string)
				return p.Validate(text)
			}))
		}
	}
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return "", surveyErr(err)
	}
	return answer, nil
}

func (d *surveyDriver) AddMore(ctx context.Context, collection string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var more bool
	if err := survey.AskOne(&survey.Confirm{Message: "Add to " + collection + "?"}, &more); err != nil {
		return false, surveyErr(err)
	}
	return more, nil
}

func (d *surveyDriver) Print(ctx context.Context, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, line)
	return err
}

func surveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
