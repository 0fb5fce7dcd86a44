package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/renderers/tui"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		format string
		output string
		tabs   []string
	)
	cmd := &cobra.Command{
		Use:   "edit [draft.yaml]",
		Short: "Edit a draft interactively in the terminal",
		Long: `Walks every input tab field by field, recomputing derived values as
they change, then offers to append staffing rows, milestones, action items,
accomplishments and risks. The edited draft is printed as YAML, JSON or a
plain summary.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			state, err := loadDraft(path)
			if err != nil {
				return err
			}
			outputFormat := tui.OutputFormat(strings.ToLower(format))
			switch outputFormat {
			case tui.OutputFormatYAML, tui.OutputFormatJSON, tui.OutputFormatPrettyText:
			default:
				return fmt.Errorf("unknown output format %q (want yaml, json or pretty)", format)
			}
			for _, tab := range tabs {
				if !model.IsTab(tab) || tab == model.TabSlides {
					return fmt.Errorf("unknown input tab %q", tab)
				}
			}

			engine, err := derive.New(a.deriveOptions()...)
			if err != nil {
				return err
			}
			renderer, err := tui.New(
				tui.WithPromptDriver(a.driver),
				tui.WithOutput(cmd.ErrOrStderr()),
				tui.WithOutputFormat(outputFormat),
				tui.WithTabs(tabs...),
				tui.WithEngine(engine),
				tui.WithLogger(a.logger),
				tui.WithTheme(tui.Theme{InfoPrefix: "» ", ErrorPrefix: "✗ "}),
			)
			if err != nil {
				return err
			}

			out, err := renderer.Render(cmd.Context(), render.View{State: state}, render.RenderOptions{})
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(tui.OutputFormatYAML), "output: yaml, json or pretty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringSliceVar(&tabs, "tabs", nil, "input tabs to walk (default: all)")
	return cmd
}
