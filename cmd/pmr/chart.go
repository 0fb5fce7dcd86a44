package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	pmr "github.com/goliatone/go-pmr"
	"github.com/goliatone/go-pmr/pkg/charts"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/theming"
)

func newChartCmd(a *app) *cobra.Command {
	var (
		name    string
		output  string
		width   int
		height  int
		variant string
	)
	cmd := &cobra.Command{
		Use:   "chart [draft.yaml]",
		Short: "Draw the financial or slide chart of a draft as PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != charts.NameFinancial && name != charts.NameSlide {
				return fmt.Errorf("unknown chart %q (want %s or %s)", name, charts.NameFinancial, charts.NameSlide)
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			state, err := loadDraft(path)
			if err != nil {
				return err
			}

			gen, err := pmr.NewGenerator(pmr.WithLogger(a.logger), pmr.WithDeriveOptions(a.deriveOptions()...))
			if err != nil {
				return err
			}
			view, err := gen.View(cmd.Context(), state, render.PageSlides)
			if err != nil {
				return err
			}

			selector, err := theming.NewSelector()
			if err != nil {
				return err
			}
			if variant == "" {
				variant = a.cfg.Theme.Variant
			}
			cfg, err := theming.Resolve(selector, a.cfg.Theme.Name, variant)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := charts.WritePNG(&buf, view.Charts[name], theming.Palette(cfg), charts.Size{Width: width, Height: height}); err != nil {
				return err
			}
			return writeOutput(cmd, output, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", charts.NameFinancial, "chart: financial or slide")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().IntVar(&width, "width", charts.DefaultSize.Width, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", charts.DefaultSize.Height, "image height in pixels")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant (default from config)")
	return cmd
}
