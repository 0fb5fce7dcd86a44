package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pmr "github.com/goliatone/go-pmr"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/theming"
)

func newSlidesCmd(a *app) *cobra.Command {
	var (
		format  string
		output  string
		page    string
		themeID string
		variant string
		title   string
	)
	cmd := &cobra.Command{
		Use:   "slides [draft.yaml]",
		Short: "Render a draft to an HTML, PDF or JSON slide deck",
		Long: `Loads a YAML or JSON draft (the demo values when omitted), runs the
derivations, generates the five-slide deck and renders it.

Examples:
  pmr slides draft.yaml --format pdf -o review.pdf
  pmr slides --format html --page dashboard --variant dark`,
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

			switch render.Page(page) {
			case render.PageDashboard, render.PageSlides:
			default:
				return fmt.Errorf("unknown page %q (want dashboard or slides)", page)
			}

			selector, err := theming.NewSelector()
			if err != nil {
				return err
			}
			registry, err := a.rendererRegistry()
			if err != nil {
				return err
			}
			gen, err := pmr.NewGenerator(
				pmr.WithRegistry(registry),
				pmr.WithThemeSelector(selector),
				pmr.WithLogger(a.logger),
				pmr.WithDeriveOptions(a.deriveOptions()...),
			)
			if err != nil {
				return err
			}
			if themeID == "" {
				themeID = a.cfg.Theme.Name
			}
			if variant == "" {
				variant = a.cfg.Theme.Variant
			}

			out, err := gen.Generate(cmd.Context(), pmr.Request{
				State:        state,
				Page:         render.Page(page),
				Renderer:     format,
				ThemeName:    themeID,
				ThemeVariant: variant,
				Title:        title,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, out)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "html", "renderer: html, pdf or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&page, "page", string(render.PageSlides), "page: slides or dashboard")
	cmd.Flags().StringVar(&themeID, "theme", "", "theme name (default from config)")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant (default from config)")
	cmd.Flags().StringVar(&title, "title", "", "document title")
	return cmd
}
