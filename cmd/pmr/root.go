package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	pmr "github.com/goliatone/go-pmr"
	"github.com/goliatone/go-pmr/internal/config"
	"github.com/goliatone/go-pmr/internal/logging"
	"github.com/goliatone/go-pmr/pkg/derive"
	"github.com/goliatone/go-pmr/pkg/model"
	"github.com/goliatone/go-pmr/pkg/render"
	"github.com/goliatone/go-pmr/pkg/renderers/html"
	"github.com/goliatone/go-pmr/pkg/renderers/jsonview"
	"github.com/goliatone/go-pmr/pkg/renderers/pdf"
	"github.com/goliatone/go-pmr/pkg/renderers/tui"
)

// app carries what every command shares once the root pre-run has resolved
// configuration and logging.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger

	// driver overrides the survey prompts of the edit command.
	driver tui.PromptDriver
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, logger: zap.NewNop()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "pmr",
		Short:         "Program Management Review dashboard",
		Version:       pmr.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./pmr.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newSlidesCmd(a))
	root.AddCommand(newChartCmd(a))
	root.AddCommand(newEditCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) deriveOptions() []derive.Option {
	if a.cfg.Charts.UpdateUnfunded {
		return []derive.Option{derive.WithUnfundedChartUpdates()}
	}
	return nil
}

// rendererRegistry returns nil while templates use the defaults, leaving the
// built-in renderers in place. Otherwise the html renderer reads overrides
// from templates.dir and runs on the configured templates.engine.
func (a *app) rendererRegistry() (*render.Registry, error) {
	if a.cfg.TemplatesDir == "" && a.cfg.TemplatesEngine != config.EngineGoTemplate {
		return nil, nil
	}
	opts := []html.Option{html.WithTemplatesDir(a.cfg.TemplatesDir)}
	if a.cfg.TemplatesEngine == config.EngineGoTemplate {
		opts = append(opts, html.WithGoTemplate())
	}
	htmlRenderer, err := html.New(opts...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	if err := registry.Register(htmlRenderer, pdf.New(), jsonview.New(jsonview.WithIndent("  "))); err != nil {
		return nil, err
	}
	a.logger.Info("html templates configured",
		zap.String("dir", a.cfg.TemplatesDir),
		zap.String("engine", a.cfg.TemplatesEngine),
	)
	return registry, nil
}

// loadDraft reads a YAML or JSON draft, or the demo values when path is empty.
func loadDraft(path string) (model.FormState, error) {
	if path == "" {
		demo, err := model.DemoDefaults()
		if err != nil {
			return model.FormState{}, err
		}
		return demo.State, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormState{}, fmt.Errorf("read draft: %w", err)
	}
	state, err := model.ParseFormState(data)
	if err != nil {
		return model.FormState{}, fmt.Errorf("parse draft %s: %w", path, err)
	}
	return state, nil
}

// writeOutput writes data to path, or to the command output when path is
// empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "written to %s\n", path)
	return nil
}
