package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	component "github.com/goliatone/go-pmr/components/dashboard"
	"github.com/goliatone/go-pmr/pkg/backend"
	"github.com/goliatone/go-pmr/pkg/dashboard"
	"github.com/goliatone/go-pmr/pkg/notify"
	"github.com/goliatone/go-pmr/pkg/theming"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr     string
		basePath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			if basePath == "" {
				basePath = a.cfg.BasePath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler, dash, err := a.buildServer(ctx, basePath)
			if err != nil {
				return err
			}
			defer dash.Close()

			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			return a.serve(ctx, listener, handler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&basePath, "base-path", "", "mount path (default from config)")
	return cmd
}

// buildServer wires the dashboard session, boots it and mounts the HTTP
// component under basePath.
func (a *app) buildServer(ctx context.Context, basePath string) (http.Handler, *dashboard.Dashboard, error) {
	client, err := a.backendClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	dash, err := dashboard.New(
		dashboard.WithLogger(a.logger),
		dashboard.WithBackend(client),
		dashboard.WithDeriveOptions(a.deriveOptions()...),
		dashboard.WithNotifyOptions(
			notify.WithDisplay(a.cfg.Notify.Display),
			notify.WithFade(a.cfg.Notify.Fade),
		),
	)
	if err != nil {
		return nil, nil, err
	}
	if err := dash.Boot(ctx); err != nil {
		dash.Close()
		return nil, nil, err
	}

	selector, err := theming.NewSelector()
	if err != nil {
		dash.Close()
		return nil, nil, err
	}
	registry, err := a.rendererRegistry()
	if err != nil {
		dash.Close()
		return nil, nil, err
	}
	c, err := component.New(dash,
		component.WithLogger(a.logger),
		component.WithTheme(selector, a.cfg.Theme.Name, a.cfg.Theme.Variant),
		component.WithRenderers(registry),
	)
	if err != nil {
		dash.Close()
		return nil, nil, err
	}

	mux := http.NewServeMux()
	pattern, err := c.RegisterRoutes(mux, basePath)
	if err != nil {
		dash.Close()
		return nil, nil, err
	}
	a.logger.Info("dashboard mounted", zap.String("pattern", pattern))
	return mux, dash, nil
}

func (a *app) backendClient(ctx context.Context) (backend.Client, error) {
	if a.cfg.Backend.URL == "" {
		return backend.Stub{}, nil
	}
	client, err := backend.NewHTTPClient(ctx, a.cfg.Backend.URL,
		backend.WithTimeout(a.cfg.Backend.Timeout),
		backend.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	a.logger.Info("backend enabled", zap.String("url", a.cfg.Backend.URL))
	return client, nil
}

// serve runs until ctx is cancelled, then shuts the server down gracefully.
func (a *app) serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", listener.Addr().String()))
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server stopped")
	return nil
}
