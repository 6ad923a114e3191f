package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/dashcache/observe"
)

func (c *cli) newServeCmd() *cobra.Command {
	var (
		addr     string
		warm     bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health and metrics endpoints over a warm cache",
		Long: `Serve loads the working set, keeps it fresh and exposes:

  /healthz   liveness
  /readyz    readiness (cache, store ping, store circuit)
  /health    detailed JSON health
  /metrics   Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.app.cfg.Serve.Addr
			}
			return c.serve(cmd.Context(), addr, warm, interval)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default serve.addr)")
	cmd.Flags().BoolVar(&warm, "warm", true, "load the working set before serving")
	cmd.Flags().DurationVar(&interval, "refresh-interval", 0, "reload the working set this often (0 disables)")
	return cmd
}

func (c *cli) serve(ctx context.Context, addr string, warm bool, interval time.Duration) error {
	a := c.app
	logger := a.obs.Logger()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if sweep := a.cfg.Cache.SweepInterval.Std(); sweep > 0 {
		a.engine.StartSweeper(ctx, sweep)
	}
	if warm {
		a.reload(ctx, false)
	}
	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					a.reload(ctx, true)
				}
			}
		}()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           a.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.Info(ctx, "serving", observe.F("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) reload(ctx context.Context, force bool) {
	start := time.Now()
	ds, err := a.svc.LoadAll(ctx, force)
	if err != nil {
		a.obs.Logger().Warn(ctx, "working set load failed", observe.F("error", err), observe.F("force", force))
		return
	}
	a.obs.Logger().Info(ctx, "working set loaded",
		observe.F("projects", len(ds.Projects)),
		observe.F("tasks", ds.TaskCount()),
		observe.F("subtasks", ds.SubtaskCount()),
		observe.F("duration_ms", time.Since(start).Milliseconds()),
	)
}
