package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chernandez90/InsurancePortal/internal/app"
	"github.com/chernandez90/InsurancePortal/internal/config"
	pkgconfig "github.com/chernandez90/InsurancePortal/pkg/config"
	"github.com/chernandez90/InsurancePortal/pkg/log"
)

const revocationSweep = time.Hour

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API and realtime servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	cfg, v, err := config.Load(opts.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.Init(cfg.Log)
	l := log.L()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	watching := pkgconfig.Watch(v, func(e fsnotify.Event) {
		level := v.GetString("log.level")
		log.SetLevel(level)
		l.Info().Str("file", e.Name).Str("level", level).Msg("config reloaded")
	})
	if watching {
		l.Info().Str("file", v.ConfigFileUsed()).Msg("watching config file")
	}

	api := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.API(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	// Websocket connections are long-lived; only the handshake is bounded.
	realtime := &http.Server{
		Addr:              cfg.Realtime.Addr(),
		Handler:           a.Realtime(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.Hub().Run(gctx)
	})
	g.Go(func() error {
		l.Info().Str("addr", api.Addr).Msg("API server listening")
		return listen(api)
	})
	g.Go(func() error {
		l.Info().Str("addr", realtime.Addr).Str("path", cfg.Realtime.Path).Msg("realtime server listening")
		return listen(realtime)
	})
	g.Go(func() error {
		ticker := time.NewTicker(revocationSweep)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				a.Tokens().CleanupExpiredRevocations()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info().Msg("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Join(api.Shutdown(sctx), realtime.Shutdown(sctx))
	})

	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("server stopped with error")
		return err
	}
	l.Info().Msg("server stopped")
	return nil
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}
	return nil
}
