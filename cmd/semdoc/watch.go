package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/semdoc/editor"
	"github.com/c360studio/semdoc/metrics"
	"github.com/c360studio/semdoc/watch"
)

func (a *app) watchCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-parse documents as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return a.watch(ctx, args[0], metricsAddr)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func (a *app) watch(ctx context.Context, dir, metricsAddr string) error {
	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		reg.MustRegister(collectors.NewGoCollector())
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		a.logger.Info("Serving metrics", "addr", metricsAddr)
	}

	w, err := watch.NewDocWatcher(a.cfg.Watch, dir, a.logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Received shutdown signal")
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			a.handleWatchEvent(ev, collector)
		}
	}
}

func (a *app) handleWatchEvent(ev watch.Event, collector *metrics.Collector) {
	if ev.Operation == watch.OpDelete {
		a.logger.Info("Document removed", "path", ev.Path)
		return
	}

	s := a.newSession(editor.WithMetrics(collector))
	if err := s.Load(bytes.NewReader(ev.Content)); err != nil {
		a.logger.Warn("Failed to parse document", "path", ev.Path, "error", err)
		return
	}
	ds := s.Datastore()
	a.logger.Info("Document parsed",
		slog.String("path", ev.Path),
		slog.String("op", string(ev.Operation)),
		slog.Int("quads", ds.Len()),
		slog.Int("subjects", len(ds.Subjects())))
}
