package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/derby-sim/internal/health"
	"github.com/yourusername/derby-sim/internal/metrics"
	"github.com/yourusername/derby-sim/internal/scheduler"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the health server and advance the season on schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, serve)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	log := a.logger.WithField("component", "serve")

	if _, err := a.engine.Start(ctx); err != nil {
		return err
	}

	var sched *scheduler.Scheduler
	if a.cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(a.engine, a.logger)
		if err := sched.ScheduleAdvance(a.cfg.Scheduler.AdvanceSpec, a.cfg.Scheduler.WeeksPerRun); err != nil {
			return err
		}
	}

	healthCfg := health.Config{
		ServiceName: a.cfg.App.Name,
		Version:     Version,
		Port:        a.cfg.Health.Port,
		Logger:      a.logger,
		Storage:     a.repos,
		Season:      a.engine,
	}
	if a.cfg.Metrics.Enabled {
		metrics.InitRegistry()
		healthCfg.Metrics = metrics.Handler()
		healthCfg.MetricsPath = a.cfg.Metrics.Path
	}
	if sched != nil {
		healthCfg.NextRun = sched.GetNextRun
	}
	server := health.NewServer(healthCfg)

	if err := server.Start(ctx); err != nil {
		return err
	}
	if sched != nil {
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	server.SetReady(true)
	log.WithFields(logrus.Fields{
		"port":      a.cfg.Health.Port,
		"scheduler": sched != nil,
		"metrics":   a.cfg.Metrics.Enabled,
	}).Info("Derby simulator serving")

	<-ctx.Done()
	server.SetReady(false)
	log.Info("Shutdown signal received")

	if err := server.Shutdown(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
