package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby-sim/internal/calendar"
	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/matchmaking"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/policy"
	"github.com/yourusername/derby-sim/internal/race"
	"github.com/yourusername/derby-sim/internal/repository"
	"github.com/yourusername/derby-sim/internal/rng"
	"github.com/yourusername/derby-sim/internal/season"
)

// app is the wired object graph shared by every command
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	repos     *repository.Repositories
	calendar  *calendar.Calendar
	streams   *rng.Partitioned
	allocator *matchmaking.Allocator
	simulator *race.Simulator
	engine    *season.Engine
}

// withApp builds the app, runs fn and releases storage afterwards
func withApp(ctx context.Context, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := buildApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.repos.Close()
	return fn(ctx, a)
}

func buildApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfigWithSecrets(ctx, opts)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.App.LogLevel)

	cal, err := loadCalendar(cfg.Season.CalendarPath)
	if err != nil {
		return nil, err
	}

	repos, err := repository.NewRepositories(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Database.Driver, err)
	}

	streams := rng.NewPartitioned(cfg.Simulation.Seed)
	allocator := matchmaking.NewAllocator(
		matchmaking.FromConfig(&cfg.Allocation),
		policy.New(policy.FromConfig(&cfg.Entry)),
		log,
	)
	simulator := race.NewSimulator(race.FromConfig(&cfg.Simulation), streams.For(rng.SubsystemRace), log)

	engine, err := season.NewEngine(season.FromConfig(cfg), season.Dependencies{
		Calendar:  cal,
		Allocator: allocator,
		Simulator: simulator,
		Repos:     repos,
		Injury:    streams.For(rng.SubsystemInjury),
		Training:  streams.For(rng.SubsystemTraining),
		Logger:    log,
	})
	if err != nil {
		repos.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"driver": repos.Driver(),
		"races":  len(cal.Races()),
		"seed":   streams.Seed(),
	}).Debug("Application wired")

	return &app{
		cfg:       cfg,
		logger:    log,
		repos:     repos,
		calendar:  cal,
		streams:   streams,
		allocator: allocator,
		simulator: simulator,
		engine:    engine,
	}, nil
}

func loadCalendar(path string) (*calendar.Calendar, error) {
	if path == "" {
		return calendar.Default(), nil
	}
	cal, err := calendar.LoadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load calendar %s: %w", path, err)
	}
	return cal, nil
}

// resolveWeek defaults year and week to the stored season position
func (a *app) resolveWeek(ctx context.Context, year, week int) (int, int, error) {
	if year > 0 && week > 0 {
		return year, week, nil
	}
	state, err := a.engine.Current(ctx)
	if err != nil {
		return 0, 0, err
	}
	if year <= 0 {
		year = state.Year
	}
	if week <= 0 {
		week = state.Week
	}
	return year, week, nil
}

// activeRoster lists horses that are not retired
func (a *app) activeRoster(ctx context.Context) ([]*models.Horse, error) {
	horses, err := a.repos.Horse.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list horses: %w", err)
	}
	out := horses[:0]
	for _, h := range horses {
		if h.Status != models.HorseStatusRetired {
			out = append(out, h)
		}
	}
	return out, nil
}
