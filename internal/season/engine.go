// Package season advances the calendar one week at a time: it allocates fields,
// runs the races, books results onto horses and persists everything.
package season

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby-sim/internal/calendar"
	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/logger"
	"github.com/yourusername/derby-sim/internal/matchmaking"
	"github.com/yourusername/derby-sim/internal/metrics"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/repository"
	"github.com/yourusername/derby-sim/internal/rng"
)

// RaceSimulator runs one calendar race. *race.Simulator satisfies it.
type RaceSimulator interface {
	SimulateEvent(event *models.RaceEvent, field []*models.Horse) (*models.RaceOutcome, error)
}

// Config holds the season rules
type Config struct {
	StartYear        int
	InjuryBaseChance float64
	TrainingEnabled  bool
	RetirementAge    int
	MinFieldToRun    int
}

// DefaultConfig returns the standard season rules
func DefaultConfig() Config {
	return Config{
		StartYear:        1,
		InjuryBaseChance: InjuryBaseChance,
		TrainingEnabled:  true,
		RetirementAge:    RetirementAge,
		MinFieldToRun:    matchmaking.MinFieldToRun,
	}
}

// FromConfig overlays configured values on DefaultConfig
func FromConfig(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Season.StartYear > 0 {
		c.StartYear = cfg.Season.StartYear
	}
	if cfg.Season.InjuryBaseChance > 0 {
		c.InjuryBaseChance = cfg.Season.InjuryBaseChance
	}
	c.TrainingEnabled = cfg.Season.TrainingEnabled
	if cfg.Season.RetirementAge > 0 {
		c.RetirementAge = cfg.Season.RetirementAge
	}
	if cfg.Allocation.MinFieldToRun > 0 {
		c.MinFieldToRun = cfg.Allocation.MinFieldToRun
	}
	return c
}

// Dependencies are the collaborators of an Engine
type Dependencies struct {
	Calendar  *calendar.Calendar
	Allocator *matchmaking.Allocator
	Simulator RaceSimulator
	Repos     *repository.Repositories
	// Injury and Training are the random streams for post-race injuries and weekly growth
	Injury   rng.Source
	Training rng.Source
	Logger   *logrus.Logger
}

// Engine advances the season. Advances are serialized.
type Engine struct {
	cfg       Config
	calendar  *calendar.Calendar
	allocator *matchmaking.Allocator
	sim       RaceSimulator
	horses    repository.HorseRepository
	state     repository.SeasonStateRepository
	outcomes  repository.OutcomeRepository
	injury    rng.Source
	training  rng.Source
	logger    *logger.SeasonLogger

	mu sync.Mutex
}

// NewEngine creates a season engine
func NewEngine(cfg Config, deps Dependencies) (*Engine, error) {
	if deps.Calendar == nil || deps.Allocator == nil || deps.Simulator == nil || deps.Repos == nil {
		return nil, errors.New("season engine needs a calendar, allocator, simulator and repositories")
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Injury == nil || deps.Training == nil {
		src := rng.NewPartitioned(0)
		if deps.Injury == nil {
			deps.Injury = src.For(rng.SubsystemInjury)
		}
		if deps.Training == nil {
			deps.Training = src.For(rng.SubsystemTraining)
		}
	}
	if cfg.MinFieldToRun < matchmaking.MinFieldToRun {
		cfg.MinFieldToRun = matchmaking.MinFieldToRun
	}
	if cfg.RetirementAge <= 0 {
		cfg.RetirementAge = RetirementAge
	}

	return &Engine{
		cfg:       cfg,
		calendar:  deps.Calendar,
		allocator: deps.Allocator,
		sim:       deps.Simulator,
		horses:    deps.Repos.Horse,
		state:     deps.Repos.Season,
		outcomes:  deps.Repos.Outcome,
		injury:    deps.Injury,
		training:  deps.Training,
		logger:    logger.NewSeasonLogger(deps.Logger),
	}, nil
}

// Start creates the season state at week 1 of the start year unless one exists
func (e *Engine) Start(ctx context.Context) (*models.SeasonState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.state.Get(ctx)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, models.ErrSeasonNotStarted) {
		return nil, fmt.Errorf("failed to read season state: %w", err)
	}

	state = &models.SeasonState{Year: e.cfg.StartYear, Week: 1}
	if err := e.state.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to start season: %w", err)
	}
	return state, nil
}

// Current returns the season position
func (e *Engine) Current(ctx context.Context) (*models.SeasonState, error) {
	return e.state.Get(ctx)
}

// AdvanceWeek runs the current week and moves the calendar forward by one week
func (e *Engine) AdvanceWeek(ctx context.Context) (*WeekReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()

	state, err := e.state.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read season state: %w", err)
	}
	roster, err := e.horses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	report := &WeekReport{Year: state.Year, Week: state.Week}
	byID := make(map[uuid.UUID]*models.Horse, len(roster))
	for _, h := range roster {
		byID[h.ID] = h
	}

	ran, err := e.runRaces(ctx, state, roster, byID, report)
	if err != nil {
		return nil, err
	}

	for _, h := range roster {
		if h.Status == models.HorseStatusRetired || ran[h.ID] {
			continue
		}
		rest(h)
	}

	if e.cfg.TrainingEnabled {
		for _, h := range roster {
			if h.Status == models.HorseStatusActive {
				report.TrainingGain += train(h, e.training)
			}
		}
	}

	if state.IsYearEnd() {
		e.closeYear(roster, report)
	}

	next := state.Next()
	report.Next = next

	if err := e.persist(ctx, report, roster, &next); err != nil {
		return nil, err
	}

	active := 0
	for _, h := range roster {
		if h.Status != models.HorseStatusRetired {
			active++
		}
	}
	e.logger.LogWeekAdvanced(report.Year, report.Week, len(report.Outcomes), len(report.Skipped),
		len(report.Injuries), len(report.Retirements))
	metrics.RecordWeek(next.Year, next.Week, len(report.Skipped), len(report.Injuries), len(report.Retirements),
		active, float64(report.PursePaid), time.Since(started).Seconds())

	return report, nil
}

// AdvanceWeeks advances n weeks, stopping early when ctx is cancelled
func (e *Engine) AdvanceWeeks(ctx context.Context, n int) ([]*WeekReport, error) {
	if n < 1 {
		return nil, fmt.Errorf("weeks to advance must be positive, got %d", n)
	}
	reports := make([]*WeekReport, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("advance stopped after %d weeks: %w", i, err)
		}
		report, err := e.AdvanceWeek(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (e *Engine) runRaces(ctx context.Context, state *models.SeasonState, roster []*models.Horse,
	byID map[uuid.UUID]*models.Horse, report *WeekReport) (map[uuid.UUID]bool, error) {
	ran := make(map[uuid.UUID]bool)

	races := e.calendar.RacesInWeek(state.Week)
	if len(races) == 0 {
		return ran, nil
	}

	allocations := e.allocator.Allocate(roster, races, state.Week, state.Year)
	excluded := make(map[string]int)

	for _, race := range races {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		alloc := allocations[race.ID]
		e.logger.LogAllocation(race.ID, len(alloc.Field), len(alloc.Excluded))
		excluded[string(race.Grade)] += len(alloc.Excluded)

		if !alloc.CanRun(e.cfg.MinFieldToRun) {
			e.logger.LogRaceSkipped(race.ID, len(alloc.Field))
			report.Skipped = append(report.Skipped, race.ID)
			continue
		}

		simStart := time.Now()
		outcome, err := e.sim.SimulateEvent(race, alloc.Field)
		if err != nil {
			return nil, fmt.Errorf("failed to simulate %s: %w", race.ID, err)
		}
		outcome.Year = state.Year
		outcome.Week = state.Week

		e.book(race, outcome, byID, ran, report)
		report.Outcomes = append(report.Outcomes, outcome)

		winTime := 0.0
		if winner, ok := outcome.Winner(); ok {
			winTime = winner.FinishTime
		}
		metrics.RecordRace(string(race.Grade), string(race.DistanceCategory()), len(alloc.Field), winTime,
			outcome.CutoffTripped, time.Since(simStart).Seconds())
		metrics.RecordUltimates(outcome.UltimateCount)
	}

	metrics.RecordAllocation(excluded)
	return ran, nil
}

// book applies an outcome to every runner
func (e *Engine) book(race *models.RaceEvent, outcome *models.RaceOutcome, byID map[uuid.UUID]*models.Horse,
	ran map[uuid.UUID]bool, report *WeekReport) {
	for _, res := range outcome.Results {
		h, ok := byID[res.HorseID]
		if !ok {
			continue
		}
		ran[h.ID] = true
		report.PursePaid += applyResult(h, race, res, outcome.Year)

		if weeks := rollInjury(h, e.cfg.InjuryBaseChance, e.injury); weeks > 0 {
			e.logger.LogInjury(h.ID.String(), h.Name(), weeks)
			report.Injuries = append(report.Injuries, Injury{HorseID: h.ID, Horse: h.Name(), Weeks: weeks})
		}
	}
}

func (e *Engine) closeYear(roster []*models.Horse, report *WeekReport) {
	for _, h := range roster {
		if h.Status == models.HorseStatusRetired {
			continue
		}
		ageOneYear(h)
		if reason := retirementReason(h, e.cfg.RetirementAge); reason != "" {
			h.Status = models.HorseStatusRetired
			h.InjuryWeeks = 0
			h.TargetRace = ""
			e.logger.LogRetirement(h.ID.String(), h.Name(), h.Age, reason)
			report.Retirements = append(report.Retirements, Retirement{HorseID: h.ID, Horse: h.Name(), Age: h.Age, Reason: reason})
		}
	}
}

func (e *Engine) persist(ctx context.Context, report *WeekReport, roster []*models.Horse, next *models.SeasonState) error {
	for _, outcome := range report.Outcomes {
		if err := e.outcomes.Save(ctx, outcome); err != nil {
			return fmt.Errorf("failed to save outcome of %s: %w", outcome.RaceID, err)
		}
	}
	if err := e.horses.UpsertBatch(ctx, roster); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	if err := e.state.Save(ctx, next); err != nil {
		return fmt.Errorf("failed to save season state: %w", err)
	}
	return nil
}
