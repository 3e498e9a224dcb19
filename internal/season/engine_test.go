package season

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby-sim/internal/calendar"
	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/logger"
	"github.com/yourusername/derby-sim/internal/matchmaking"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/race"
	"github.com/yourusername/derby-sim/internal/repository"
	"github.com/yourusername/derby-sim/internal/rng"
)

type acceptAll struct{}

func (acceptAll) ShouldEnterRace(*models.Horse, *models.RaceEvent, int, int) bool { return true }

const raceWeek = 2

func testCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.New([]models.RaceEvent{
		{ID: "spring-cup", Name: "Spring Cup", Grade: models.GradeG1, Week: raceWeek, Surface: models.SurfaceTurf, Distance: 2000, Purse: 1000},
	})
	require.NoError(t, err)
	return cal
}

func testHorse(name string, age, stat int) *models.Horse {
	apt := models.Aptitude{
		Surface:  models.SurfaceAptitude{Turf: 8, Dirt: 8},
		Distance: models.DistanceAptitude{Short: 8, Mile: 8, Medium: 8, Long: 8},
		Strategy: models.StrategyAptitude{Runner: 5, Leader: 8, Betweener: 5, Chaser: 5},
	}
	s := models.Stats{Speed: stat, Stamina: stat, Power: stat, Guts: stat, Wisdom: stat}
	return models.NewHorse(name, "", models.TeamFreeAgent, age, s, apt)
}

type fixture struct {
	engine *Engine
	repos  *repository.Repositories
}

func newFixture(t *testing.T, cfg Config, injury, training rng.Source, roster ...*models.Horse) *fixture {
	t.Helper()
	ctx := context.Background()

	allocCfg := matchmaking.DefaultConfig()
	allocCfg.FloorG1, allocCfg.FloorG2, allocCfg.FloorOther = 0, 0, 0
	allocCfg.Workers = 2

	repos := repository.NewMemoryRepositories(repository.NewMemoryStore())
	for _, h := range roster {
		require.NoError(t, repos.Horse.Create(ctx, h))
	}

	engine, err := NewEngine(cfg, Dependencies{
		Calendar:  testCalendar(t),
		Allocator: matchmaking.NewAllocator(allocCfg, acceptAll{}, logger.Discard()),
		Simulator: race.NewSimulator(race.DefaultConfig(), rng.Fixed(0.5), logger.Discard()),
		Repos:     repos,
		Injury:    injury,
		Training:  training,
		Logger:    logger.Discard(),
	})
	require.NoError(t, err)
	return &fixture{engine: engine, repos: repos}
}

func (f *fixture) setWeek(t *testing.T, year, week int) {
	t.Helper()
	require.NoError(t, f.repos.Season.Save(context.Background(), &models.SeasonState{Year: year, Week: week}))
}

func (f *fixture) horse(t *testing.T, h *models.Horse) *models.Horse {
	t.Helper()
	got, err := f.repos.Horse.GetByID(context.Background(), h.ID)
	require.NoError(t, err)
	return got
}

func noTraining() Config {
	cfg := DefaultConfig()
	cfg.TrainingEnabled = false
	return cfg
}

func TestStart(t *testing.T) {
	ctx := context.Background()
	cfg := noTraining()
	cfg.StartYear = 3
	f := newFixture(t, cfg, rng.Fixed(0.99), rng.Fixed(0))

	_, err := f.engine.Current(ctx)
	assert.ErrorIs(t, err, models.ErrSeasonNotStarted)

	state, err := f.engine.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Year)
	assert.Equal(t, 1, state.Week)

	f.setWeek(t, 3, 20)
	state, err = f.engine.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, state.Week, "start never resets a running season")
}

func TestAdvanceWeekRequiresStart(t *testing.T) {
	f := newFixture(t, noTraining(), rng.Fixed(0.99), rng.Fixed(0))
	_, err := f.engine.AdvanceWeek(context.Background())
	assert.ErrorIs(t, err, models.ErrSeasonNotStarted)
}

func TestQuietWeekRestsHorses(t *testing.T) {
	tired := testHorse("Tired", 4, 600)
	tired.Condition = 50
	tired.Fatigue = 12

	f := newFixture(t, noTraining(), rng.Fixed(0.99), rng.Fixed(0), tired)
	f.setWeek(t, 1, 1)

	report, err := f.engine.AdvanceWeek(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, models.SeasonState{Year: 1, Week: 2}, report.Next)

	got := f.horse(t, tired)
	assert.Equal(t, 60, got.Condition)
	assert.Equal(t, 7, got.Fatigue)

	state, err := f.engine.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, state.Week)
}

func TestRaceWeekBooksResults(t *testing.T) {
	ctx := context.Background()
	roster := []*models.Horse{
		testHorse("Alpha", 4, 900),
		testHorse("Bravo", 4, 700),
		testHorse("Charlie", 4, 500),
	}
	roster[0].TargetRace = "Spring Cup"
	roster[1].TargetRace = "some-other-race"

	f := newFixture(t, noTraining(), rng.Fixed(0.99), rng.Fixed(0), roster...)
	f.setWeek(t, 1, raceWeek)

	report, err := f.engine.AdvanceWeek(ctx)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Injuries)
	assert.Equal(t, int64(500+200+130), report.PursePaid)

	outcome := report.Outcomes[0]
	assert.Equal(t, 1, outcome.Year)
	assert.Equal(t, raceWeek, outcome.Week)

	stored, err := f.repos.Outcome.ListByWeek(ctx, 1, raceWeek)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, outcome.ID, stored[0].ID)

	var earnings int64
	for _, h := range roster {
		got := f.horse(t, h)
		res, ok := outcome.ResultFor(h.ID)
		require.True(t, ok, h.Name())

		require.Len(t, got.History, 1)
		assert.Equal(t, models.RaceRecord{Year: 1, Week: raceWeek, RaceName: "Spring Cup", Grade: models.GradeG1, Rank: res.Rank, Time: res.FinishTime}, got.History[0])
		assert.Equal(t, 1, got.Career.Races)
		assert.Equal(t, 100-ConditionCostG1, got.Condition)
		assert.Equal(t, FatiguePerRace, got.Fatigue)
		earnings += got.Career.Earnings

		if res.Rank == 1 {
			assert.Equal(t, 1, got.Career.Wins)
			assert.Equal(t, int64(500), got.Career.Earnings)
		}
	}
	assert.Equal(t, report.PursePaid, earnings)

	assert.Empty(t, f.horse(t, roster[0]).TargetRace, "target cleared once run")
	assert.Equal(t, "some-other-race", f.horse(t, roster[1]).TargetRace)
}

func TestShortFieldIsSkipped(t *testing.T) {
	lonely := testHorse("Lonely", 4, 800)
	f := newFixture(t, noTraining(), rng.Fixed(0.99), rng.Fixed(0), lonely)
	f.setWeek(t, 1, raceWeek)

	report, err := f.engine.AdvanceWeek(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, []string{"spring-cup"}, report.Skipped)

	got := f.horse(t, lonely)
	assert.Empty(t, got.History)
	assert.Equal(t, 0, got.Career.Races)
}

func TestInjuryAndRecovery(t *testing.T) {
	ctx := context.Background()
	a := testHorse("Fragile", 4, 800)
	b := testHorse("Brittle", 4, 780)

	// every roll injures, weeks = 2 + int(0.5*7) = 5
	f := newFixture(t, noTraining(), rng.NewSequence(0.0, 0.5), rng.Fixed(0), a, b)
	f.setWeek(t, 1, raceWeek)

	report, err := f.engine.AdvanceWeek(ctx)
	require.NoError(t, err)
	require.Len(t, report.Injuries, 2)
	for _, inj := range report.Injuries {
		assert.Equal(t, 5, inj.Weeks)
	}

	got := f.horse(t, a)
	assert.Equal(t, models.HorseStatusInjured, got.Status)
	assert.Equal(t, 5, got.InjuryWeeks)

	reports, err := f.engine.AdvanceWeeks(ctx, 4)
	require.NoError(t, err)
	require.Len(t, reports, 4)

	got = f.horse(t, a)
	assert.Equal(t, models.HorseStatusInjured, got.Status)
	assert.Equal(t, 1, got.InjuryWeeks)

	_, err = f.engine.AdvanceWeek(ctx)
	require.NoError(t, err)
	got = f.horse(t, a)
	assert.Equal(t, models.HorseStatusActive, got.Status)
	assert.Equal(t, 0, got.InjuryWeeks)
}

func TestTraining(t *testing.T) {
	growing := testHorse("Growing", 3, 500)
	growing.Potential = growing.Stats.Sum() + 100
	capped := testHorse("Capped", 3, 500)

	// Fixed(0) picks speed and the minimum gain
	f := newFixture(t, DefaultConfig(), rng.Fixed(0.99), rng.Fixed(0), growing, capped)
	f.setWeek(t, 1, 5)

	report, err := f.engine.AdvanceWeek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TrainingMinGain, report.TrainingGain)

	assert.Equal(t, 500+TrainingMinGain, f.horse(t, growing).Stats.Speed)
	assert.Equal(t, 500, f.horse(t, capped).Stats.Speed)
}

func TestYearEnd(t *testing.T) {
	veteran := testHorse("Veteran", 7, 800)
	midlife := testHorse("Midlife", 5, 1000)
	worn := testHorse("Worn", 6, 800)
	worn.Condition = 5
	young := testHorse("Young", 3, 600)

	f := newFixture(t, noTraining(), rng.Fixed(0.99), rng.Fixed(0), veteran, midlife, worn, young)
	f.setWeek(t, 1, models.WeeksPerYear)

	report, err := f.engine.AdvanceWeek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.SeasonState{Year: 2, Week: 1}, report.Next)

	reasons := make(map[string]string)
	for _, r := range report.Retirements {
		reasons[r.Horse] = r.Reason
	}
	assert.Equal(t, map[string]string{"Veteran": "age", "Worn": "worn out"}, reasons)

	assert.Equal(t, models.HorseStatusRetired, f.horse(t, veteran).Status)
	assert.Equal(t, 8, f.horse(t, veteran).Age)

	mid := f.horse(t, midlife)
	assert.Equal(t, models.HorseStatusActive, mid.Status)
	assert.Equal(t, 6, mid.Age)
	assert.Equal(t, 970, mid.Stats.Speed)
	assert.Equal(t, 97, mid.CurrentOvr)

	yng := f.horse(t, young)
	assert.Equal(t, 4, yng.Age)
	assert.Equal(t, 600, yng.Stats.Speed)
}

func TestRetiredHorsesAreLeftAlone(t *testing.T) {
	old := testHorse("Old", 9, 500)
	old.Status = models.HorseStatusRetired
	old.Condition = 40
	other := testHorse("Other", 4, 500)

	f := newFixture(t, noTraining(), rng.Fixed(0.99), rng.Fixed(0), old, other)
	f.setWeek(t, 1, models.WeeksPerYear)

	report, err := f.engine.AdvanceWeek(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Retirements)

	got := f.horse(t, old)
	assert.Equal(t, 40, got.Condition)
	assert.Equal(t, 9, got.Age)
}

func TestAdvanceWeeksStopsOnCancel(t *testing.T) {
	f := newFixture(t, noTraining(), rng.Fixed(0.99), rng.Fixed(0))
	f.setWeek(t, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := f.engine.AdvanceWeeks(ctx, 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)

	_, err = f.engine.AdvanceWeeks(context.Background(), 0)
	assert.Error(t, err)
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(DefaultConfig(), Dependencies{})
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		Season:     config.SeasonConfig{StartYear: 5, InjuryBaseChance: 0.1, RetirementAge: 10},
		Allocation: config.AllocationConfig{MinFieldToRun: 6},
	}
	c := FromConfig(cfg)
	assert.Equal(t, 5, c.StartYear)
	assert.Equal(t, 0.1, c.InjuryBaseChance)
	assert.Equal(t, 10, c.RetirementAge)
	assert.Equal(t, 6, c.MinFieldToRun)
	assert.False(t, c.TrainingEnabled)

	assert.Equal(t, DefaultConfig(), FromConfig(nil))
}

func TestPurseShare(t *testing.T) {
	tests := []struct {
		purse int64
		rank  int
		want  int64
	}{
		{1000, 1, 500},
		{1000, 2, 200},
		{1000, 5, 70},
		{1000, 6, 0},
		{1000, 0, 0},
		{999, 3, 130},
		{0, 1, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_rank%d", tt.purse, tt.rank), func(t *testing.T) {
			assert.Equal(t, tt.want, purseShare(tt.purse, tt.rank))
		})
	}
}
