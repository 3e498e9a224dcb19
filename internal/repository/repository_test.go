package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/database"
	"github.com/yourusername/derby-sim/internal/models"
)

func newHorse(name, team string) *models.Horse {
	h := models.NewHorse(name, "Star", team, 3,
		models.Stats{Speed: 500, Stamina: 450, Power: 400, Guts: 350, Wisdom: 300},
		models.Aptitude{
			Surface:  models.SurfaceAptitude{Turf: 8, Dirt: 3},
			Distance: models.DistanceAptitude{Short: 2, Mile: 6, Medium: 8, Long: 5},
			Strategy: models.StrategyAptitude{Runner: 3, Leader: 7, Betweener: 5, Chaser: 2},
		})
	h.History = append(h.History, models.RaceRecord{Year: 1, Week: 14, RaceName: "Satsuki Sho", Grade: models.GradeG1, Rank: 2, Time: 118.4})
	h.Skills = append(h.Skills, models.Skill{Name: "Burst", Chance: 0.2, Value: 0.5, Ultimate: true})
	h.Career = models.Career{Races: 1, Top3: 1, Earnings: 800}
	return h
}

func newOutcome(year, week int, raceID string) *models.RaceOutcome {
	return &models.RaceOutcome{
		ID:       uuid.New(),
		RaceID:   raceID,
		RaceName: raceID,
		Year:     year,
		Week:     week,
		Distance: 2000,
		Surface:  models.SurfaceTurf,
		Results: []models.Result{
			{HorseID: uuid.New(), HorseName: "A", Rank: 1, FinishTime: 120.12, Status: models.FinishStatusFinished, Splits: []float64{30, 60, 90, 120.12}},
			{HorseID: uuid.New(), HorseName: "B", Rank: 2, FinishTime: 121.5, Status: models.FinishStatusFinished},
		},
		Log:       []models.LogEntry{{Message: "And they're off!", TimePct: 0}, {Message: "A wins!", TimePct: 1}},
		CreatedAt: time.Now().UTC(),
	}
}

// runRepositoryContract exercises every backend with the same expectations
func runRepositoryContract(t *testing.T, repos *Repositories) {
	ctx := context.Background()

	t.Run("horse round trip", func(t *testing.T) {
		h := newHorse("Round", models.TeamPlayer)
		h.TargetRace = "tokyo-yushun"
		require.NoError(t, repos.Horse.Create(ctx, h))

		got, err := repos.Horse.GetByID(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, h.ID, got.ID)
		assert.Equal(t, h.Name(), got.Name())
		assert.Equal(t, h.Stats, got.Stats)
		assert.Equal(t, h.Aptitude, got.Aptitude)
		assert.Equal(t, h.Career, got.Career)
		assert.Equal(t, h.History, got.History)
		assert.Equal(t, h.Skills, got.Skills)
		assert.Equal(t, "tokyo-yushun", got.TargetRace)
		assert.Equal(t, models.HorseStatusActive, got.Status)
		assert.WithinDuration(t, h.CreatedAt, got.CreatedAt, time.Millisecond)

		err = repos.Horse.Create(ctx, h)
		assert.True(t, errors.Is(err, models.ErrDuplicateKey))
	})

	t.Run("horse not found", func(t *testing.T) {
		_, err := repos.Horse.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.ErrorIs(t, repos.Horse.Delete(ctx, uuid.New()), models.ErrNotFound)
		assert.ErrorIs(t, repos.Horse.Update(ctx, newHorse("Ghost", models.TeamFreeAgent)), models.ErrNotFound)
	})

	t.Run("update and delete", func(t *testing.T) {
		h := newHorse("Mutable", models.TeamFreeAgent)
		require.NoError(t, repos.Horse.Create(ctx, h))

		h.Condition = 55
		h.Status = models.HorseStatusInjured
		h.InjuryWeeks = 3
		require.NoError(t, repos.Horse.Update(ctx, h))

		got, err := repos.Horse.GetByID(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, 55, got.Condition)
		assert.Equal(t, models.HorseStatusInjured, got.Status)
		assert.Equal(t, 3, got.InjuryWeeks)

		require.NoError(t, repos.Horse.Delete(ctx, h.ID))
		_, err = repos.Horse.GetByID(ctx, h.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("upsert batch and team listing", func(t *testing.T) {
		mine := newHorse("Mine", "team-upsert")
		require.NoError(t, repos.Horse.Create(ctx, mine))

		mine.Career.Wins = 4
		fresh := newHorse("Fresh", "team-upsert")
		fresh.CreatedAt = mine.CreatedAt.Add(time.Second)
		require.NoError(t, repos.Horse.UpsertBatch(ctx, []*models.Horse{mine, fresh}))

		team, err := repos.Horse.ListByTeam(ctx, "team-upsert")
		require.NoError(t, err)
		require.Len(t, team, 2)
		assert.Equal(t, mine.ID, team[0].ID, "ordered by creation")
		assert.Equal(t, 4, team[0].Career.Wins)

		all, err := repos.Horse.List(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 2)

		empty, err := repos.Horse.ListByTeam(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("season state", func(t *testing.T) {
		_, err := repos.Season.Get(ctx)
		assert.ErrorIs(t, err, models.ErrSeasonNotStarted)

		require.NoError(t, repos.Season.Save(ctx, &models.SeasonState{Year: 1, Week: 1}))
		require.NoError(t, repos.Season.Save(ctx, &models.SeasonState{Year: 2, Week: 17}))

		state, err := repos.Season.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, state.Year)
		assert.Equal(t, 17, state.Week)
		assert.False(t, state.UpdatedAt.IsZero())
	})

	t.Run("outcomes", func(t *testing.T) {
		first := newOutcome(3, 10, "race-a")
		second := newOutcome(3, 10, "race-b")
		second.CreatedAt = first.CreatedAt.Add(time.Second)
		other := newOutcome(3, 11, "race-c")
		other.CutoffTripped = true

		for _, o := range []*models.RaceOutcome{first, second, other} {
			require.NoError(t, repos.Outcome.Save(ctx, o))
		}
		assert.ErrorIs(t, repos.Outcome.Save(ctx, first), models.ErrDuplicateKey)

		got, err := repos.Outcome.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Results, got.Results)
		assert.Equal(t, first.Log, got.Log)
		assert.Equal(t, first.Surface, got.Surface)

		week, err := repos.Outcome.ListByWeek(ctx, 3, 10)
		require.NoError(t, err)
		require.Len(t, week, 2)
		assert.Equal(t, "race-a", week[0].RaceID)
		assert.Equal(t, "race-b", week[1].RaceID)

		year, err := repos.Outcome.ListByYear(ctx, 3)
		require.NoError(t, err)
		require.Len(t, year, 3)
		assert.True(t, year[2].CutoffTripped)

		_, err = repos.Outcome.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repos.Ping(ctx))
	})
}

func TestMemoryRepositories(t *testing.T) {
	repos := NewMemoryRepositories(NewMemoryStore())
	defer repos.Close()
	assert.Equal(t, DriverMemory, repos.Driver())

	runRepositoryContract(t, repos)
}

func TestMemoryRepositoriesReturnCopies(t *testing.T) {
	ctx := context.Background()
	repos := NewMemoryRepositories(NewMemoryStore())

	h := newHorse("Copy", models.TeamPlayer)
	require.NoError(t, repos.Horse.Create(ctx, h))
	h.Condition = 1

	got, err := repos.Horse.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCondition, got.Condition)

	got.History[0].Rank = 9
	again, err := repos.Horse.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.History[0].Rank)
}

func TestSQLiteRepositories(t *testing.T) {
	repos, err := NewRepositories(context.Background(), &config.DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	defer repos.Close()
	assert.Equal(t, DriverSQLite, repos.Driver())

	runRepositoryContract(t, repos)
}

func TestSQLiteSaveFilePersists(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/derby.db"

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	repos := NewSQLiteRepositories(db)
	h := newHorse("Durable", models.TeamPlayer)
	require.NoError(t, repos.Horse.Create(ctx, h))
	require.NoError(t, repos.Season.Save(ctx, &models.SeasonState{Year: 4, Week: 30}))
	repos.Close()

	db, err = OpenSQLite(path)
	require.NoError(t, err)
	reopened := NewSQLiteRepositories(db)
	defer reopened.Close()

	got, err := reopened.Horse.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Durable Star", got.Name())

	state, err := reopened.Season.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, state.Week)
}

func TestPostgresRepositories(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	runRepositoryContract(t, NewPostgresRepositories(db))
}

func TestNewRepositoriesUnknownDriver(t *testing.T) {
	_, err := NewRepositories(context.Background(), &config.DatabaseConfig{Driver: "mongo"})
	assert.Error(t, err)

	_, err = NewRepositories(context.Background(), nil)
	assert.Error(t, err)
}
