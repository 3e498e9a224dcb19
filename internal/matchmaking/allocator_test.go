package matchmaking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/logger"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/policy"
	"github.com/yourusername/derby-sim/internal/rating"
)

type acceptAll struct{}

func (acceptAll) ShouldEnterRace(*models.Horse, *models.RaceEvent, int, int) bool { return true }

type acceptOnly map[string]bool

func (a acceptOnly) ShouldEnterRace(_ *models.Horse, r *models.RaceEvent, _, _ int) bool {
	return a[r.ID]
}

const (
	testWeek = 20
	testYear = 2
)

func g1(id string) *models.RaceEvent {
	return &models.RaceEvent{ID: id, Name: id, Grade: models.GradeG1, Week: testWeek, Surface: models.SurfaceTurf, Distance: 2000}
}

func horse(i, statValue int) *models.Horse {
	apt := models.Aptitude{
		Surface:  models.SurfaceAptitude{Turf: 8, Dirt: 8},
		Distance: models.DistanceAptitude{Short: 8, Mile: 8, Medium: 8, Long: 8},
		Strategy: models.StrategyAptitude{Runner: 5, Leader: 8, Betweener: 5, Chaser: 5},
	}
	s := models.Stats{Speed: statValue, Stamina: statValue, Power: statValue, Guts: statValue, Wisdom: statValue}
	return models.NewHorse(fmt.Sprintf("Horse%02d", i), "", models.TeamFreeAgent, 4, s, apt)
}

func newTestAllocator(p policy.EntryPolicy) *Allocator {
	cfg := DefaultConfig()
	cfg.Workers = 4
	return NewAllocator(cfg, p, logger.Discard())
}

func TestTwentyIntoEighteen(t *testing.T) {
	race := g1("marquee")
	var roster []*models.Horse
	for i := 0; i < 20; i++ {
		roster = append(roster, horse(i, 600+i*10))
	}

	allocs := newTestAllocator(policy.Default()).Allocate(roster, []*models.RaceEvent{race}, testWeek, testYear)
	alloc := allocs[race.ID]
	require.NotNil(t, alloc)

	assert.Len(t, alloc.Field, 18)
	require.Len(t, alloc.Excluded, 2)
	assert.ElementsMatch(t, []*models.Horse{roster[0], roster[1]}, alloc.Excluded)

	for i := 1; i < len(alloc.Field); i++ {
		prev := rating.CalculatePriorityScore(alloc.Field[i-1], race, testYear)
		cur := rating.CalculatePriorityScore(alloc.Field[i], race, testYear)
		assert.GreaterOrEqual(t, prev, cur, "field is filled in priority order")
	}
}

func TestGoldenTicketBypassesFloorAndOrdering(t *testing.T) {
	race := g1("classic")
	race.TrialRaces = []string{"Trial"}

	var roster []*models.Horse
	for i := 0; i < 20; i++ {
		roster = append(roster, horse(i, 800))
	}
	qualifier := horse(99, 300)
	qualifier.History = append(qualifier.History, models.RaceRecord{Year: testYear, Week: 10, RaceName: "Trial", Grade: models.GradeG2, Rank: 2})
	roster = append(roster, qualifier)

	require.Less(t, rating.CalculateRaceRating(qualifier, race), DefaultFloorG1)

	alloc := newTestAllocator(acceptAll{}).Allocate(roster, []*models.RaceEvent{race}, testWeek, testYear)[race.ID]
	require.Len(t, alloc.Field, 18)
	assert.Same(t, qualifier, alloc.Field[0])
	assert.Len(t, alloc.Excluded, 3)
}

func TestRatingFloorRecordsExclusion(t *testing.T) {
	race := g1("big-race")
	weak := horse(1, 300)
	strong := horse(2, 700)

	alloc := newTestAllocator(acceptAll{}).Allocate([]*models.Horse{weak, strong}, []*models.RaceEvent{race}, testWeek, testYear)[race.ID]
	assert.Equal(t, []*models.Horse{strong}, alloc.Field)
	assert.Equal(t, []*models.Horse{weak}, alloc.Excluded)
}

func TestCapacityAndExclusivity(t *testing.T) {
	races := []*models.RaceEvent{g1("race-a"), g1("race-b")}
	var roster []*models.Horse
	for i := 0; i < 40; i++ {
		roster = append(roster, horse(i, 600+i*5))
	}

	allocs := newTestAllocator(acceptAll{}).Allocate(roster, races, testWeek, testYear)
	require.Len(t, allocs, 2)

	seen := map[string]string{}
	for id, alloc := range allocs {
		assert.LessOrEqual(t, len(alloc.Field), DefaultCapacity)
		for _, h := range alloc.Field {
			prev, dup := seen[h.ID.String()]
			assert.False(t, dup, "horse %s in both %s and %s", h.Name(), prev, id)
			seen[h.ID.String()] = id
		}
	}
	assert.Len(t, seen, 36)
	assert.Len(t, allocs["race-a"].Excluded, 4, "overflow is attributed to the top choice only")
	assert.Empty(t, allocs["race-b"].Excluded)
}

func TestRosterFilter(t *testing.T) {
	race := g1("filtered")
	tired := horse(1, 700)
	tired.Condition = DefaultMinCondition - 1
	injured := horse(2, 700)
	injured.Status = models.HorseStatusInjured
	retired := horse(3, 700)
	retired.Status = models.HorseStatusRetired
	fit := horse(4, 700)

	alloc := newTestAllocator(acceptAll{}).Allocate([]*models.Horse{tired, injured, retired, nil, fit}, []*models.RaceEvent{race}, testWeek, testYear)[race.ID]
	assert.Equal(t, []*models.Horse{fit}, alloc.Field)
	assert.Empty(t, alloc.Excluded)
}

func TestInjuredHorseWithTargetIsConsidered(t *testing.T) {
	race := g1("Arima Kinen")
	star := horse(1, 800)
	star.Status = models.HorseStatusInjured
	star.InjuryWeeks = 2
	star.TargetRace = "Arima Kinen"
	sidelined := horse(2, 800)
	sidelined.Status = models.HorseStatusInjured
	sidelined.InjuryWeeks = 2
	roster := []*models.Horse{star, sidelined, horse(3, 700), horse(4, 700)}

	alloc := newTestAllocator(policy.Default()).Allocate(roster, []*models.RaceEvent{race}, testWeek, testYear)[race.ID]
	assert.Contains(t, alloc.Field, star)
	assert.NotContains(t, alloc.Field, sidelined)
}

func TestEveryRaceGetsAnEntry(t *testing.T) {
	races := []*models.RaceEvent{g1("popular"), g1("ignored")}
	roster := []*models.Horse{horse(1, 700), horse(2, 700)}

	allocs := newTestAllocator(acceptOnly{"popular": true}).Allocate(roster, races, testWeek, testYear)
	require.Contains(t, allocs, "ignored")
	assert.NotNil(t, allocs["ignored"].Field)
	assert.Empty(t, allocs["ignored"].Field)
	assert.Len(t, allocs["popular"].Field, 2)
	assert.False(t, allocs["ignored"].CanRun(MinFieldToRun))
	assert.True(t, allocs["popular"].CanRun(MinFieldToRun))
}

func TestHigherPriorityRaceWins(t *testing.T) {
	g2 := &models.RaceEvent{ID: "g2", Name: "g2", Grade: models.GradeG2, Week: testWeek, Surface: models.SurfaceTurf, Distance: 2000}
	top := g1("g1")
	h := horse(1, 700)
	h.Career.Earnings = 5000

	allocs := newTestAllocator(acceptAll{}).Allocate([]*models.Horse{h}, []*models.RaceEvent{g2, top}, testWeek, testYear)
	assert.Equal(t, []*models.Horse{h}, allocs["g1"].Field, "earnings weigh more for G1")
	assert.Empty(t, allocs["g2"].Field)
}

func TestCreateOfficialField(t *testing.T) {
	race := g1("official")
	var entrants []*models.Horse
	for i := 0; i < 5; i++ {
		entrants = append(entrants, horse(i, 400+i*100))
	}

	alloc := CreateOfficialField(entrants, race, 3)
	assert.Equal(t, []*models.Horse{entrants[4], entrants[3], entrants[2]}, alloc.Field)
	assert.Equal(t, []*models.Horse{entrants[1], entrants[0]}, alloc.Excluded)

	all := CreateOfficialField(entrants, race, 18)
	assert.Len(t, all.Field, 5)
	assert.Empty(t, all.Excluded)
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(&config.AllocationConfig{Capacity: 12, FloorG1: 2500})
	assert.Equal(t, 12, cfg.Capacity)
	assert.Equal(t, 2500, cfg.Floor(models.GradeG1))
	assert.Equal(t, DefaultFloorG2, cfg.Floor(models.GradeG2))
	assert.Equal(t, DefaultFloorOther, cfg.Floor(models.GradeG3))
	assert.Equal(t, DefaultMinCondition, cfg.MinCondition)
}
