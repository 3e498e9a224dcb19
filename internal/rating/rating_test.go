package rating

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby-sim/internal/models"
)

func testRace(distance int, surface models.Surface, grade models.Grade) *models.RaceEvent {
	return &models.RaceEvent{ID: "test", Name: "Test Stakes", Grade: grade, Week: 10, Surface: surface, Distance: distance}
}

func testHorse(stats models.Stats) *models.Horse {
	apt := models.Aptitude{
		Surface:  models.SurfaceAptitude{Turf: 8, Dirt: 2},
		Distance: models.DistanceAptitude{Short: 7, Mile: 7, Medium: 7, Long: 7},
		Strategy: models.StrategyAptitude{Runner: 7, Leader: 7, Betweener: 7, Chaser: 7},
	}
	return models.NewHorse("Rating", "Test", models.TeamFreeAgent, 4, stats, apt)
}

func stats(v int) models.Stats {
	return models.Stats{Speed: v, Stamina: v, Power: v, Guts: v, Wisdom: v}
}

func TestCalculateRaceRating(t *testing.T) {
	tests := []struct {
		name      string
		stats     models.Stats
		race      *models.RaceEvent
		condition int
		want      int
	}{
		{"plain medium turf", stats(600), testRace(2000, models.SurfaceTurf, models.GradeG1), 100, 3000},
		{"condition multiplier", stats(600), testRace(2000, models.SurfaceTurf, models.GradeG1), 0, 2700},
		{"half condition", stats(600), testRace(2000, models.SurfaceTurf, models.GradeG1), 50, 2850},
		{"surface penalty", stats(600), testRace(2000, models.SurfaceDirt, models.GradeG1), 100, 3000 - 5*300},
		{"long race stamina shortfall", models.Stats{Speed: 800, Stamina: 400, Power: 600, Guts: 600, Wisdom: 600}, testRace(2400, models.SurfaceTurf, models.GradeG1), 100, 3000 - 200},
		{"sprint speed shortfall", models.Stats{Speed: 500, Stamina: 700, Power: 600, Guts: 600, Wisdom: 600}, testRace(1200, models.SurfaceTurf, models.GradeG1), 100, 3000 - 100},
		{"mile ignores extremes", models.Stats{Speed: 100, Stamina: 100, Power: 600, Guts: 600, Wisdom: 600}, testRace(1600, models.SurfaceTurf, models.GradeG1), 100, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHorse(tt.stats)
			h.Condition = tt.condition
			assert.Equal(t, tt.want, CalculateRaceRating(h, tt.race))
		})
	}
}

func TestRatingFloor(t *testing.T) {
	races := []*models.RaceEvent{
		testRace(1200, models.SurfaceDirt, models.GradeG3),
		testRace(1600, models.SurfaceTurf, models.GradeG2),
		testRace(3200, models.SurfaceDirt, models.GradeG1),
	}
	for _, v := range []int{-500, 0, 1, 50, 300, 1200} {
		for _, apt := range []int{1, 3, 6, 10} {
			for _, r := range races {
				h := testHorse(stats(v))
				h.Aptitude.Surface = models.SurfaceAptitude{Turf: apt, Dirt: apt}
				h.Condition = 0
				assert.GreaterOrEqual(t, CalculateRaceRating(h, r), MinRating)
			}
		}
	}
}

func TestCalculatePriorityScore(t *testing.T) {
	g1 := testRace(2400, models.SurfaceTurf, models.GradeG1)
	g1.TrialRaces = []string{"Trial Stakes"}

	h := testHorse(stats(600))
	h.Career.Earnings = 10000
	base := float64(CalculateRaceRating(h, g1))

	assert.InDelta(t, base+2000, CalculatePriorityScore(h, g1, 2), 1e-9)

	g2 := testRace(2400, models.SurfaceTurf, models.GradeG2)
	assert.InDelta(t, base+1500, CalculatePriorityScore(h, g2, 2), 1e-9)
	g3 := testRace(2400, models.SurfaceTurf, models.GradeG3)
	assert.InDelta(t, base+1000, CalculatePriorityScore(h, g3, 2), 1e-9)

	h.History = append(h.History, models.RaceRecord{Year: 2, Week: 5, RaceName: "Trial Stakes", Grade: models.GradeG2, Rank: 3})
	assert.True(t, IsQualified(h, g1, 2))
	assert.GreaterOrEqual(t, CalculatePriorityScore(h, g1, 2), float64(QualificationBonus))

	assert.False(t, IsQualified(h, g1, 3), "qualification only counts in the same year")
	assert.False(t, IsQualified(h, g2, 2), "races without trials never qualify")
}

func TestOddsClamp(t *testing.T) {
	race := testRace(2000, models.SurfaceTurf, models.GradeG1)
	strong := testHorse(stats(1200))
	weak := testHorse(stats(100))
	field := []*models.Horse{strong, weak}

	for _, h := range field {
		v, err := strconv.ParseFloat(CalculateOdds(h, field, race), 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, OddsMin)
		assert.LessOrEqual(t, v, OddsMax)
	}

	assert.Equal(t, "2.0", CalculateOdds(strong, field, race))
	assert.Equal(t, "99.9", CalculateOdds(weak, field, race))
}

func TestOddsShape(t *testing.T) {
	race := testRace(2000, models.SurfaceTurf, models.GradeG1)
	fav := testHorse(stats(600))
	second := testHorse(stats(500))
	field := []*models.Horse{fav, second}

	// (3000/2500)^3 * 2 = 3.456
	assert.Equal(t, "3.5", CalculateOdds(second, field, race))
	assert.Equal(t, "2.0", CalculateOdds(fav, nil, race))

	// a standout outside the listed field is priced short
	outsider := testHorse(stats(300))
	assert.Equal(t, "1.1", CalculateOdds(fav, []*models.Horse{outsider}, race))
}
