// Package rating turns a horse's stats and aptitudes into comparable race ratings,
// allocation priorities and betting-style odds.
package rating

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/derby-sim/internal/models"
)

const (
	// MinRating is the floor every rating is lifted to
	MinRating = 10

	SurfacePenaltyThreshold = 6
	SurfacePenaltyBase      = 7
	SurfacePenaltyPerGrade  = 300

	// ExtremeStatThreshold is the stamina (long races) or speed (sprints) below which the shortfall is lost
	ExtremeStatThreshold = 600

	ConditionMultiplierMin = 0.9
	ConditionMultiplierMax = 1.0

	// QualificationBonus is the golden-ticket priority bonus for trial-race placers
	QualificationBonus = 1_000_000

	EarningsWeightG1 = 0.2
	EarningsWeightG2 = 0.15
	EarningsWeightG3 = 0.1

	OddsScale = 2.0
	OddsMin   = 1.1
	OddsMax   = 99.9
)

// CalculateRaceRating derives a comparable integer rating for a horse in a race.
// The result is never below MinRating.
func CalculateRaceRating(horse *models.Horse, race *models.RaceEvent) int {
	score := float64(horse.Stats.Sum())

	if apt := horse.Aptitude.ForSurface(race.Surface); apt < SurfacePenaltyThreshold {
		score -= float64((SurfacePenaltyBase - apt) * SurfacePenaltyPerGrade)
	}

	switch race.DistanceCategory() {
	case models.DistanceLong:
		if horse.Stats.Stamina < ExtremeStatThreshold {
			score -= float64(ExtremeStatThreshold - horse.Stats.Stamina)
		}
	case models.DistanceShort:
		if horse.Stats.Speed < ExtremeStatThreshold {
			score -= float64(ExtremeStatThreshold - horse.Stats.Speed)
		}
	}

	score *= conditionMultiplier(horse.Condition)

	rating := int(math.Round(score))
	if rating < MinRating {
		return MinRating
	}
	return rating
}

func conditionMultiplier(condition int) float64 {
	m := ConditionMultiplierMin + (ConditionMultiplierMax-ConditionMultiplierMin)*float64(condition)/float64(models.ConditionMax)
	return math.Max(ConditionMultiplierMin, math.Min(ConditionMultiplierMax, m))
}

// EarningsWeight is the share of career earnings added to the priority for a grade
func EarningsWeight(grade models.Grade) float64 {
	switch grade {
	case models.GradeG1:
		return EarningsWeightG1
	case models.GradeG2:
		return EarningsWeightG2
	default:
		return EarningsWeightG3
	}
}

// CalculatePriorityScore ranks an application for a race slot
func CalculatePriorityScore(horse *models.Horse, race *models.RaceEvent, year int) float64 {
	score := float64(CalculateRaceRating(horse, race))
	score += float64(horse.Career.Earnings) * EarningsWeight(race.Grade)
	if IsQualified(horse, race, year) {
		score += QualificationBonus
	}
	return score
}

// IsQualified reports whether the horse holds a golden ticket for the race this year
func IsQualified(horse *models.Horse, race *models.RaceEvent, year int) bool {
	return len(race.TrialRaces) > 0 && horse.HasTop3In(year, race.TrialRaces)
}

// Odds returns decimal odds for a horse against the field, clamped and rounded to one place.
// An empty field prices the horse against itself.
func Odds(horse *models.Horse, field []*models.Horse, race *models.RaceEvent) decimal.Decimal {
	own := CalculateRaceRating(horse, race)
	best := 0
	for _, rival := range field {
		if rival == nil {
			continue
		}
		if r := CalculateRaceRating(rival, race); r > best {
			best = r
		}
	}
	if best == 0 {
		best = own
	}

	ratio := float64(best) / float64(own)
	odds := math.Pow(ratio, 3) * OddsScale
	odds = math.Max(OddsMin, math.Min(OddsMax, odds))
	return decimal.NewFromFloat(odds).Round(1)
}

// CalculateOdds formats Odds with one decimal place
func CalculateOdds(horse *models.Horse, field []*models.Horse, race *models.RaceEvent) string {
	return Odds(horse, field, race).StringFixed(1)
}
