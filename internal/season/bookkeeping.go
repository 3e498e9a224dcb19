package season

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/rng"
)

// Post-race and weekly bookkeeping
const (
	ConditionCostG1  = 25
	ConditionCost    = 20
	FatiguePerRace   = 10
	RecoveryPerWeek  = 10
	FatigueRecovery  = 5
	InjuryMinWeeks   = 2
	InjuryMaxWeeks   = 8
	InjuryBaseChance = 0.02
	// InjuryFatigueDivisor turns fatigue points into extra injury chance
	InjuryFatigueDivisor = 1000.0

	TrainingMinGain = 2
	TrainingMaxGain = 6

	DeclineAge    = 6
	DeclineFactor = 0.97
	RetirementAge = 8
	// WornOutCondition retires a declining horse at year end
	WornOutCondition = 20
)

// PurseShares is the percentage of the purse paid to each of the first five places
var PurseShares = []int64{50, 20, 13, 10, 7}

var hundred = decimal.NewFromInt(100)

// purseShare returns the prize for a finishing rank, rounded to whole units
func purseShare(purse int64, rank int) int64 {
	if rank < 1 || rank > len(PurseShares) || purse <= 0 {
		return 0
	}
	return decimal.NewFromInt(purse).
		Mul(decimal.NewFromInt(PurseShares[rank-1])).
		Div(hundred).
		Round(0).
		IntPart()
}

// applyResult books one result line onto the horse and returns the prize paid
func applyResult(h *models.Horse, race *models.RaceEvent, res models.Result, year int) int64 {
	h.History = append(h.History, models.RaceRecord{
		Year:     year,
		Week:     race.Week,
		RaceName: race.Name,
		Grade:    race.Grade,
		Rank:     res.Rank,
		Time:     res.FinishTime,
	})

	h.Career.Races++
	if res.Rank == 1 {
		h.Career.Wins++
	}
	if res.Rank <= 3 {
		h.Career.Top3++
	}
	prize := purseShare(race.Purse, res.Rank)
	h.Career.Earnings += prize

	cost := ConditionCost
	if race.IsG1() {
		cost = ConditionCostG1
	}
	h.Condition = clampInt(h.Condition-cost, 0, models.ConditionMax)
	h.Fatigue += FatiguePerRace

	if h.Targets(race) {
		h.TargetRace = ""
	}
	return prize
}

// rollInjury injures the horse with a fatigue-dependent chance and returns the weeks out
func rollInjury(h *models.Horse, baseChance float64, src rng.Source) int {
	chance := baseChance + float64(h.Fatigue)/InjuryFatigueDivisor
	if src.Float64() >= chance {
		return 0
	}
	weeks := InjuryMinWeeks + int(src.Float64()*float64(InjuryMaxWeeks-InjuryMinWeeks+1))
	if weeks > InjuryMaxWeeks {
		weeks = InjuryMaxWeeks
	}
	h.Status = models.HorseStatusInjured
	h.InjuryWeeks = weeks
	return weeks
}

// rest applies one week of recovery
func rest(h *models.Horse) {
	h.Condition = clampInt(h.Condition+RecoveryPerWeek, 0, models.ConditionMax)
	h.Fatigue = clampInt(h.Fatigue-FatigueRecovery, 0, math.MaxInt32)

	if h.Status == models.HorseStatusInjured {
		h.InjuryWeeks--
		if h.InjuryWeeks <= 0 {
			h.InjuryWeeks = 0
			h.Status = models.HorseStatusActive
		}
	}
}

// train grows one stat by a few points, never past the potential or the stat ceiling
func train(h *models.Horse, src rng.Source) int {
	room := h.Potential - h.Stats.Sum()
	if room <= 0 {
		return 0
	}

	stats := []*int{&h.Stats.Speed, &h.Stats.Stamina, &h.Stats.Power, &h.Stats.Guts, &h.Stats.Wisdom}
	target := stats[int(src.Float64()*float64(len(stats)))%len(stats)]
	gain := TrainingMinGain + int(src.Float64()*float64(TrainingMaxGain-TrainingMinGain+1))

	gain = minInt(gain, room, models.StatCeiling-*target)
	if gain <= 0 {
		return 0
	}
	*target += gain
	h.RecalculateOvr()
	return gain
}

// ageOneYear ages the horse and applies the decline of older horses
func ageOneYear(h *models.Horse) {
	h.Age++
	if h.Age < DeclineAge {
		return
	}
	decline := func(v int) int { return int(float64(v) * DeclineFactor) }
	h.Stats = models.Stats{
		Speed:   decline(h.Stats.Speed),
		Stamina: decline(h.Stats.Stamina),
		Power:   decline(h.Stats.Power),
		Guts:    decline(h.Stats.Guts),
		Wisdom:  decline(h.Stats.Wisdom),
	}
	h.RecalculateOvr()
}

// retirementReason returns why the horse retires now, or an empty string
func retirementReason(h *models.Horse, retirementAge int) string {
	switch {
	case h.Age >= retirementAge:
		return "age"
	case h.Age >= DeclineAge && h.Condition < WornOutCondition:
		return "worn out"
	default:
		return ""
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(first int, rest ...int) int {
	m := first
	for _, v := range rest {
		if v < m {
			m = v
		}
	}
	return m
}
