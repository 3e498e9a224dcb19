// Package policy decides whether a horse is willing and eligible to enter a race.
package policy

import (
	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/models"
)

// EntryPolicy is the per-horse entry gate consumed by matchmaking
type EntryPolicy interface {
	ShouldEnterRace(horse *models.Horse, race *models.RaceEvent, week, year int) bool
}

const (
	ClassicAge = 3

	PriorityMinOvr          = 70
	PriorityGrandPrixEarn   = 10000
	PriorityDistanceApt     = 6
	PriorityConditionAccept = 50

	ChampionG1Wins = 1
	VeteranG2Wins  = 8
	VeteranG3Wins  = 6

	ConditionFloorG1 = 60
	ConditionFloor   = 90

	SurfaceAptMin    = 4
	DistanceAptMinG1 = 5
	DistanceAptMin   = 4

	EliteStatSum  = 3200
	EliteEarnings = 20000

	RestWeeksElite = 4
	RestWeeks      = 2
	RestWeeksG1    = 1

	EliteSoftCap  = 6
	EliteHardCap  = 9
	FinaleHardCap = 10
	EliteG3Limit  = 1
	StandardCap   = 12
)

// Rules holds every threshold of the entry decision
type Rules struct {
	ClassicAge int

	PriorityMinOvr          int
	PriorityGrandPrixEarn   int64
	PriorityDistanceApt     int
	PriorityConditionAccept int

	ChampionG1Wins int
	VeteranG2Wins  int
	VeteranG3Wins  int

	ConditionFloorG1 int
	ConditionFloor   int

	SurfaceAptMin    int
	DistanceAptMinG1 int
	DistanceAptMin   int

	EliteStatSum  int
	EliteEarnings int64

	RestWeeksElite int
	RestWeeks      int
	RestWeeksG1    int

	EliteSoftCap  int
	EliteHardCap  int
	FinaleHardCap int
	EliteG3Limit  int
	StandardCap   int
}

// DefaultRules returns the tuned thresholds
func DefaultRules() Rules {
	return Rules{
		ClassicAge:              ClassicAge,
		PriorityMinOvr:          PriorityMinOvr,
		PriorityGrandPrixEarn:   PriorityGrandPrixEarn,
		PriorityDistanceApt:     PriorityDistanceApt,
		PriorityConditionAccept: PriorityConditionAccept,
		ChampionG1Wins:          ChampionG1Wins,
		VeteranG2Wins:           VeteranG2Wins,
		VeteranG3Wins:           VeteranG3Wins,
		ConditionFloorG1:        ConditionFloorG1,
		ConditionFloor:          ConditionFloor,
		SurfaceAptMin:           SurfaceAptMin,
		DistanceAptMinG1:        DistanceAptMinG1,
		DistanceAptMin:          DistanceAptMin,
		EliteStatSum:            EliteStatSum,
		EliteEarnings:           EliteEarnings,
		RestWeeksElite:          RestWeeksElite,
		RestWeeks:               RestWeeks,
		RestWeeksG1:             RestWeeksG1,
		EliteSoftCap:            EliteSoftCap,
		EliteHardCap:            EliteHardCap,
		FinaleHardCap:           FinaleHardCap,
		EliteG3Limit:            EliteG3Limit,
		StandardCap:             StandardCap,
	}
}

// FromConfig overlays configured thresholds on the defaults
func FromConfig(cfg *config.EntryConfig) Rules {
	r := DefaultRules()
	if cfg == nil {
		return r
	}
	if cfg.ConditionFloorG1 > 0 {
		r.ConditionFloorG1 = cfg.ConditionFloorG1
	}
	if cfg.ConditionFloor > 0 {
		r.ConditionFloor = cfg.ConditionFloor
	}
	if cfg.RestWeeksElite > 0 {
		r.RestWeeksElite = cfg.RestWeeksElite
	}
	if cfg.RestWeeks > 0 {
		r.RestWeeks = cfg.RestWeeks
	}
	if cfg.EliteSoftCap > 0 {
		r.EliteSoftCap = cfg.EliteSoftCap
	}
	if cfg.EliteHardCap > 0 {
		r.EliteHardCap = cfg.EliteHardCap
	}
	if cfg.FinaleHardCap > 0 {
		r.FinaleHardCap = cfg.FinaleHardCap
	}
	if cfg.StandardCap > 0 {
		r.StandardCap = cfg.StandardCap
	}
	if cfg.EliteStatSum > 0 {
		r.EliteStatSum = cfg.EliteStatSum
	}
	if cfg.EliteEarnings > 0 {
		r.EliteEarnings = cfg.EliteEarnings
	}
	return r
}

// Policy is the default EntryPolicy
type Policy struct {
	rules Rules
}

// New creates a policy from rules
func New(rules Rules) *Policy {
	return &Policy{rules: rules}
}

// Default creates a policy with DefaultRules
func Default() *Policy {
	return New(DefaultRules())
}

// Rules returns a copy of the active thresholds
func (p *Policy) Rules() Rules {
	return p.rules
}

// IsElite reports whether a horse is held to the elite rest and cap rules
func (p *Policy) IsElite(horse *models.Horse) bool {
	return horse.Stats.Sum() > p.rules.EliteStatSum || horse.Career.Earnings > p.rules.EliteEarnings
}

// ShouldEnterRace runs the entry checks in order; the first failing check rejects.
// A TargetRace naming this race accepts before any other check, injury included.
func (p *Policy) ShouldEnterRace(horse *models.Horse, race *models.RaceEvent, week, year int) bool {
	if horse == nil || race == nil {
		return false
	}
	r := p.rules

	if horse.Targets(race) {
		return true
	}

	if horse.InjuryWeeks > 0 {
		return false
	}

	if race.HasCategory(models.CategoryClassic) && horse.Age != r.ClassicAge {
		return false
	}

	if p.isPriority(horse, race) && horse.Condition > r.PriorityConditionAccept {
		return true
	}

	if !p.passesFarmingCeiling(horse, race) {
		return false
	}

	floor := r.ConditionFloor
	if race.IsG1() {
		floor = r.ConditionFloorG1
	}
	if horse.Condition < floor {
		return false
	}

	if horse.Aptitude.ForSurface(race.Surface) < r.SurfaceAptMin {
		return false
	}
	distMin := r.DistanceAptMin
	if race.IsG1() {
		distMin = r.DistanceAptMinG1
	}
	if horse.Aptitude.ForDistance(race.DistanceCategory()) < distMin {
		return false
	}

	elite := p.IsElite(horse)

	if !p.isRested(horse, race, week, year, elite) {
		return false
	}

	return p.withinSeasonCaps(horse, race, year, elite)
}

func (p *Policy) isPriority(horse *models.Horse, race *models.RaceEvent) bool {
	r := p.rules
	if race.HasCategory(models.CategoryTripleCrown) && horse.Age == r.ClassicAge && horse.CurrentOvr >= r.PriorityMinOvr {
		return true
	}
	if race.HasCategory(models.CategoryGrandPrix) {
		proven := horse.G1Wins() >= r.ChampionG1Wins || horse.Career.Earnings >= r.PriorityGrandPrixEarn
		if proven && horse.Aptitude.ForDistance(race.DistanceCategory()) >= r.PriorityDistanceApt {
			return true
		}
	}
	return false
}

// passesFarmingCeiling keeps established horses out of low-tier races
func (p *Policy) passesFarmingCeiling(horse *models.Horse, race *models.RaceEvent) bool {
	r := p.rules
	switch race.Grade {
	case models.GradeG2:
		return horse.G1Wins() < r.ChampionG1Wins && horse.Career.Wins < r.VeteranG2Wins
	case models.GradeG3:
		return horse.G1Wins() < r.ChampionG1Wins && horse.Career.Wins < r.VeteranG3Wins
	default:
		return true
	}
}

func (p *Policy) isRested(horse *models.Horse, race *models.RaceEvent, week, year int, elite bool) bool {
	last, ok := horse.LastRace()
	if !ok {
		return true
	}
	weeksSince := (year-last.Year)*models.WeeksPerYear + (week - last.Week)

	required := p.rules.RestWeeks
	if elite {
		required = p.rules.RestWeeksElite
	}
	if race.IsG1() {
		required = p.rules.RestWeeksG1
	}
	return weeksSince >= required
}

func (p *Policy) withinSeasonCaps(horse *models.Horse, race *models.RaceEvent, year int, elite bool) bool {
	r := p.rules
	thisYear := horse.RacesInYear(year)
	starts := len(thisYear)

	if !elite {
		return starts < r.StandardCap
	}

	hardCap := r.EliteHardCap
	if race.HasCategory(models.CategorySeasonFinale) {
		hardCap = r.FinaleHardCap
	}
	if starts >= hardCap {
		return false
	}
	if starts >= r.EliteSoftCap && !race.IsG1() {
		return false
	}
	if race.Grade == models.GradeG3 {
		g3s := 0
		for _, rec := range thisYear {
			if rec.Grade == models.GradeG3 {
				g3s++
			}
		}
		if g3s >= r.EliteG3Limit {
			return false
		}
	}
	return true
}
