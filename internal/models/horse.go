package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HorseStatus represents the lifecycle state of a horse
type HorseStatus string

const (
	HorseStatusActive  HorseStatus = "active"
	HorseStatusInjured HorseStatus = "injured"
	HorseStatusRetired HorseStatus = "retired"
)

const (
	TeamPlayer    = "player"
	TeamFreeAgent = "free_agent"
)

const (
	StatCeiling      = 1200
	ConditionMax     = 100
	DefaultCondition = 100
	DefaultEnergy    = 100
)

// Stats are the five trainable attributes of a horse
type Stats struct {
	Speed   int `json:"speed" yaml:"speed" validate:"gte=0,lte=2000"`
	Stamina int `json:"stamina" yaml:"stamina" validate:"gte=0,lte=2000"`
	Power   int `json:"power" yaml:"power" validate:"gte=0,lte=2000"`
	Guts    int `json:"guts" yaml:"guts" validate:"gte=0,lte=2000"`
	Wisdom  int `json:"wisdom" yaml:"wisdom" validate:"gte=0,lte=2000"`
}

// Sum returns the total of all five stats
func (s Stats) Sum() int {
	return s.Speed + s.Stamina + s.Power + s.Guts + s.Wisdom
}

// Display returns a copy with negative values floored at zero
func (s Stats) Display() Stats {
	floor := func(v int) int {
		if v < 0 {
			return 0
		}
		return v
	}
	return Stats{
		Speed:   floor(s.Speed),
		Stamina: floor(s.Stamina),
		Power:   floor(s.Power),
		Guts:    floor(s.Guts),
		Wisdom:  floor(s.Wisdom),
	}
}

// Career aggregates lifetime results
type Career struct {
	Races    int   `json:"races" yaml:"races"`
	Wins     int   `json:"wins" yaml:"wins"`
	Top3     int   `json:"top3" yaml:"top3"`
	Earnings int64 `json:"earnings" yaml:"earnings"`
}

// RaceRecord is one entry of a horse's race history
type RaceRecord struct {
	Year     int     `json:"year" yaml:"year"`
	Week     int     `json:"week" yaml:"week"`
	RaceName string  `json:"race_name" yaml:"race_name"`
	Grade    Grade   `json:"grade" yaml:"grade"`
	Rank     int     `json:"rank" yaml:"rank"`
	Time     float64 `json:"time" yaml:"time"`
}

// Skill is a named modifier. Only the Ultimate flag is read by the race engine.
type Skill struct {
	Name     string  `json:"name" yaml:"name"`
	Chance   float64 `json:"chance" yaml:"chance"`
	Value    float64 `json:"value" yaml:"value"`
	Ultimate bool    `json:"ultimate" yaml:"ultimate"`
}

// Horse is a racehorse entity owned by the player, a rival team, or nobody
type Horse struct {
	ID          uuid.UUID    `db:"id" json:"id" yaml:"id"`
	FirstName   string       `db:"first_name" json:"first_name" yaml:"first_name" validate:"required"`
	LastName    string       `db:"last_name" json:"last_name" yaml:"last_name"`
	TeamID      string       `db:"team_id" json:"team_id" yaml:"team_id" validate:"required"`
	Stats       Stats        `db:"-" json:"stats" yaml:"stats"`
	Aptitude    Aptitude     `db:"-" json:"aptitude" yaml:"aptitude"`
	Age         int          `db:"age" json:"age" yaml:"age" validate:"gte=2,lte=15"`
	Status      HorseStatus  `db:"status" json:"status" yaml:"status" validate:"oneof=active injured retired"`
	Condition   int          `db:"condition" json:"condition" yaml:"condition" validate:"gte=0,lte=100"`
	Energy      int          `db:"energy" json:"energy" yaml:"energy" validate:"gte=0,lte=100"`
	Fatigue     int          `db:"fatigue" json:"fatigue" yaml:"fatigue" validate:"gte=0"`
	InjuryWeeks int          `db:"injury_weeks" json:"injury_weeks" yaml:"injury_weeks" validate:"gte=0"`
	Potential   int          `db:"potential" json:"potential" yaml:"potential" validate:"gte=0"`
	CurrentOvr  int          `db:"current_ovr" json:"current_ovr" yaml:"current_ovr"`
	Career      Career       `db:"-" json:"career" yaml:"career"`
	History     []RaceRecord `db:"-" json:"history" yaml:"history"`
	Skills      []Skill      `db:"-" json:"skills" yaml:"skills"`
	TargetRace  string       `db:"target_race" json:"target_race,omitempty" yaml:"target_race,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at" yaml:"-"`
}

// NewHorse is the canonical constructor. It fills every lifecycle field with its default.
func NewHorse(firstName, lastName, teamID string, age int, stats Stats, aptitude Aptitude) *Horse {
	if teamID == "" {
		teamID = TeamFreeAgent
	}
	now := time.Now().UTC()
	h := &Horse{
		ID:        uuid.New(),
		FirstName: firstName,
		LastName:  lastName,
		TeamID:    teamID,
		Stats:     stats,
		Aptitude:  aptitude.Normalize(),
		Age:       age,
		Status:    HorseStatusActive,
		Condition: DefaultCondition,
		Energy:    DefaultEnergy,
		Potential: stats.Sum(),
		History:   []RaceRecord{},
		Skills:    []Skill{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	h.RecalculateOvr()
	return h
}

// Normalize repairs a horse decoded from an external source so every field holds a usable value
func (h *Horse) Normalize() {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.TeamID == "" {
		h.TeamID = TeamFreeAgent
	}
	if h.Status == "" {
		h.Status = HorseStatusActive
	}
	if h.History == nil {
		h.History = []RaceRecord{}
	}
	if h.Skills == nil {
		h.Skills = []Skill{}
	}
	if h.Potential == 0 {
		h.Potential = h.Stats.Sum()
	}
	h.Aptitude = h.Aptitude.Normalize()
	h.RecalculateOvr()
}

// Name returns the display name
func (h *Horse) Name() string {
	return strings.TrimSpace(h.FirstName + " " + h.LastName)
}

// Overall derives the overall rating from stats: average stat divided by ten
func (s Stats) Overall() int {
	return int(math.Round(float64(s.Display().Sum()) / 5.0 / 10.0))
}

// RecalculateOvr refreshes the derived overall rating
func (h *Horse) RecalculateOvr() {
	h.CurrentOvr = h.Stats.Overall()
}

// Clone returns a deep copy of the horse
func (h *Horse) Clone() *Horse {
	c := *h
	c.History = append(make([]RaceRecord, 0, len(h.History)), h.History...)
	c.Skills = append(make([]Skill, 0, len(h.Skills)), h.Skills...)
	return &c
}

// IsAvailable reports whether the horse can be considered for entries at all
func (h *Horse) IsAvailable() bool {
	return h.Status == HorseStatusActive
}

// Targets reports whether TargetRace names race, by id or display name, ignoring case
func (h *Horse) Targets(race *RaceEvent) bool {
	if h.TargetRace == "" || race == nil {
		return false
	}
	return strings.EqualFold(h.TargetRace, race.ID) || strings.EqualFold(h.TargetRace, race.Name)
}

// G1Wins counts wins in G1 races
func (h *Horse) G1Wins() int {
	count := 0
	for _, r := range h.History {
		if r.Rank == 1 && r.Grade == GradeG1 {
			count++
		}
	}
	return count
}

// RacesInYear returns the history entries run in the given year
func (h *Horse) RacesInYear(year int) []RaceRecord {
	var out []RaceRecord
	for _, r := range h.History {
		if r.Year == year {
			out = append(out, r)
		}
	}
	return out
}

// LastRace returns the most recent history entry by (year, week)
func (h *Horse) LastRace() (RaceRecord, bool) {
	if len(h.History) == 0 {
		return RaceRecord{}, false
	}
	last := h.History[0]
	for _, r := range h.History[1:] {
		if r.Year > last.Year || (r.Year == last.Year && r.Week >= last.Week) {
			last = r
		}
	}
	return last, true
}

// HasTop3In reports whether the horse placed top-3 in any of the named races during year
func (h *Horse) HasTop3In(year int, raceNames []string) bool {
	if len(raceNames) == 0 {
		return false
	}
	for _, r := range h.History {
		if r.Year != year || r.Rank < 1 || r.Rank > 3 {
			continue
		}
		for _, name := range raceNames {
			if r.RaceName == name {
				return true
			}
		}
	}
	return false
}
