package models

// Grade represents the prestige tier of a race
type Grade string

const (
	GradeG1 Grade = "G1"
	GradeG2 Grade = "G2"
	GradeG3 Grade = "G3"
)

// IsValid checks the grade against the known tiers
func (g Grade) IsValid() bool {
	return g == GradeG1 || g == GradeG2 || g == GradeG3
}

// RaceCategory tags a race with a semantic group used by the entry policy
type RaceCategory string

const (
	// CategoryClassic races are restricted to three-year-olds
	CategoryClassic RaceCategory = "classic"
	// CategoryTripleCrown marks the legs of the triple crown
	CategoryTripleCrown RaceCategory = "triple_crown"
	// CategoryGrandPrix marks the fan-voted grand prix races
	CategoryGrandPrix RaceCategory = "grand_prix"
	// CategorySeasonFinale marks the last marquee race of the year
	CategorySeasonFinale RaceCategory = "season_finale"
)

const (
	WeeksPerYear = 52
)

// RaceEvent is an immutable calendar entry
type RaceEvent struct {
	ID         string         `db:"id" json:"id" yaml:"id" validate:"required"`
	Name       string         `db:"name" json:"name" yaml:"name" validate:"required"`
	Grade      Grade          `db:"grade" json:"grade" yaml:"grade" validate:"required,oneof=G1 G2 G3"`
	Week       int            `db:"week" json:"week" yaml:"week" validate:"required,min=1,max=52"`
	Surface    Surface        `db:"surface" json:"surface" yaml:"surface" validate:"required,oneof=turf dirt"`
	Distance   int            `db:"distance" json:"distance" yaml:"distance" validate:"required,gt=0"`
	Location   string         `db:"location" json:"location" yaml:"location"`
	Purse      int64          `db:"purse" json:"purse" yaml:"purse" validate:"gte=0"`
	Categories []RaceCategory `db:"-" json:"categories,omitempty" yaml:"categories,omitempty"`
	TrialRaces []string       `db:"-" json:"trial_races,omitempty" yaml:"trial_races,omitempty"`
}

// HasCategory checks whether the race carries a category tag
func (r *RaceEvent) HasCategory(c RaceCategory) bool {
	for _, existing := range r.Categories {
		if existing == c {
			return true
		}
	}
	return false
}

// DistanceCategory returns the aptitude band of the race distance
func (r *RaceEvent) DistanceCategory() DistanceCategory {
	return DistanceCategoryFor(r.Distance)
}

// IsG1 reports whether the race is a G1
func (r *RaceEvent) IsG1() bool {
	return r.Grade == GradeG1
}
