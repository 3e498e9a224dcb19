package models

import "time"

// Allocation is the matchmaking result for a single race
type Allocation struct {
	Race     *RaceEvent `json:"race"`
	Field    []*Horse   `json:"field"`
	Excluded []*Horse   `json:"excluded"`
}

// CanRun reports whether the field is large enough to simulate
func (a *Allocation) CanRun(minField int) bool {
	return len(a.Field) >= minField
}

// SeasonState is the current position in the calendar
type SeasonState struct {
	Year      int       `db:"year" json:"year" validate:"gte=1"`
	Week      int       `db:"week" json:"week" validate:"min=1,max=52"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Next returns the state one week later, rolling into the next year after week 52
func (s SeasonState) Next() SeasonState {
	next := s
	next.Week++
	if next.Week > WeeksPerYear {
		next.Week = 1
		next.Year++
	}
	return next
}

// IsYearEnd reports whether the current week is the last of the year
func (s SeasonState) IsYearEnd() bool {
	return s.Week == WeeksPerYear
}
