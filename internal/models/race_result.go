package models

import (
	"time"

	"github.com/google/uuid"
)

// FinishStatus tells whether an entrant crossed the line
type FinishStatus string

const (
	FinishStatusFinished FinishStatus = "finished"
	// FinishStatusDNF marks an entrant still running when the safety cutoff tripped
	FinishStatusDNF FinishStatus = "dnf"
)

// Result is one ranked line of a race outcome
type Result struct {
	HorseID         uuid.UUID    `json:"horse_id"`
	HorseName       string       `json:"horse_name"`
	Rank            int          `json:"rank"`
	FinishTime      float64      `json:"finish_time"`
	Splits          []float64    `json:"splits,omitempty"`
	Status          FinishStatus `json:"status"`
	DistanceCovered float64      `json:"distance_covered"`
	Strategy        Strategy     `json:"strategy"`
}

// Finished reports whether the entrant reached the finish line
func (r Result) Finished() bool {
	return r.Status == FinishStatusFinished
}

// LogEntry is a commentary line positioned as a fraction of the race duration
type LogEntry struct {
	Message string  `json:"message"`
	TimePct float64 `json:"time_pct"`
}

// RaceOutcome is the simulator output consumed by storage, playback and bookkeeping
type RaceOutcome struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	RaceID        string     `db:"race_id" json:"race_id"`
	RaceName      string     `db:"race_name" json:"race_name"`
	Year          int        `db:"year" json:"year"`
	Week          int        `db:"week" json:"week"`
	Distance      int        `db:"distance" json:"distance"`
	Surface       Surface    `db:"surface" json:"surface"`
	Results       []Result   `db:"-" json:"results"`
	Log           []LogEntry `db:"-" json:"log"`
	CutoffTripped bool       `db:"cutoff_tripped" json:"cutoff_tripped"`
	UltimateCount int        `db:"-" json:"ultimate_count"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Winner returns the first-ranked result
func (o *RaceOutcome) Winner() (Result, bool) {
	for _, r := range o.Results {
		if r.Rank == 1 {
			return r, true
		}
	}
	return Result{}, false
}

// ResultFor finds the result line of a horse
func (o *RaceOutcome) ResultFor(horseID uuid.UUID) (Result, bool) {
	for _, r := range o.Results {
		if r.HorseID == horseID {
			return r, true
		}
	}
	return Result{}, false
}

// Finishers counts entrants with a finish time
func (o *RaceOutcome) Finishers() int {
	n := 0
	for _, r := range o.Results {
		if r.Finished() {
			n++
		}
	}
	return n
}
