package season

import (
	"github.com/google/uuid"

	"github.com/yourusername/derby-sim/internal/models"
)

// Injury records a horse hurt in a race
type Injury struct {
	HorseID uuid.UUID `json:"horse_id"`
	Horse   string    `json:"horse"`
	Weeks   int       `json:"weeks"`
}

// Retirement records a horse retired at year end
type Retirement struct {
	HorseID uuid.UUID `json:"horse_id"`
	Horse   string    `json:"horse"`
	Age     int       `json:"age"`
	Reason  string    `json:"reason"`
}

// WeekReport summarizes one advanced week
type WeekReport struct {
	Year         int                   `json:"year"`
	Week         int                   `json:"week"`
	Outcomes     []*models.RaceOutcome `json:"outcomes"`
	Skipped      []string              `json:"skipped"`
	Injuries     []Injury              `json:"injuries"`
	Retirements  []Retirement          `json:"retirements"`
	PursePaid    int64                 `json:"purse_paid"`
	TrainingGain int                   `json:"training_gain"`
	Next         models.SeasonState    `json:"next"`
}
