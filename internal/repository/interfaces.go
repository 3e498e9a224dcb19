package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/derby-sim/internal/models"
)

// HorseRepository defines the interface for horse data access
type HorseRepository interface {
	Create(ctx context.Context, horse *models.Horse) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Horse, error)
	// List returns every horse ordered by creation time
	List(ctx context.Context) ([]*models.Horse, error)
	ListByTeam(ctx context.Context, teamID string) ([]*models.Horse, error)
	Update(ctx context.Context, horse *models.Horse) error
	// UpsertBatch inserts or replaces horses in a single transaction
	UpsertBatch(ctx context.Context, horses []*models.Horse) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SeasonStateRepository stores the single current position in the calendar
type SeasonStateRepository interface {
	// Get returns models.ErrSeasonNotStarted before the first Save
	Get(ctx context.Context) (*models.SeasonState, error)
	Save(ctx context.Context, state *models.SeasonState) error
}

// OutcomeRepository defines the interface for race outcome data access
type OutcomeRepository interface {
	Save(ctx context.Context, outcome *models.RaceOutcome) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RaceOutcome, error)
	ListByWeek(ctx context.Context, year, week int) ([]*models.RaceOutcome, error)
	ListByYear(ctx context.Context, year int) ([]*models.RaceOutcome, error)
}
