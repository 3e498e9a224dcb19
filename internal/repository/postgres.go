package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/derby-sim/internal/database"
	"github.com/yourusername/derby-sim/internal/models"
)

const pgUniqueViolation = "23505"

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// PostgresHorseRepository implements HorseRepository for PostgreSQL
type PostgresHorseRepository struct {
	db *database.DB
}

// NewPostgresHorseRepository creates a new horse repository
func NewPostgresHorseRepository(db *database.DB) HorseRepository {
	return &PostgresHorseRepository{db: db}
}

func pgHorseArgs(h *models.Horse) ([]interface{}, error) {
	profile, err := encodeProfile(h)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		h.ID, h.FirstName, h.LastName, h.TeamID, h.Age, string(h.Status),
		h.Condition, h.Energy, h.Fatigue, h.InjuryWeeks, h.Potential, h.CurrentOvr,
		h.TargetRace, profile, h.CreatedAt, h.UpdatedAt,
	}, nil
}

func scanPgHorse(row pgx.Row) (*models.Horse, error) {
	var (
		h       models.Horse
		status  string
		profile []byte
	)
	err := row.Scan(
		&h.ID, &h.FirstName, &h.LastName, &h.TeamID, &h.Age, &status,
		&h.Condition, &h.Energy, &h.Fatigue, &h.InjuryWeeks, &h.Potential, &h.CurrentOvr,
		&h.TargetRace, &profile, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	h.Status = models.HorseStatus(status)
	if err := decodeProfile(profile, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

const pgUpsertHorse = `
	INSERT INTO horses (` + horseColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (id) DO UPDATE SET
		first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, team_id = EXCLUDED.team_id,
		age = EXCLUDED.age, status = EXCLUDED.status, condition = EXCLUDED.condition,
		energy = EXCLUDED.energy, fatigue = EXCLUDED.fatigue, injury_weeks = EXCLUDED.injury_weeks,
		potential = EXCLUDED.potential, current_ovr = EXCLUDED.current_ovr,
		target_race = EXCLUDED.target_race, profile = EXCLUDED.profile, updated_at = EXCLUDED.updated_at
`

// Create inserts a new horse
func (r *PostgresHorseRepository) Create(ctx context.Context, horse *models.Horse) error {
	stamp(horse)
	args, err := pgHorseArgs(horse)
	if err != nil {
		return err
	}

	query := `INSERT INTO horses (` + horseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isPgUniqueViolation(err) {
			return fmt.Errorf("horse %s: %w", horse.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create horse: %w", err)
	}
	return nil
}

// GetByID retrieves a horse by ID
func (r *PostgresHorseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	h, err := scanPgHorse(r.db.QueryRow(ctx, `SELECT `+horseColumns+` FROM horses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get horse: %w", err)
	}
	return h, nil
}

// List returns every horse ordered by creation time
func (r *PostgresHorseRepository) List(ctx context.Context) ([]*models.Horse, error) {
	return r.query(ctx, `SELECT `+horseColumns+` FROM horses ORDER BY created_at, id`)
}

// ListByTeam returns the horses of one team
func (r *PostgresHorseRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Horse, error) {
	return r.query(ctx, `SELECT `+horseColumns+` FROM horses WHERE team_id = $1 ORDER BY created_at, id`, teamID)
}

func (r *PostgresHorseRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Horse, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query horses: %w", err)
	}
	defer rows.Close()

	horses := make([]*models.Horse, 0)
	for rows.Next() {
		h, err := scanPgHorse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan horse: %w", err)
		}
		horses = append(horses, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating horses: %w", err)
	}
	return horses, nil
}

// Update replaces an existing horse
func (r *PostgresHorseRepository) Update(ctx context.Context, horse *models.Horse) error {
	stamp(horse)
	profile, err := encodeProfile(horse)
	if err != nil {
		return err
	}

	query := `
		UPDATE horses SET
			first_name = $2, last_name = $3, team_id = $4, age = $5, status = $6, condition = $7,
			energy = $8, fatigue = $9, injury_weeks = $10, potential = $11, current_ovr = $12,
			target_race = $13, profile = $14, updated_at = $15
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		horse.ID, horse.FirstName, horse.LastName, horse.TeamID, horse.Age, string(horse.Status),
		horse.Condition, horse.Energy, horse.Fatigue, horse.InjuryWeeks, horse.Potential, horse.CurrentOvr,
		horse.TargetRace, profile, horse.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update horse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpsertBatch inserts or replaces horses with one batch inside a transaction
func (r *PostgresHorseRepository) UpsertBatch(ctx context.Context, horses []*models.Horse) error {
	if len(horses) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, h := range horses {
		stamp(h)
		args, err := pgHorseArgs(h)
		if err != nil {
			return err
		}
		batch.Queue(pgUpsertHorse, args...)
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert horses: %w", err)
		}
		return nil
	})
}

// Delete removes a horse
func (r *PostgresHorseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM horses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete horse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// PostgresSeasonStateRepository implements SeasonStateRepository for PostgreSQL
type PostgresSeasonStateRepository struct {
	db *database.DB
}

// NewPostgresSeasonStateRepository creates a new season state repository
func NewPostgresSeasonStateRepository(db *database.DB) SeasonStateRepository {
	return &PostgresSeasonStateRepository{db: db}
}

// Get returns the current season state
func (r *PostgresSeasonStateRepository) Get(ctx context.Context) (*models.SeasonState, error) {
	state := &models.SeasonState{}
	err := r.db.QueryRow(ctx, `SELECT year, week, updated_at FROM season_state WHERE id = 1`).
		Scan(&state.Year, &state.Week, &state.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrSeasonNotStarted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season state: %w", err)
	}
	return state, nil
}

// Save stores the season state
func (r *PostgresSeasonStateRepository) Save(ctx context.Context, state *models.SeasonState) error {
	state.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(ctx, `
		INSERT INTO season_state (id, year, week, updated_at) VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET year = EXCLUDED.year, week = EXCLUDED.week, updated_at = EXCLUDED.updated_at
	`, state.Year, state.Week, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save season state: %w", err)
	}
	return nil
}

// PostgresOutcomeRepository implements OutcomeRepository for PostgreSQL
type PostgresOutcomeRepository struct {
	db *database.DB
}

// NewPostgresOutcomeRepository creates a new outcome repository
func NewPostgresOutcomeRepository(db *database.DB) OutcomeRepository {
	return &PostgresOutcomeRepository{db: db}
}

func scanPgOutcome(row pgx.Row) (*models.RaceOutcome, error) {
	var (
		o            models.RaceOutcome
		surface      string
		results, log []byte
	)
	err := row.Scan(&o.ID, &o.RaceID, &o.RaceName, &o.Year, &o.Week, &o.Distance, &surface,
		&o.CutoffTripped, &results, &log, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Surface = models.Surface(surface)
	if err := decodeOutcome(results, log, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Save inserts an outcome
func (r *PostgresOutcomeRepository) Save(ctx context.Context, outcome *models.RaceOutcome) error {
	results, log, err := encodeOutcome(outcome)
	if err != nil {
		return err
	}
	if outcome.CreatedAt.IsZero() {
		outcome.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO race_outcomes (`+outcomeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		outcome.ID, outcome.RaceID, outcome.RaceName, outcome.Year, outcome.Week, outcome.Distance,
		string(outcome.Surface), outcome.CutoffTripped, results, log, outcome.CreatedAt,
	)
	if err != nil {
		if isPgUniqueViolation(err) {
			return fmt.Errorf("outcome %s: %w", outcome.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// GetByID retrieves an outcome by ID
func (r *PostgresOutcomeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RaceOutcome, error) {
	o, err := scanPgOutcome(r.db.QueryRow(ctx, `SELECT `+outcomeColumns+` FROM race_outcomes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}
	return o, nil
}

// ListByWeek returns the outcomes of one calendar week
func (r *PostgresOutcomeRepository) ListByWeek(ctx context.Context, year, week int) ([]*models.RaceOutcome, error) {
	return r.query(ctx, `SELECT `+outcomeColumns+` FROM race_outcomes WHERE year = $1 AND week = $2
		ORDER BY created_at, id`, year, week)
}

// ListByYear returns the outcomes of one year
func (r *PostgresOutcomeRepository) ListByYear(ctx context.Context, year int) ([]*models.RaceOutcome, error) {
	return r.query(ctx, `SELECT `+outcomeColumns+` FROM race_outcomes WHERE year = $1
		ORDER BY week, created_at, id`, year)
}

func (r *PostgresOutcomeRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.RaceOutcome, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := make([]*models.RaceOutcome, 0)
	for rows.Next() {
		o, err := scanPgOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcomes: %w", err)
	}
	return outcomes, nil
}
