package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yourusername/derby-sim/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS horses (
    id           TEXT PRIMARY KEY,
    first_name   TEXT    NOT NULL,
    last_name    TEXT    NOT NULL DEFAULT '',
    team_id      TEXT    NOT NULL,
    age          INTEGER NOT NULL,
    status       TEXT    NOT NULL,
    condition    INTEGER NOT NULL,
    energy       INTEGER NOT NULL,
    fatigue      INTEGER NOT NULL DEFAULT 0,
    injury_weeks INTEGER NOT NULL DEFAULT 0,
    potential    INTEGER NOT NULL DEFAULT 0,
    current_ovr  INTEGER NOT NULL DEFAULT 0,
    target_race  TEXT    NOT NULL DEFAULT '',
    profile      TEXT    NOT NULL,
    created_at   TEXT    NOT NULL,
    updated_at   TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_horses_team ON horses(team_id);

CREATE TABLE IF NOT EXISTS season_state (
    id         INTEGER PRIMARY KEY CHECK (id = 1),
    year       INTEGER NOT NULL,
    week       INTEGER NOT NULL,
    updated_at TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS race_outcomes (
    id             TEXT PRIMARY KEY,
    race_id        TEXT    NOT NULL DEFAULT '',
    race_name      TEXT    NOT NULL DEFAULT '',
    year           INTEGER NOT NULL,
    week           INTEGER NOT NULL,
    distance       INTEGER NOT NULL,
    surface        TEXT    NOT NULL,
    cutoff_tripped INTEGER NOT NULL DEFAULT 0,
    results        TEXT    NOT NULL,
    log            TEXT    NOT NULL,
    created_at     TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_outcomes_year_week ON race_outcomes(year, week);
`

const horseColumns = `id, first_name, last_name, team_id, age, status, condition, energy, fatigue,
       injury_weeks, potential, current_ovr, target_race, profile, created_at, updated_at`

// OpenSQLite opens (or creates) the save file at path and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// single writer, and ":memory:" is per connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return db, nil
}

// timeLayout is fixed width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// SQLiteHorseRepository implements HorseRepository for SQLite
type SQLiteHorseRepository struct {
	db *sql.DB
}

// NewSQLiteHorseRepository creates a new horse repository
func NewSQLiteHorseRepository(db *sql.DB) HorseRepository {
	return &SQLiteHorseRepository{db: db}
}

func horseArgs(h *models.Horse) ([]interface{}, error) {
	profile, err := encodeProfile(h)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		h.ID.String(), h.FirstName, h.LastName, h.TeamID, h.Age, string(h.Status),
		h.Condition, h.Energy, h.Fatigue, h.InjuryWeeks, h.Potential, h.CurrentOvr,
		h.TargetRace, string(profile), formatTime(h.CreatedAt), formatTime(h.UpdatedAt),
	}, nil
}

func scanSQLiteHorse(row rowScanner) (*models.Horse, error) {
	var (
		h                models.Horse
		id, status       string
		profile          string
		created, updated string
	)
	err := row.Scan(
		&id, &h.FirstName, &h.LastName, &h.TeamID, &h.Age, &status,
		&h.Condition, &h.Energy, &h.Fatigue, &h.InjuryWeeks, &h.Potential, &h.CurrentOvr,
		&h.TargetRace, &profile, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	if h.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidID, id)
	}
	h.Status = models.HorseStatus(status)
	if err := decodeProfile([]byte(profile), &h); err != nil {
		return nil, err
	}
	if h.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if h.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &h, nil
}

// Create inserts a new horse
func (r *SQLiteHorseRepository) Create(ctx context.Context, horse *models.Horse) error {
	stamp(horse)
	args, err := horseArgs(horse)
	if err != nil {
		return err
	}

	query := `INSERT INTO horses (` + horseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("horse %s: %w", horse.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create horse: %w", err)
	}
	return nil
}

// GetByID retrieves a horse by ID
func (r *SQLiteHorseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	query := `SELECT ` + horseColumns + ` FROM horses WHERE id = ?`

	h, err := scanSQLiteHorse(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get horse: %w", err)
	}
	return h, nil
}

// List returns every horse ordered by creation time
func (r *SQLiteHorseRepository) List(ctx context.Context) ([]*models.Horse, error) {
	return r.query(ctx, `SELECT `+horseColumns+` FROM horses ORDER BY created_at, id`)
}

// ListByTeam returns the horses of one team
func (r *SQLiteHorseRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Horse, error) {
	return r.query(ctx, `SELECT `+horseColumns+` FROM horses WHERE team_id = ? ORDER BY created_at, id`, teamID)
}

func (r *SQLiteHorseRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Horse, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query horses: %w", err)
	}
	defer rows.Close()

	horses := make([]*models.Horse, 0)
	for rows.Next() {
		h, err := scanSQLiteHorse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan horse: %w", err)
		}
		horses = append(horses, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating horses: %w", err)
	}
	return horses, nil
}

// Update replaces an existing horse
func (r *SQLiteHorseRepository) Update(ctx context.Context, horse *models.Horse) error {
	stamp(horse)
	args, err := horseArgs(horse)
	if err != nil {
		return err
	}

	query := `
		UPDATE horses SET
			first_name = ?, last_name = ?, team_id = ?, age = ?, status = ?, condition = ?, energy = ?,
			fatigue = ?, injury_weeks = ?, potential = ?, current_ovr = ?, target_race = ?, profile = ?,
			updated_at = ?
		WHERE id = ?
	`
	// column order of horseArgs without id and created_at, then the key
	updateArgs := make([]interface{}, 0, len(args))
	updateArgs = append(updateArgs, args[1:14]...)
	updateArgs = append(updateArgs, args[15], args[0])

	res, err := r.db.ExecContext(ctx, query, updateArgs...)
	if err != nil {
		return fmt.Errorf("failed to update horse: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpsertBatch inserts or replaces horses in one transaction
func (r *SQLiteHorseRepository) UpsertBatch(ctx context.Context, horses []*models.Horse) error {
	if len(horses) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO horses (`+horseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name, last_name = excluded.last_name, team_id = excluded.team_id,
			age = excluded.age, status = excluded.status, condition = excluded.condition,
			energy = excluded.energy, fatigue = excluded.fatigue, injury_weeks = excluded.injury_weeks,
			potential = excluded.potential, current_ovr = excluded.current_ovr,
			target_race = excluded.target_race, profile = excluded.profile, updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, h := range horses {
		stamp(h)
		args, err := horseArgs(h)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to upsert horse %s: %w", h.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// Delete removes a horse
func (r *SQLiteHorseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM horses WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete horse: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// SQLiteSeasonStateRepository implements SeasonStateRepository for SQLite
type SQLiteSeasonStateRepository struct {
	db *sql.DB
}

// NewSQLiteSeasonStateRepository creates a new season state repository
func NewSQLiteSeasonStateRepository(db *sql.DB) SeasonStateRepository {
	return &SQLiteSeasonStateRepository{db: db}
}

// Get returns the current season state
func (r *SQLiteSeasonStateRepository) Get(ctx context.Context) (*models.SeasonState, error) {
	var (
		state   models.SeasonState
		updated string
	)
	err := r.db.QueryRowContext(ctx, `SELECT year, week, updated_at FROM season_state WHERE id = 1`).
		Scan(&state.Year, &state.Week, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrSeasonNotStarted
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season state: %w", err)
	}
	if state.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &state, nil
}

// Save stores the season state
func (r *SQLiteSeasonStateRepository) Save(ctx context.Context, state *models.SeasonState) error {
	state.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO season_state (id, year, week, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET year = excluded.year, week = excluded.week, updated_at = excluded.updated_at
	`, state.Year, state.Week, formatTime(state.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save season state: %w", err)
	}
	return nil
}

// SQLiteOutcomeRepository implements OutcomeRepository for SQLite
type SQLiteOutcomeRepository struct {
	db *sql.DB
}

// NewSQLiteOutcomeRepository creates a new outcome repository
func NewSQLiteOutcomeRepository(db *sql.DB) OutcomeRepository {
	return &SQLiteOutcomeRepository{db: db}
}

const outcomeColumns = `id, race_id, race_name, year, week, distance, surface, cutoff_tripped, results, log, created_at`

func scanSQLiteOutcome(row rowScanner) (*models.RaceOutcome, error) {
	var (
		o                    models.RaceOutcome
		id, surface, created string
		results, log         string
	)
	err := row.Scan(&id, &o.RaceID, &o.RaceName, &o.Year, &o.Week, &o.Distance, &surface,
		&o.CutoffTripped, &results, &log, &created)
	if err != nil {
		return nil, err
	}
	if o.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidID, id)
	}
	o.Surface = models.Surface(surface)
	if err := decodeOutcome([]byte(results), []byte(log), &o); err != nil {
		return nil, err
	}
	if o.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &o, nil
}

// Save inserts an outcome
func (r *SQLiteOutcomeRepository) Save(ctx context.Context, outcome *models.RaceOutcome) error {
	results, log, err := encodeOutcome(outcome)
	if err != nil {
		return err
	}
	if outcome.CreatedAt.IsZero() {
		outcome.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO race_outcomes (`+outcomeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.ID.String(), outcome.RaceID, outcome.RaceName, outcome.Year, outcome.Week, outcome.Distance,
		string(outcome.Surface), outcome.CutoffTripped, string(results), string(log), formatTime(outcome.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("outcome %s: %w", outcome.ID, models.ErrDuplicateKey)
		}
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// GetByID retrieves an outcome by ID
func (r *SQLiteOutcomeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RaceOutcome, error) {
	o, err := scanSQLiteOutcome(r.db.QueryRowContext(ctx,
		`SELECT `+outcomeColumns+` FROM race_outcomes WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}
	return o, nil
}

// ListByWeek returns the outcomes of one calendar week
func (r *SQLiteOutcomeRepository) ListByWeek(ctx context.Context, year, week int) ([]*models.RaceOutcome, error) {
	return r.query(ctx, `SELECT `+outcomeColumns+` FROM race_outcomes WHERE year = ? AND week = ?
		ORDER BY created_at, id`, year, week)
}

// ListByYear returns the outcomes of one year
func (r *SQLiteOutcomeRepository) ListByYear(ctx context.Context, year int) ([]*models.RaceOutcome, error) {
	return r.query(ctx, `SELECT `+outcomeColumns+` FROM race_outcomes WHERE year = ?
		ORDER BY week, created_at, id`, year)
}

func (r *SQLiteOutcomeRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.RaceOutcome, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := make([]*models.RaceOutcome, 0)
	for rows.Next() {
		o, err := scanSQLiteOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcomes: %w", err)
	}
	return outcomes, nil
}
