// Package repository persists horses, the season position and race outcomes.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/database"
)

// Supported storage drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Repositories holds all repository implementations
type Repositories struct {
	Horse   HorseRepository
	Season  SeasonStateRepository
	Outcome OutcomeRepository

	driver string
	ping   func(ctx context.Context) error
	close  func()
}

// NewRepositories opens the backend selected by cfg.Driver
func NewRepositories(ctx context.Context, cfg *config.DatabaseConfig) (*Repositories, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryRepositories(NewMemoryStore()), nil
	case DriverSQLite:
		db, err := OpenSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepositories(db), nil
	case DriverPostgres:
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepositories(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewMemoryRepositories wires the in-memory implementations
func NewMemoryRepositories(store *MemoryStore) *Repositories {
	return &Repositories{
		Horse:   NewMemoryHorseRepository(store),
		Season:  NewMemorySeasonStateRepository(store),
		Outcome: NewMemoryOutcomeRepository(store),
		driver:  DriverMemory,
		ping:    func(context.Context) error { return nil },
		close:   func() {},
	}
}

// NewSQLiteRepositories wires the SQLite implementations. Close closes db.
func NewSQLiteRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Horse:   NewSQLiteHorseRepository(db),
		Season:  NewSQLiteSeasonStateRepository(db),
		Outcome: NewSQLiteOutcomeRepository(db),
		driver:  DriverSQLite,
		ping:    db.PingContext,
		close:   func() { db.Close() },
	}
}

// NewPostgresRepositories wires the PostgreSQL implementations. Close closes db.
func NewPostgresRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Horse:   NewPostgresHorseRepository(db),
		Season:  NewPostgresSeasonStateRepository(db),
		Outcome: NewPostgresOutcomeRepository(db),
		driver:  DriverPostgres,
		ping:    db.HealthCheck,
		close:   db.Close,
	}
}

// Driver names the active backend
func (r *Repositories) Driver() string {
	return r.driver
}

// Ping checks the backend is reachable
func (r *Repositories) Ping(ctx context.Context) error {
	return r.ping(ctx)
}

// Close releases the backend
func (r *Repositories) Close() {
	r.close()
}
