package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/derby-sim/internal/models"
)

const seasonStateKey = "season_state"

// MemoryStore keeps every record in process memory. Stored values are copies,
// so callers never share pointers with the store.
type MemoryStore struct {
	horses   *cache.Cache
	outcomes *cache.Cache
	state    *cache.Cache
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		horses:   cache.New(cache.NoExpiration, 0),
		outcomes: cache.New(cache.NoExpiration, 0),
		state:    cache.New(cache.NoExpiration, 0),
	}
}

// MemoryHorseRepository implements HorseRepository on a MemoryStore
type MemoryHorseRepository struct {
	store *MemoryStore
}

// NewMemoryHorseRepository creates a horse repository backed by store
func NewMemoryHorseRepository(store *MemoryStore) HorseRepository {
	return &MemoryHorseRepository{store: store}
}

// Create inserts a new horse
func (r *MemoryHorseRepository) Create(ctx context.Context, horse *models.Horse) error {
	if horse.ID == uuid.Nil {
		return models.ErrInvalidID
	}
	stamp(horse)
	if err := r.store.horses.Add(horse.ID.String(), horse.Clone(), cache.NoExpiration); err != nil {
		return fmt.Errorf("horse %s: %w", horse.ID, models.ErrDuplicateKey)
	}
	return nil
}

// GetByID retrieves a horse by ID
func (r *MemoryHorseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Horse, error) {
	v, ok := r.store.horses.Get(id.String())
	if !ok {
		return nil, models.ErrNotFound
	}
	return v.(*models.Horse).Clone(), nil
}

// List returns every horse
func (r *MemoryHorseRepository) List(ctx context.Context) ([]*models.Horse, error) {
	return r.filter(func(*models.Horse) bool { return true }), nil
}

// ListByTeam returns the horses of one team
func (r *MemoryHorseRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Horse, error) {
	return r.filter(func(h *models.Horse) bool { return h.TeamID == teamID }), nil
}

func (r *MemoryHorseRepository) filter(keep func(*models.Horse) bool) []*models.Horse {
	horses := make([]*models.Horse, 0)
	for _, item := range r.store.horses.Items() {
		h := item.Object.(*models.Horse)
		if keep(h) {
			horses = append(horses, h.Clone())
		}
	}
	sortHorses(horses)
	return horses
}

// Update replaces an existing horse
func (r *MemoryHorseRepository) Update(ctx context.Context, horse *models.Horse) error {
	stamp(horse)
	if err := r.store.horses.Replace(horse.ID.String(), horse.Clone(), cache.NoExpiration); err != nil {
		return models.ErrNotFound
	}
	return nil
}

// UpsertBatch inserts or replaces horses
func (r *MemoryHorseRepository) UpsertBatch(ctx context.Context, horses []*models.Horse) error {
	for _, h := range horses {
		if h.ID == uuid.Nil {
			return models.ErrInvalidID
		}
	}
	for _, h := range horses {
		stamp(h)
		r.store.horses.Set(h.ID.String(), h.Clone(), cache.NoExpiration)
	}
	return nil
}

// Delete removes a horse
func (r *MemoryHorseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.store.horses.Get(id.String()); !ok {
		return models.ErrNotFound
	}
	r.store.horses.Delete(id.String())
	return nil
}

// MemorySeasonStateRepository implements SeasonStateRepository on a MemoryStore
type MemorySeasonStateRepository struct {
	store *MemoryStore
}

// NewMemorySeasonStateRepository creates a season state repository backed by store
func NewMemorySeasonStateRepository(store *MemoryStore) SeasonStateRepository {
	return &MemorySeasonStateRepository{store: store}
}

// Get returns the current season state
func (r *MemorySeasonStateRepository) Get(ctx context.Context) (*models.SeasonState, error) {
	v, ok := r.store.state.Get(seasonStateKey)
	if !ok {
		return nil, models.ErrSeasonNotStarted
	}
	state := v.(models.SeasonState)
	return &state, nil
}

// Save stores the season state
func (r *MemorySeasonStateRepository) Save(ctx context.Context, state *models.SeasonState) error {
	state.UpdatedAt = time.Now().UTC()
	r.store.state.Set(seasonStateKey, *state, cache.NoExpiration)
	return nil
}

// MemoryOutcomeRepository implements OutcomeRepository on a MemoryStore
type MemoryOutcomeRepository struct {
	store *MemoryStore
}

// NewMemoryOutcomeRepository creates an outcome repository backed by store
func NewMemoryOutcomeRepository(store *MemoryStore) OutcomeRepository {
	return &MemoryOutcomeRepository{store: store}
}

// Save stores an outcome
func (r *MemoryOutcomeRepository) Save(ctx context.Context, outcome *models.RaceOutcome) error {
	if outcome.ID == uuid.Nil {
		return models.ErrInvalidID
	}
	c := *outcome
	c.Results = append([]models.Result(nil), outcome.Results...)
	c.Log = append([]models.LogEntry(nil), outcome.Log...)
	if err := r.store.outcomes.Add(outcome.ID.String(), &c, cache.NoExpiration); err != nil {
		return fmt.Errorf("outcome %s: %w", outcome.ID, models.ErrDuplicateKey)
	}
	return nil
}

// GetByID retrieves an outcome by ID
func (r *MemoryOutcomeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.RaceOutcome, error) {
	v, ok := r.store.outcomes.Get(id.String())
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *v.(*models.RaceOutcome)
	return &c, nil
}

// ListByWeek returns the outcomes of one calendar week
func (r *MemoryOutcomeRepository) ListByWeek(ctx context.Context, year, week int) ([]*models.RaceOutcome, error) {
	return r.filter(func(o *models.RaceOutcome) bool { return o.Year == year && o.Week == week }), nil
}

// ListByYear returns the outcomes of one year
func (r *MemoryOutcomeRepository) ListByYear(ctx context.Context, year int) ([]*models.RaceOutcome, error) {
	return r.filter(func(o *models.RaceOutcome) bool { return o.Year == year }), nil
}

func (r *MemoryOutcomeRepository) filter(keep func(*models.RaceOutcome) bool) []*models.RaceOutcome {
	outcomes := make([]*models.RaceOutcome, 0)
	for _, item := range r.store.outcomes.Items() {
		o := item.Object.(*models.RaceOutcome)
		if keep(o) {
			c := *o
			outcomes = append(outcomes, &c)
		}
	}
	sortOutcomes(outcomes)
	return outcomes
}

func sortHorses(horses []*models.Horse) {
	sort.SliceStable(horses, func(i, j int) bool {
		if !horses[i].CreatedAt.Equal(horses[j].CreatedAt) {
			return horses[i].CreatedAt.Before(horses[j].CreatedAt)
		}
		return horses[i].ID.String() < horses[j].ID.String()
	})
}

func sortOutcomes(outcomes []*models.RaceOutcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		a, b := outcomes[i], outcomes[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
