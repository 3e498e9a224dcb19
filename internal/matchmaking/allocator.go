// Package matchmaking turns a week's race slate and the roster into per-race fields.
package matchmaking

import (
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/policy"
	"github.com/yourusername/derby-sim/internal/rating"
)

const (
	DefaultCapacity     = 18
	DefaultMinCondition = 30
	DefaultFloorG1      = 2200
	DefaultFloorG2      = 1800
	DefaultFloorOther   = 1400
	MinFieldToRun       = 2
)

// Config holds the allocation knobs
type Config struct {
	Capacity     int
	MinCondition int
	FloorG1      int
	FloorG2      int
	FloorOther   int
	// Workers bounds the eligibility fan-out
	Workers int
}

// DefaultConfig returns the tuned allocation settings
func DefaultConfig() Config {
	return Config{
		Capacity:     DefaultCapacity,
		MinCondition: DefaultMinCondition,
		FloorG1:      DefaultFloorG1,
		FloorG2:      DefaultFloorG2,
		FloorOther:   DefaultFloorOther,
		Workers:      runtime.GOMAXPROCS(0),
	}
}

// FromConfig overlays configured values on DefaultConfig
func FromConfig(cfg *config.AllocationConfig) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if cfg.Capacity > 0 {
		c.Capacity = cfg.Capacity
	}
	if cfg.MinCondition > 0 {
		c.MinCondition = cfg.MinCondition
	}
	if cfg.FloorG1 > 0 {
		c.FloorG1 = cfg.FloorG1
	}
	if cfg.FloorG2 > 0 {
		c.FloorG2 = cfg.FloorG2
	}
	if cfg.FloorOther > 0 {
		c.FloorOther = cfg.FloorOther
	}
	if cfg.Workers > 0 {
		c.Workers = cfg.Workers
	}
	return c
}

// Floor returns the minimum priority a non-qualified application needs for a grade
func (c Config) Floor(grade models.Grade) int {
	switch grade {
	case models.GradeG1:
		return c.FloorG1
	case models.GradeG2:
		return c.FloorG2
	default:
		return c.FloorOther
	}
}

// Application is one (horse, race) request for a slot
type Application struct {
	Horse    *models.Horse
	Race     *models.RaceEvent
	Priority float64
}

// candidate is the per-horse evaluation result
type candidate struct {
	horse        *models.Horse
	topChoice    *models.RaceEvent
	applications []Application
}

// Allocator builds weekly fields with a single greedy pass over globally ranked applications
type Allocator struct {
	cfg    Config
	policy policy.EntryPolicy
	logger *logrus.Logger
}

// NewAllocator creates an allocator. A nil policy uses policy.Default().
func NewAllocator(cfg Config, entry policy.EntryPolicy, logger *logrus.Logger) *Allocator {
	if entry == nil {
		entry = policy.Default()
	}
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Allocator{cfg: cfg, policy: entry, logger: logger}
}

// Allocate resolves every horse to at most one race this week.
// Every race in the slate gets an entry in the result, possibly with an empty field.
func (a *Allocator) Allocate(horses []*models.Horse, races []*models.RaceEvent, week, year int) map[string]*models.Allocation {
	result := make(map[string]*models.Allocation, len(races))
	for _, race := range races {
		result[race.ID] = &models.Allocation{Race: race, Field: []*models.Horse{}, Excluded: []*models.Horse{}}
	}
	if len(races) == 0 {
		return result
	}

	var pool []*models.Horse
	for _, h := range horses {
		if inPool(h) && h.Condition >= a.cfg.MinCondition {
			pool = append(pool, h)
		}
	}

	candidates := a.evaluate(pool, races, week, year)

	var apps []Application
	for _, c := range candidates {
		apps = append(apps, c.applications...)
	}
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].Priority > apps[j].Priority
	})

	assigned := make(map[*models.Horse]bool, len(pool))
	for _, app := range apps {
		if assigned[app.Horse] {
			continue
		}
		alloc := result[app.Race.ID]
		if len(alloc.Field) >= a.cfg.Capacity {
			continue
		}
		alloc.Field = append(alloc.Field, app.Horse)
		assigned[app.Horse] = true
	}

	for _, c := range candidates {
		if c.topChoice == nil || assigned[c.horse] {
			continue
		}
		alloc := result[c.topChoice.ID]
		alloc.Excluded = append(alloc.Excluded, c.horse)
	}

	for _, race := range races {
		alloc := result[race.ID]
		a.logger.WithFields(logrus.Fields{
			"race_id":    race.ID,
			"week":       week,
			"year":       year,
			"field_size": len(alloc.Field),
			"excluded":   len(alloc.Excluded),
		}).Debug("Race allocated")
	}

	return result
}

// inPool admits active horses, and injured ones holding a target race so the
// policy can apply the override
func inPool(h *models.Horse) bool {
	if h == nil {
		return false
	}
	return h.IsAvailable() || (h.Status == models.HorseStatusInjured && h.TargetRace != "")
}

// evaluate runs the entry policy and scoring for every horse on a bounded worker group.
// Each worker writes only its own slot.
func (a *Allocator) evaluate(pool []*models.Horse, races []*models.RaceEvent, week, year int) []candidate {
	out := make([]candidate, len(pool))

	var wg sync.WaitGroup
	sem := make(chan struct{}, a.cfg.Workers)
	for i, h := range pool {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, h *models.Horse) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = a.evaluateHorse(h, races, week, year)
		}(i, h)
	}
	wg.Wait()

	return out
}

func (a *Allocator) evaluateHorse(h *models.Horse, races []*models.RaceEvent, week, year int) candidate {
	c := candidate{horse: h}
	bestPriority := 0.0

	for _, race := range races {
		if !a.policy.ShouldEnterRace(h, race, week, year) {
			continue
		}
		priority := rating.CalculatePriorityScore(h, race, year)

		// top choice is recorded before the floor so a cut horse is still attributed to it
		if c.topChoice == nil || priority > bestPriority {
			c.topChoice = race
			bestPriority = priority
		}

		if priority < rating.QualificationBonus && priority < float64(a.cfg.Floor(race.Grade)) {
			continue
		}
		c.applications = append(c.applications, Application{Horse: h, Race: race, Priority: priority})
	}

	return c
}

// CreateOfficialField ranks pre-filtered entrants by race rating and keeps the top capacity.
// No eligibility checks are repeated.
func CreateOfficialField(entrants []*models.Horse, race *models.RaceEvent, capacity int) *models.Allocation {
	ranked := make([]*models.Horse, 0, len(entrants))
	ratings := make(map[*models.Horse]int, len(entrants))
	for _, h := range entrants {
		if h == nil {
			continue
		}
		ranked = append(ranked, h)
		ratings[h] = rating.CalculateRaceRating(h, race)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ratings[ranked[i]] > ratings[ranked[j]]
	})

	if capacity < 0 {
		capacity = 0
	}
	alloc := &models.Allocation{Race: race, Field: []*models.Horse{}, Excluded: []*models.Horse{}}
	for i, h := range ranked {
		if i < capacity {
			alloc.Field = append(alloc.Field, h)
		} else {
			alloc.Excluded = append(alloc.Excluded, h)
		}
	}
	return alloc
}
