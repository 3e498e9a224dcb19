// Package factory generates new horses for rosters and yearly crops.
package factory

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/rng"
)

// ErrNamesExhausted is returned when no unique name can be produced
var ErrNamesExhausted = errors.New("no unique horse name available")

const (
	DefaultMinAge    = 2
	DefaultMaxAge    = 5
	DefaultMinTalent = 300
	DefaultMaxTalent = 800

	// StatSpread is the per-stat deviation from the horse's talent level, as a fraction
	StatSpread = 0.2
	// PotentialMin and PotentialMax bound the growth headroom over the starting stat sum
	PotentialMin = 200
	PotentialMax = 1000

	UltimateChance = 0.6

	nameAttempts = 32
)

// Config bounds the generated horses
type Config struct {
	MinAge    int
	MaxAge    int
	MinTalent int
	MaxTalent int
}

// DefaultConfig returns the standard generation bounds
func DefaultConfig() Config {
	return Config{
		MinAge:    DefaultMinAge,
		MaxAge:    DefaultMaxAge,
		MinTalent: DefaultMinTalent,
		MaxTalent: DefaultMaxTalent,
	}
}

// Generator creates horses with unique names.
// It is not safe for concurrent use unless its Source is.
type Generator struct {
	cfg    Config
	names  *NameRegistry
	src    rng.Source
	logger *logrus.Logger
}

// NewGenerator creates a generator. A nil registry starts empty.
func NewGenerator(cfg Config, names *NameRegistry, src rng.Source, logger *logrus.Logger) *Generator {
	if names == nil {
		names = NewNameRegistry()
	}
	if src == nil {
		src = rng.NewPartitioned(0).For(rng.SubsystemFactory)
	}
	if logger == nil {
		logger = logrus.New()
	}
	if cfg.MaxAge < cfg.MinAge {
		cfg.MaxAge = cfg.MinAge
	}
	if cfg.MaxTalent < cfg.MinTalent {
		cfg.MaxTalent = cfg.MinTalent
	}
	return &Generator{cfg: cfg, names: names, src: src, logger: logger}
}

// Names exposes the registry the generator draws against
func (g *Generator) Names() *NameRegistry {
	return g.names
}

// Generate creates one horse for the team
func (g *Generator) Generate(teamID string) (*models.Horse, error) {
	first, last, err := g.pickName()
	if err != nil {
		return nil, err
	}

	age := g.intBetween(g.cfg.MinAge, g.cfg.MaxAge)
	stats := g.stats()
	h := models.NewHorse(first, last, teamID, age, stats, g.aptitude())
	h.Potential = stats.Sum() + g.intBetween(PotentialMin, PotentialMax)
	if ceiling := 5 * models.StatCeiling; h.Potential > ceiling {
		h.Potential = ceiling
	}
	h.Skills = g.skills()

	g.logger.WithFields(logrus.Fields{
		"horse":     h.Name(),
		"team_id":   teamID,
		"ovr":       h.CurrentOvr,
		"potential": h.Potential,
	}).Debug("Horse generated")

	return h, nil
}

// GenerateRoster creates n horses for the team
func (g *Generator) GenerateRoster(teamID string, n int) ([]*models.Horse, error) {
	horses := make([]*models.Horse, 0, n)
	for i := 0; i < n; i++ {
		h, err := g.Generate(teamID)
		if err != nil {
			return horses, fmt.Errorf("generated %d of %d horses: %w", i, n, err)
		}
		horses = append(horses, h)
	}
	return horses, nil
}

func (g *Generator) pickName() (string, string, error) {
	for i := 0; i < nameAttempts; i++ {
		first := pick(g.src, firstNames)
		last := pick(g.src, lastNames)
		if g.names.Reserve(first + " " + last) {
			return first, last, nil
		}
	}

	// every random pair collided; walk the generations of one pair instead
	first := pick(g.src, firstNames)
	last := pick(g.src, lastNames)
	for n := 0; n < 100; n++ {
		candidate := suffixed(last, n)
		if g.names.Reserve(first + " " + candidate) {
			return first, candidate, nil
		}
	}
	return "", "", ErrNamesExhausted
}

func (g *Generator) stats() models.Stats {
	talent := float64(g.intBetween(g.cfg.MinTalent, g.cfg.MaxTalent))
	stat := func() int {
		v := int(talent * (1 - StatSpread + 2*StatSpread*g.src.Float64()))
		if v < 1 {
			return 1
		}
		if v > models.StatCeiling {
			return models.StatCeiling
		}
		return v
	}
	return models.Stats{Speed: stat(), Stamina: stat(), Power: stat(), Guts: stat(), Wisdom: stat()}
}

// aptitude gives each horse one strong surface, a peak distance band and a preferred style
func (g *Generator) aptitude() models.Aptitude {
	strong := func() int { return g.intBetween(7, 9) }
	fair := func() int { return g.intBetween(4, 7) }
	weak := func() int { return g.intBetween(1, 4) }

	var a models.Aptitude
	if g.src.Float64() < 0.75 {
		a.Surface = models.SurfaceAptitude{Turf: strong(), Dirt: weak()}
	} else {
		a.Surface = models.SurfaceAptitude{Turf: weak(), Dirt: strong()}
	}

	bands := []*int{&a.Distance.Short, &a.Distance.Mile, &a.Distance.Medium, &a.Distance.Long}
	peak := g.intBetween(0, len(bands)-1)
	for i, band := range bands {
		switch d := i - peak; {
		case d == 0:
			*band = strong()
		case d == 1 || d == -1:
			*band = fair()
		default:
			*band = weak()
		}
	}

	styles := []*int{&a.Strategy.Runner, &a.Strategy.Leader, &a.Strategy.Betweener, &a.Strategy.Chaser}
	preferred := g.intBetween(0, len(styles)-1)
	for i, style := range styles {
		if i == preferred {
			*style = strong()
		} else {
			*style = g.intBetween(2, 6)
		}
	}
	return a.Normalize()
}

func (g *Generator) skills() []models.Skill {
	skills := []models.Skill{}
	if g.src.Float64() < UltimateChance {
		skills = append(skills, models.Skill{
			Name:     pick(g.src, skillNames),
			Chance:   0.2 + 0.2*g.src.Float64(),
			Value:    0.5,
			Ultimate: true,
		})
	}
	return skills
}

// intBetween returns an integer in [lo, hi]
func (g *Generator) intBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	v := lo + int(g.src.Float64()*float64(hi-lo+1))
	if v > hi {
		return hi
	}
	return v
}

func pick(src rng.Source, pool []string) string {
	i := int(src.Float64() * float64(len(pool)))
	if i >= len(pool) {
		i = len(pool) - 1
	}
	return pool[i]
}
