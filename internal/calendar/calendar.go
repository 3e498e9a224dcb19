// Package calendar holds the static season calendar.
package calendar

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/derby-sim/internal/models"
)

// Calendar is an indexed, read-only view over the season's race events
type Calendar struct {
	races  []models.RaceEvent
	byName map[string]*models.RaceEvent
	byID   map[string]*models.RaceEvent
}

// New builds a calendar from race events, ordered by week then grade
func New(races []models.RaceEvent) (*Calendar, error) {
	sorted := append([]models.RaceEvent(nil), races...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Week != sorted[j].Week {
			return sorted[i].Week < sorted[j].Week
		}
		return sorted[i].Grade < sorted[j].Grade
	})

	c := &Calendar{
		races:  sorted,
		byName: make(map[string]*models.RaceEvent, len(sorted)),
		byID:   make(map[string]*models.RaceEvent, len(sorted)),
	}
	for i := range c.races {
		race := &c.races[i]
		if _, dup := c.byID[race.ID]; dup {
			return nil, fmt.Errorf("duplicate race id %q: %w", race.ID, models.ErrDuplicateKey)
		}
		if race.Week < 1 || race.Week > models.WeeksPerYear {
			return nil, fmt.Errorf("race %q has week %d outside 1-%d", race.ID, race.Week, models.WeeksPerYear)
		}
		c.byID[race.ID] = race
		c.byName[race.Name] = race
	}
	for _, race := range c.races {
		for _, trial := range race.TrialRaces {
			if _, ok := c.byName[trial]; !ok {
				return nil, fmt.Errorf("race %q lists unknown trial %q: %w", race.ID, trial, models.ErrUnknownRace)
			}
		}
	}
	return c, nil
}

// Default returns the built-in calendar
func Default() *Calendar {
	c, err := New(DefaultRaces())
	if err != nil {
		panic(fmt.Sprintf("built-in calendar is invalid: %v", err))
	}
	return c
}

// LoadYAML reads a calendar override file
func LoadYAML(path string) (*Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calendar file: %w", err)
	}

	var doc struct {
		Races []models.RaceEvent `yaml:"races"`
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse calendar file: %w", err)
	}
	if len(doc.Races) == 0 {
		return nil, fmt.Errorf("calendar file %s has no races", path)
	}
	return New(doc.Races)
}

// Races returns every race in calendar order
func (c *Calendar) Races() []models.RaceEvent {
	return append([]models.RaceEvent(nil), c.races...)
}

// RacesInWeek returns pointers to the races held in a week
func (c *Calendar) RacesInWeek(week int) []*models.RaceEvent {
	var out []*models.RaceEvent
	for i := range c.races {
		if c.races[i].Week == week {
			out = append(out, &c.races[i])
		}
	}
	return out
}

// ByName looks a race up by display name
func (c *Calendar) ByName(name string) (*models.RaceEvent, error) {
	if race, ok := c.byName[name]; ok {
		return race, nil
	}
	return nil, fmt.Errorf("race %q: %w", name, models.ErrUnknownRace)
}

// ByID looks a race up by id
func (c *Calendar) ByID(id string) (*models.RaceEvent, error) {
	if race, ok := c.byID[id]; ok {
		return race, nil
	}
	return nil, fmt.Errorf("race %q: %w", id, models.ErrUnknownRace)
}

// Lookup accepts either an id or a display name
func (c *Calendar) Lookup(key string) (*models.RaceEvent, error) {
	if race, ok := c.byID[key]; ok {
		return race, nil
	}
	return c.ByName(key)
}
