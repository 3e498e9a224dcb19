package race

import (
	"fmt"
	"math"

	"github.com/yourusername/derby-sim/internal/models"
)

type event struct {
	at      float64
	message string
}

// commentary collects timed lines during the loop and normalizes them afterwards
type commentary struct {
	events []event

	lastLeader     int
	lastLeaderLine float64
	midRaceCalled  bool
	stretchCalled  bool
}

func newCommentary() *commentary {
	return &commentary{lastLeader: -1}
}

func (c *commentary) add(at float64, format string, args ...interface{}) {
	c.events = append(c.events, event{at: at, message: fmt.Sprintf(format, args...)})
}

// observe emits the leader-driven lines for one step
func (c *commentary) observe(clock float64, leader *runner, distance float64, stretch float64) {
	if c.lastLeader < 0 {
		c.add(clock, "%s jumps out to an early lead", leader.name)
		c.lastLeader = leader.index
		c.lastLeaderLine = clock
	} else if leader.index != c.lastLeader &&
		clock-c.lastLeaderLine >= LeaderChangeInterval &&
		leader.distance < distance-FinalStretchMeters {
		c.add(clock, "%s takes the lead", leader.name)
		c.lastLeader = leader.index
		c.lastLeaderLine = clock
	}

	if !c.midRaceCalled && leader.distance >= distance*MidRaceProgress {
		c.midRaceCalled = true
		c.add(clock, "Halfway there and %s is showing the way", leader.name)
	}

	if !c.stretchCalled && leader.distance >= distance-stretch {
		c.stretchCalled = true
		c.add(clock, "Into the final stretch, %s still in front!", leader.name)
	}
}

// normalize converts absolute times to fractions of total and brackets the log
// with the start and winner lines
func (c *commentary) normalize(total float64, title, winner string) []models.LogEntry {
	log := make([]models.LogEntry, 0, len(c.events)+2)
	log = append(log, models.LogEntry{Message: fmt.Sprintf("And they're off in the %s!", title), TimePct: 0})

	for _, e := range c.events {
		pct := 0.0
		if total > 0 {
			pct = math.Max(0, math.Min(1, e.at/total))
		}
		log = append(log, models.LogEntry{Message: e.message, TimePct: pct})
	}

	log = append(log, models.LogEntry{Message: fmt.Sprintf("%s wins the %s!", winner, title), TimePct: 1})
	return log
}

func ultimateLine(r *runner) string {
	for _, s := range r.horse.Skills {
		if s.Ultimate && s.Name != "" {
			return fmt.Sprintf("%s activates Ultimate: %s!", r.name, s.Name)
		}
	}
	return fmt.Sprintf("%s activates Ultimate!", r.name)
}

func raceTitle(race *models.RaceEvent, distance int, surface models.Surface) string {
	if race != nil && race.Name != "" {
		return race.Name
	}
	return fmt.Sprintf("%dm %s race", distance, surface)
}
