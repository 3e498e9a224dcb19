// Package race runs the time-stepped race simulation.
//
// The first part of the race (the draft phase) pulls every horse toward a shared
// pace and a strategy-dependent gap behind the leader, so raw stats only separate
// the field in the sprint phase.
package race

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby-sim/internal/logger"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/rng"
)

// MinFieldSize is the smallest field the simulator accepts
const MinFieldSize = 2

var splitMarks = []float64{0.25, 0.50, 0.75, 1.0}

// runner is the per-horse working state. Horses passed in are never mutated.
type runner struct {
	horse    *models.Horse
	index    int
	name     string
	strategy models.Strategy

	distance float64
	speed    float64
	stamina  float64

	spurting bool
	drafting bool

	ultimateAt     float64
	ultimateRolled bool
	ultimateActive bool

	finished   bool
	finishTime float64
	splits     []float64
}

// session is the context of one race run
type session struct {
	raceID    string
	distance  int
	d         float64
	stretch   float64
	talk      *commentary
	ultimates int
}

// Simulator runs races. It is not safe for concurrent use unless its Source is.
type Simulator struct {
	cfg    Config
	rng    rng.Source
	logger *logger.RaceLogger
}

// NewSimulator creates a simulator. A nil source uses a clock-seeded one.
func NewSimulator(cfg Config, src rng.Source, log *logrus.Logger) *Simulator {
	if src == nil {
		src = rng.NewPartitioned(0).For(rng.SubsystemRace)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Simulator{cfg: cfg, rng: src, logger: logger.NewRaceLogger(log)}
}

// Config returns the active engine settings
func (s *Simulator) Config() Config {
	return s.cfg
}

// Simulate runs an anonymous race over distance meters
func (s *Simulator) Simulate(field []*models.Horse, distance int, surface models.Surface) (*models.RaceOutcome, error) {
	return s.run(nil, field, distance, surface)
}

// SimulateEvent runs a calendar race
func (s *Simulator) SimulateEvent(race *models.RaceEvent, field []*models.Horse) (*models.RaceOutcome, error) {
	if race == nil {
		return nil, models.NewInvalidRaceError("race event is nil")
	}
	return s.run(race, field, race.Distance, race.Surface)
}

func (s *Simulator) validate(field []*models.Horse, distance int, surface models.Surface) error {
	if len(field) < MinFieldSize {
		return models.NewInvalidRaceError("field of %d, need at least %d", len(field), MinFieldSize)
	}
	for i, h := range field {
		if h == nil {
			return models.NewInvalidRaceError("entrant %d is nil", i)
		}
	}
	if distance <= 0 {
		return models.NewInvalidRaceError("distance %d must be positive", distance)
	}
	if !surface.IsValid() {
		return models.NewInvalidRaceError("unknown surface %q", surface)
	}
	if s.cfg.FrameRate <= 0 || s.cfg.SafetyCutoff <= 0 {
		return models.NewInvalidRaceError("frame rate and safety cutoff must be positive")
	}
	return nil
}

func (s *Simulator) run(event *models.RaceEvent, field []*models.Horse, distance int, surface models.Surface) (*models.RaceOutcome, error) {
	if err := s.validate(field, distance, surface); err != nil {
		return nil, err
	}

	sess := &session{
		distance: distance,
		d:        float64(distance),
		stretch:  FinalStretchMeters,
		talk:     newCommentary(),
	}
	if distance > LongRaceDistance {
		sess.stretch = FinalStretchLong
	}
	if event != nil {
		sess.raceID = event.ID
	}
	dt := s.cfg.dt()
	talk := sess.talk

	runners := s.initRunners(field, sess.d)

	clock := 0.0
	remaining := len(runners)
	for step := 1; step <= s.cfg.maxSteps() && remaining > 0; step++ {
		clock = float64(step) * dt
		leader := leaderOf(runners)
		talk.observe(clock, leader, sess.d, sess.stretch)

		for _, r := range runners {
			if r.finished {
				continue
			}
			s.advance(sess, r, leader, clock)
			if r.finished {
				remaining--
			}
		}
	}

	cutoff := remaining > 0
	if cutoff {
		talk.add(clock, "The stewards halt the race after %.0f seconds", clock)
	}

	results := rank(runners, clock)
	total := clock
	if !cutoff {
		total = 0
		for _, r := range runners {
			total = math.Max(total, r.finishTime)
		}
	}

	title := raceTitle(event, distance, surface)
	outcome := &models.RaceOutcome{
		ID:            uuid.New(),
		Distance:      distance,
		Surface:       surface,
		Results:       results,
		Log:           talk.normalize(total, title, results[0].HorseName),
		CutoffTripped: cutoff,
		UltimateCount: sess.ultimates,
		CreatedAt:     time.Now().UTC(),
	}
	if event != nil {
		outcome.RaceID = event.ID
		outcome.RaceName = event.Name
		outcome.Week = event.Week
	}

	if cutoff {
		s.logger.LogCutoffTripped(outcome.RaceID, clock, remaining)
	}
	s.logger.LogRaceCompleted(outcome.RaceID, distance, len(field), results[0].HorseName, results[0].FinishTime, clock)

	return outcome, nil
}

func (s *Simulator) initRunners(field []*models.Horse, d float64) []*runner {
	runners := make([]*runner, len(field))
	for i, h := range field {
		strategy := h.Aptitude.PreferredStrategy()

		trigger := d*UltimateBaseProgress + s.cfg.UltimateOffsets[strategy]*d + (s.rng.Float64()-0.5)*2*UltimateNoiseMeters
		trigger = math.Max(d*UltimateMinProgress, math.Min(d-UltimateFinishMargin, trigger))

		runners[i] = &runner{
			horse:      h,
			index:      i,
			name:       h.Name(),
			strategy:   strategy,
			stamina:    math.Max(0, float64(h.Stats.Stamina)),
			ultimateAt: trigger,
			splits:     make([]float64, 0, len(splitMarks)),
		}
	}
	return runners
}

// leaderOf returns the horse furthest along; ties go to the lowest index
func leaderOf(runners []*runner) *runner {
	leader := runners[0]
	for _, r := range runners[1:] {
		if r.distance > leader.distance {
			leader = r
		}
	}
	return leader
}

// advance moves one horse forward by a single frame
func (s *Simulator) advance(sess *session, r *runner, leader *runner, clock float64) {
	cfg := s.cfg
	dt := cfg.dt()
	d := sess.d
	progress := r.distance / d
	stats := r.horse.Stats.Display()

	r.drafting = false
	var target float64

	if progress < cfg.DraftPhaseEnd {
		target = cfg.RacePace
		gap := leader.distance - r.distance
		want := cfg.TargetGaps[r.strategy]
		switch {
		case gap > want+GapBehindTolerance:
			target *= DraftingBoost
			r.drafting = true
		case gap < want-GapAheadTolerance && r != leader:
			target *= EaseOffFactor
		}
	} else {
		speedRatio := clamp01(float64(stats.Speed) / StatScale)
		powerRatio := clamp01(float64(stats.Power) / StatScale)
		target = cfg.RacePace + (SpeedWeight*speedRatio+PowerWeight*powerRatio)*cfg.SprintBonusCap

		if !r.spurting {
			threshold := SpurtThresholdMax - SpurtThresholdSpread*math.Min(float64(stats.Stamina), StatScale)/StatScale
			left := d - r.distance
			if progress >= threshold && r.stamina >= left*SpurtBurnPerMeter {
				r.spurting = true
			}
		}
		if r.spurting {
			target += SpurtBonus + cfg.ClosingBonus[r.strategy]
		}
	}

	if !r.ultimateRolled && r.distance >= r.ultimateAt {
		r.ultimateRolled = true
		if r.stamina > UltimateMinStamina {
			chance := UltimateBaseChance + float64(stats.Wisdom)/UltimateWisdomDivisor
			if s.rng.Float64() < chance {
				r.ultimateActive = true
				sess.ultimates++
				sess.talk.add(clock, "%s", ultimateLine(r))
				s.logger.LogUltimate(sess.raceID, r.name, r.distance)
			}
		}
	}
	if r.ultimateActive {
		target += UltimateBonus
	}

	// soft wall: an empty tank caps the horse below pace but never stops it
	if r.stamina <= 0 {
		r.stamina = 0
		r.spurting = false
		target = math.Min(target, cfg.RacePace*SoftWallFactor)
	}

	rate := AccelBase + AccelPowerScale*clamp01(float64(stats.Power)/StatScale)
	if target < r.speed {
		rate *= DecelFactor
	}
	r.speed += (target - r.speed) * math.Min(1, rate*dt)

	prev := r.distance
	r.distance += r.speed * dt

	drain := cfg.StaminaDrainRate
	if sess.distance > LongRaceDistance {
		drain *= LongRaceDrainFactor
	}
	if r.spurting {
		drain *= SpurtDrainFactor
	}
	if r.drafting {
		drain *= cfg.DraftingDrainFactor
	}
	r.stamina = math.Max(0, r.stamina-drain*dt)

	s.recordSplits(r, prev, d, clock)

	if r.distance >= d {
		r.finishTime = round2(crossingTime(prev, r.distance, d, clock, dt))
		r.distance = d
		r.finished = true
	}
}

func (s *Simulator) recordSplits(r *runner, prev, d, clock float64) {
	dt := s.cfg.dt()
	for len(r.splits) < len(splitMarks) {
		mark := splitMarks[len(r.splits)] * d
		if r.distance < mark {
			return
		}
		r.splits = append(r.splits, round2(crossingTime(prev, r.distance, mark, clock, dt)))
	}
}

// crossingTime interpolates the instant within the last frame at which mark was reached
func crossingTime(prev, cur, mark, clock, dt float64) float64 {
	if cur <= prev {
		return clock
	}
	frac := (mark - prev) / (cur - prev)
	return clock - dt + dt*math.Max(0, math.Min(1, frac))
}

// rank orders finishers by time, then stragglers by distance covered
func rank(runners []*runner, clock float64) []models.Result {
	var finishers, dnf []*runner
	for _, r := range runners {
		if r.finished {
			finishers = append(finishers, r)
		} else {
			dnf = append(dnf, r)
		}
	}
	sort.SliceStable(finishers, func(i, j int) bool {
		return finishers[i].finishTime < finishers[j].finishTime
	})
	sort.SliceStable(dnf, func(i, j int) bool {
		return dnf[i].distance > dnf[j].distance
	})

	results := make([]models.Result, 0, len(runners))
	for _, r := range append(finishers, dnf...) {
		res := models.Result{
			HorseID:         r.horse.ID,
			HorseName:       r.name,
			Rank:            len(results) + 1,
			FinishTime:      r.finishTime,
			Splits:          r.splits,
			Status:          models.FinishStatusFinished,
			DistanceCovered: round2(r.distance),
			Strategy:        r.strategy,
		}
		if !r.finished {
			res.Status = models.FinishStatusDNF
			res.FinishTime = round2(clock)
		}
		results = append(results, res)
	}
	return results
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
