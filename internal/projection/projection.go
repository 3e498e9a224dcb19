// Package projection estimates race outcomes by running the simulator repeatedly.
package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/race"
	"github.com/yourusername/derby-sim/internal/rng"
)

const (
	DefaultIterations = 1000
	// FairOddsCap is quoted for horses that never won a run
	FairOddsCap = 999.9
)

var confidenceLevels = []float64{0.9, 0.95}

// Simulator runs a single race. *race.Simulator satisfies it.
type Simulator interface {
	SimulateEvent(event *models.RaceEvent, field []*models.Horse) (*models.RaceOutcome, error)
}

// Config configures a projection
type Config struct {
	Iterations int
	// Seed seeds the simulator built when none is passed to Run. Zero picks one from the clock.
	Seed int64
}

// HorseProjection is the aggregated result for one entrant
type HorseProjection struct {
	HorseID             uuid.UUID          `json:"horse_id"`
	HorseName           string             `json:"horse_name"`
	WinPct              float64            `json:"win_pct"`
	Top3Pct             float64            `json:"top3_pct"`
	DNFPct              float64            `json:"dnf_pct"`
	MeanTime            float64            `json:"mean_time"`
	StdTime             float64            `json:"std_time"`
	MeanRank            float64            `json:"mean_rank"`
	FairOdds            string             `json:"fair_odds"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
}

// Result is a full projection, horses ordered by win probability
type Result struct {
	RaceID     string            `json:"race_id"`
	RaceName   string            `json:"race_name"`
	Iterations int               `json:"iterations"`
	Seed       int64             `json:"seed,omitempty"`
	Horses     []HorseProjection `json:"horses"`
}

// JSON renders the result for export
func (r *Result) JSON() string {
	data, _ := json.Marshal(r)
	return string(data)
}

type tally struct {
	wins, top3, dnf int
	rankSum         int
	times           []float64
}

// Run repeats event with field cfg.Iterations times. A nil sim gets a default
// simulator on the race stream of cfg.Seed.
func Run(ctx context.Context, sim Simulator, event *models.RaceEvent, field []*models.Horse, cfg Config) (*Result, error) {
	if event == nil {
		return nil, models.NewInvalidRaceError("race event is nil")
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultIterations
	}
	if sim == nil {
		src := rng.NewPartitioned(cfg.Seed)
		cfg.Seed = src.Seed()
		sim = race.NewSimulator(race.DefaultConfig(), src.For(rng.SubsystemRace), nil)
	}

	tallies := make(map[uuid.UUID]*tally, len(field))
	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("projection cancelled after %d runs: %w", i, err)
		}

		outcome, err := sim.SimulateEvent(event, field)
		if err != nil {
			return nil, fmt.Errorf("projection run %d: %w", i, err)
		}

		for _, res := range outcome.Results {
			t, ok := tallies[res.HorseID]
			if !ok {
				t = &tally{times: make([]float64, 0, cfg.Iterations)}
				tallies[res.HorseID] = t
			}
			t.rankSum += res.Rank
			if res.Rank == 1 {
				t.wins++
			}
			if res.Rank <= 3 {
				t.top3++
			}
			if !res.Finished() {
				t.dnf++
				continue
			}
			t.times = append(t.times, res.FinishTime)
		}
	}

	n := float64(cfg.Iterations)
	result := &Result{
		RaceID:     event.ID,
		RaceName:   event.Name,
		Iterations: cfg.Iterations,
		Seed:       cfg.Seed,
		Horses:     make([]HorseProjection, 0, len(field)),
	}
	for _, h := range field {
		t, ok := tallies[h.ID]
		if !ok {
			continue
		}
		mean, std := meanStd(t.times)
		winPct := float64(t.wins) / n
		result.Horses = append(result.Horses, HorseProjection{
			HorseID:             h.ID,
			HorseName:           h.Name(),
			WinPct:              winPct,
			Top3Pct:             float64(t.top3) / n,
			DNFPct:              float64(t.dnf) / n,
			MeanTime:            mean,
			StdTime:             std,
			MeanRank:            float64(t.rankSum) / n,
			FairOdds:            FairOdds(winPct),
			ConfidenceIntervals: CalculateConfidenceIntervals(t.times, confidenceLevels),
		})
	}

	sort.SliceStable(result.Horses, func(i, j int) bool {
		if result.Horses[i].WinPct != result.Horses[j].WinPct {
			return result.Horses[i].WinPct > result.Horses[j].WinPct
		}
		return result.Horses[i].MeanRank < result.Horses[j].MeanRank
	})

	return result, nil
}

// FairOdds converts a win probability into decimal odds with one decimal place
func FairOdds(winPct float64) string {
	if winPct <= 0 {
		return decimal.NewFromFloat(FairOddsCap).StringFixed(1)
	}
	odds := decimal.NewFromInt(1).Div(decimal.NewFromFloat(winPct))
	if odds.GreaterThan(decimal.NewFromFloat(FairOddsCap)) {
		odds = decimal.NewFromFloat(FairOddsCap)
	}
	return odds.StringFixed(1)
}

// CalculateConfidenceIntervals returns the width of the central interval for each level
func CalculateConfidenceIntervals(distribution []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64)
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := percentile(distribution, p)
		high := percentile(distribution, 1.0-p)
		results[formatPercent(level)] = high - low
	}
	return results
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	idx := int(math.Floor(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}
