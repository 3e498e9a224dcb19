package metrics

import "github.com/prometheus/client_golang/prometheus"

// Race counters
var (
	RacesSimulatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "races_simulated_total",
		Help:      "Total number of simulated races by grade",
	}, []string{"grade"})
	RaceCutoffsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "race_cutoffs_total",
		Help:      "Races stopped by the safety cutoff",
	})
	UltimatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ultimates_total",
		Help:      "Ultimate activations across all races",
	})
	AllocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocations_total",
		Help:      "Weekly matchmaking runs",
	})
	HorsesExcludedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "horses_excluded_total",
		Help:      "Horses left out of the field of their top choice, by grade",
	}, []string{"grade"})
	ProjectionRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projection_runs_total",
		Help:      "Monte Carlo projections by status",
	}, []string{"status"})
)

// Race histograms
var (
	RaceFieldSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "race_field_size",
		Help:      "Number of runners per simulated race",
		Buckets:   []float64{2, 4, 6, 8, 10, 12, 14, 16, 18},
	})
	WinningTimeSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "winning_time_seconds",
		Help:      "Simulated winning time by distance band",
		Buckets:   []float64{60, 75, 90, 105, 120, 135, 150, 180, 210, 240},
	}, []string{"distance"})
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Wall-clock time spent simulating one race",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
)

// RecordRace records one simulated race.
func RecordRace(grade, distanceBand string, fieldSize int, winningTime float64, cutoff bool, wallSeconds float64) {
	RacesSimulatedTotal.WithLabelValues(grade).Inc()
	RaceFieldSize.Observe(float64(fieldSize))
	SimulationDuration.Observe(wallSeconds)
	if cutoff {
		RaceCutoffsTotal.Inc()
		return
	}
	WinningTimeSeconds.WithLabelValues(distanceBand).Observe(winningTime)
}

// RecordUltimates adds ultimate activations.
func RecordUltimates(count int) {
	UltimatesTotal.Add(float64(count))
}

// RecordAllocation records a matchmaking run and its exclusions.
func RecordAllocation(excludedByGrade map[string]int) {
	AllocationsTotal.Inc()
	for grade, n := range excludedByGrade {
		HorsesExcludedTotal.WithLabelValues(grade).Add(float64(n))
	}
}

// RecordProjection records a projection run.
// status should be one of: "success", "failure", "cancelled"
func RecordProjection(status string) {
	ProjectionRunsTotal.WithLabelValues(status).Inc()
}
