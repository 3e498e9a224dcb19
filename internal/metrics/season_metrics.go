package metrics

import "github.com/prometheus/client_golang/prometheus"

// Season counters
var (
	WeeksAdvancedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "weeks_advanced_total",
		Help:      "Calendar weeks processed",
	})
	RacesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "races_skipped_total",
		Help:      "Calendar races skipped for lack of runners",
	})
	InjuriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "injuries_total",
		Help:      "Post-race injuries",
	})
	RetirementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retirements_total",
		Help:      "Horses retired at year end",
	})
	PursePaidTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purse_paid_total",
		Help:      "Prize money paid out",
	})
)

// Season gauges
var (
	SeasonYear = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "season_year",
		Help:      "Current season year",
	})
	SeasonWeek = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "season_week",
		Help:      "Current calendar week",
	})
	ActiveHorses = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_horses",
		Help:      "Horses not retired",
	})
)

// WeekAdvanceDuration tracks the wall-clock time of one weekly advance
var WeekAdvanceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Name:      "week_advance_duration_seconds",
	Help:      "Duration of one weekly advance in seconds",
	Buckets:   prometheus.DefBuckets,
})

// RecordWeek records a completed weekly advance.
func RecordWeek(year, week, skipped, injuries, retirements, active int, purse float64, durationSeconds float64) {
	WeeksAdvancedTotal.Inc()
	RacesSkippedTotal.Add(float64(skipped))
	InjuriesTotal.Add(float64(injuries))
	RetirementsTotal.Add(float64(retirements))
	PursePaidTotal.Add(purse)
	SeasonYear.Set(float64(year))
	SeasonWeek.Set(float64(week))
	ActiveHorses.Set(float64(active))
	WeekAdvanceDuration.Observe(durationSeconds)
}
