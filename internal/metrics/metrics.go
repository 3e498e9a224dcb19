// Package metrics provides the Prometheus registry and domain metrics of the simulator.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "derby_sim"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Race metrics
		registry.MustRegister(RacesSimulatedTotal)
		registry.MustRegister(RaceCutoffsTotal)
		registry.MustRegister(UltimatesTotal)
		registry.MustRegister(RaceFieldSize)
		registry.MustRegister(WinningTimeSeconds)
		registry.MustRegister(SimulationDuration)

		// Allocation and projection metrics
		registry.MustRegister(AllocationsTotal)
		registry.MustRegister(HorsesExcludedTotal)
		registry.MustRegister(ProjectionRunsTotal)

		// Season metrics
		registry.MustRegister(WeeksAdvancedTotal)
		registry.MustRegister(RacesSkippedTotal)
		registry.MustRegister(InjuriesTotal)
		registry.MustRegister(RetirementsTotal)
		registry.MustRegister(PursePaidTotal)
		registry.MustRegister(SeasonYear)
		registry.MustRegister(SeasonWeek)
		registry.MustRegister(ActiveHorses)
		registry.MustRegister(WeekAdvanceDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
