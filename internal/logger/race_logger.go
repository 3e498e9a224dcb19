package logger

import (
	"github.com/sirupsen/logrus"
)

// RaceLogger provides dedicated logging for race simulation.
type RaceLogger struct {
	*logrus.Entry
}

// NewRaceLogger creates a new race logger.
func NewRaceLogger(baseLogger *logrus.Logger) *RaceLogger {
	return &RaceLogger{
		Entry: baseLogger.WithField("component", "race"),
	}
}

// LogRaceCompleted logs a finished simulation.
func (rl *RaceLogger) LogRaceCompleted(raceID string, distance, fieldSize int, winner string, winningTime, simSeconds float64) {
	rl.WithFields(logrus.Fields{
		"race_id":      raceID,
		"distance":     distance,
		"field_size":   fieldSize,
		"winner":       winner,
		"winning_time": winningTime,
		"sim_seconds":  simSeconds,
	}).Info("Race simulated")
}

// LogCutoffTripped logs a race stopped by the safety cutoff.
func (rl *RaceLogger) LogCutoffTripped(raceID string, cutoffSeconds float64, unfinished int) {
	rl.WithFields(logrus.Fields{
		"race_id":        raceID,
		"cutoff_seconds": cutoffSeconds,
		"unfinished":     unfinished,
	}).Warn("Race stopped by safety cutoff")
}

// LogUltimate logs an ultimate activation.
func (rl *RaceLogger) LogUltimate(raceID, horse string, distance float64) {
	rl.WithFields(logrus.Fields{
		"race_id":  raceID,
		"horse":    horse,
		"distance": distance,
	}).Debug("Ultimate activated")
}
