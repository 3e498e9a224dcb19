package logger

import (
	"github.com/sirupsen/logrus"
)

// SeasonLogger provides dedicated logging for season progression.
type SeasonLogger struct {
	*logrus.Entry
}

// NewSeasonLogger creates a new season logger.
func NewSeasonLogger(baseLogger *logrus.Logger) *SeasonLogger {
	return &SeasonLogger{
		Entry: baseLogger.WithField("component", "season"),
	}
}

// LogWeekAdvanced logs the end of a simulated week.
func (sl *SeasonLogger) LogWeekAdvanced(year, week, racesRun, racesSkipped, injuries, retirements int) {
	sl.WithFields(logrus.Fields{
		"year":          year,
		"week":          week,
		"races_run":     racesRun,
		"races_skipped": racesSkipped,
		"injuries":      injuries,
		"retirements":   retirements,
	}).Info("Season week advanced")
}

// LogAllocation logs the field built for a race.
func (sl *SeasonLogger) LogAllocation(raceID string, fieldSize, excluded int) {
	sl.WithFields(logrus.Fields{
		"race_id":    raceID,
		"field_size": fieldSize,
		"excluded":   excluded,
	}).Debug("Field allocated")
}

// LogRaceSkipped logs a race without enough entrants.
func (sl *SeasonLogger) LogRaceSkipped(raceID string, fieldSize int) {
	sl.WithFields(logrus.Fields{
		"race_id":    raceID,
		"field_size": fieldSize,
	}).Info("Race skipped, field too small")
}

// LogInjury logs a post-race injury.
func (sl *SeasonLogger) LogInjury(horseID, horse string, weeks int) {
	sl.WithFields(logrus.Fields{
		"horse_id": horseID,
		"horse":    horse,
		"weeks":    weeks,
	}).Info("Horse injured")
}

// LogRetirement logs a retirement at year end.
func (sl *SeasonLogger) LogRetirement(horseID, horse string, age int, reason string) {
	sl.WithFields(logrus.Fields{
		"horse_id": horseID,
		"horse":    horse,
		"age":      age,
		"reason":   reason,
	}).Info("Horse retired")
}
