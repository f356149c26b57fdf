// Package observers provides observers for monitoring an intersection simulation
package observers

import (
	"github.com/sirupsen/logrus"

	"github.com/anggasct/crossroad"
)

// LoggingObserver writes simulation events to a logrus logger.
// Signal changes and lifecycle commands log at info, vehicle movements at
// debug and invariant violations at error.
type LoggingObserver struct {
	crossroad.BaseObserver
	logger logrus.FieldLogger
}

// NewLoggingObserver creates a logging observer on the given logger
func NewLoggingObserver(logger logrus.FieldLogger) *LoggingObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggingObserver{logger: logger}
}

// NewDefaultLoggingObserver logs through the logrus standard logger
func NewDefaultLoggingObserver() *LoggingObserver {
	return NewLoggingObserver(nil)
}

// OnLightTransition logs a light changing state
func (o *LoggingObserver) OnLightTransition(t crossroad.Transition) {
	o.logger.WithFields(logrus.Fields{
		"road":    t.Road.String(),
		"from":    t.From.String(),
		"to":      t.To.String(),
		"trigger": string(t.Trigger),
		"tick":    t.Tick,
	}).Info("light transition")
}

// OnGroupActivated logs a signal group taking the green phase
func (o *LoggingObserver) OnGroupActivated(group crossroad.SignalGroup, tick uint64) {
	o.logger.WithFields(logrus.Fields{
		"group": group.String(),
		"tick":  tick,
	}).Info("signal group armed")
}

// OnVehicleQueued logs a vehicle stopping at its light
func (o *LoggingObserver) OnVehicleQueued(v crossroad.VehicleView, position int, tick uint64) {
	o.logger.WithFields(logrus.Fields{
		"vehicle":  v.ID,
		"road":     v.Road.String(),
		"position": position,
		"tick":     tick,
	}).Debug("vehicle queued")
}

// OnVehicleReleased logs a vehicle pulling away
func (o *LoggingObserver) OnVehicleReleased(v crossroad.VehicleView, waited uint64, tick uint64) {
	o.logger.WithFields(logrus.Fields{
		"vehicle": v.ID,
		"road":    v.Road.String(),
		"waited":  waited,
		"tick":    tick,
	}).Debug("vehicle released")
}

// OnSimulationStarted logs a start command
func (o *LoggingObserver) OnSimulationStarted(runID string) {
	o.logger.WithField("run", runID).Info("simulation started")
}

// OnSimulationPaused logs the pause gate toggling
func (o *LoggingObserver) OnSimulationPaused(paused bool) {
	if paused {
		o.logger.Info("simulation paused")
		return
	}
	o.logger.Info("simulation resumed")
}

// OnSimulationStopped logs a stop command
func (o *LoggingObserver) OnSimulationStopped(runID string) {
	o.logger.WithField("run", runID).Info("simulation stopped")
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.logger.WithError(err).Error("simulation error")
}
