package crossroad

// Observer receives signal changes from the intersection.
// Observers run inside the tick with the simulation locked; they get value
// copies and must not call back into the Simulation.
type Observer interface {
	// OnLightTransition is called for every light state change
	OnLightTransition(t Transition)

	// OnGroupActivated is called after a signal group has been armed green
	OnGroupActivated(group SignalGroup, tick uint64)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnVehicleSpawned is called when a vehicle enters at its road's edge
	OnVehicleSpawned(v VehicleView, tick uint64)

	// OnVehicleQueued is called when a vehicle latches at a stop line
	OnVehicleQueued(v VehicleView, position int, tick uint64)

	// OnVehicleReleased is called when a queued vehicle pulls away
	OnVehicleReleased(v VehicleView, waited uint64, tick uint64)

	// OnVehicleExited is called when a vehicle leaves the visible area
	OnVehicleExited(v VehicleView, tick uint64)

	// OnTick is called once the whole tick pipeline has completed
	OnTick(snap Snapshot)

	// OnSimulationStarted is called when ticking begins
	OnSimulationStarted(runID string)

	// OnSimulationPaused is called when the pause gate toggles
	OnSimulationPaused(paused bool)

	// OnSimulationStopped is called after a stop has cleared the simulation
	OnSimulationStopped(runID string)

	// OnError is called when an error occurs during processing
	OnError(err error)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnLightTransition implements Observer
func (o *BaseObserver) OnLightTransition(t Transition) {}

// OnGroupActivated implements Observer
func (o *BaseObserver) OnGroupActivated(group SignalGroup, tick uint64) {}

// OnVehicleSpawned implements ExtendedObserver
func (o *BaseObserver) OnVehicleSpawned(v VehicleView, tick uint64) {}

// OnVehicleQueued implements ExtendedObserver
func (o *BaseObserver) OnVehicleQueued(v VehicleView, position int, tick uint64) {}

// OnVehicleReleased implements ExtendedObserver
func (o *BaseObserver) OnVehicleReleased(v VehicleView, waited uint64, tick uint64) {}

// OnVehicleExited implements ExtendedObserver
func (o *BaseObserver) OnVehicleExited(v VehicleView, tick uint64) {}

// OnTick implements ExtendedObserver
func (o *BaseObserver) OnTick(snap Snapshot) {}

// OnSimulationStarted implements ExtendedObserver
func (o *BaseObserver) OnSimulationStarted(runID string) {}

// OnSimulationPaused implements ExtendedObserver
func (o *BaseObserver) OnSimulationPaused(paused bool) {}

// OnSimulationStopped implements ExtendedObserver
func (o *BaseObserver) OnSimulationStopped(runID string) {}

// OnError implements ExtendedObserver
func (o *BaseObserver) OnError(err error) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	return len(om.observers)
}

// notify calls fn for every observer, converting a panic into an OnError
// report so one faulty observer cannot stop the tick
func (om *ObserverManager) notify(hook string, fn func(Observer)) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if extObs, ok := observer.(ExtendedObserver); ok {
						func() {
							defer func() { recover() }()
							extObs.OnError(NewObserverPanicError(hook, r))
						}()
					}
				}
			}()
			fn(observer)
		}()
	}
}

// notifyExtended is notify restricted to ExtendedObservers
func (om *ObserverManager) notifyExtended(hook string, fn func(ExtendedObserver)) {
	om.notify(hook, func(o Observer) {
		if extObs, ok := o.(ExtendedObserver); ok {
			fn(extObs)
		}
	})
}

// NotifyLightTransition notifies all observers of a light state change
func (om *ObserverManager) NotifyLightTransition(t Transition) {
	om.notify("OnLightTransition", func(o Observer) { o.OnLightTransition(t) })
}

// NotifyGroupActivated notifies all observers that a group was armed
func (om *ObserverManager) NotifyGroupActivated(group SignalGroup, tick uint64) {
	om.notify("OnGroupActivated", func(o Observer) { o.OnGroupActivated(group, tick) })
}

// NotifyVehicleSpawned notifies all observers of a new vehicle
func (om *ObserverManager) NotifyVehicleSpawned(v VehicleView, tick uint64) {
	om.notifyExtended("OnVehicleSpawned", func(o ExtendedObserver) { o.OnVehicleSpawned(v, tick) })
}

// NotifyVehicleQueued notifies all observers that a vehicle stopped
func (om *ObserverManager) NotifyVehicleQueued(v VehicleView, position int, tick uint64) {
	om.notifyExtended("OnVehicleQueued", func(o ExtendedObserver) { o.OnVehicleQueued(v, position, tick) })
}

// NotifyVehicleReleased notifies all observers that a vehicle pulled away
func (om *ObserverManager) NotifyVehicleReleased(v VehicleView, waited, tick uint64) {
	om.notifyExtended("OnVehicleReleased", func(o ExtendedObserver) { o.OnVehicleReleased(v, waited, tick) })
}

// NotifyVehicleExited notifies all observers that a vehicle left the canvas
func (om *ObserverManager) NotifyVehicleExited(v VehicleView, tick uint64) {
	om.notifyExtended("OnVehicleExited", func(o ExtendedObserver) { o.OnVehicleExited(v, tick) })
}

// NotifyTick notifies all observers that a tick completed
func (om *ObserverManager) NotifyTick(snap Snapshot) {
	om.notifyExtended("OnTick", func(o ExtendedObserver) { o.OnTick(snap) })
}

// NotifySimulationStarted notifies all observers that ticking began
func (om *ObserverManager) NotifySimulationStarted(runID string) {
	om.notifyExtended("OnSimulationStarted", func(o ExtendedObserver) { o.OnSimulationStarted(runID) })
}

// NotifySimulationPaused notifies all observers of a pause toggle
func (om *ObserverManager) NotifySimulationPaused(paused bool) {
	om.notifyExtended("OnSimulationPaused", func(o ExtendedObserver) { o.OnSimulationPaused(paused) })
}

// NotifySimulationStopped notifies all observers of a stop
func (om *ObserverManager) NotifySimulationStopped(runID string) {
	om.notifyExtended("OnSimulationStopped", func(o ExtendedObserver) { o.OnSimulationStopped(runID) })
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(err error) {
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { recover() }()
				extObs.OnError(err)
			}()
		}
	}
}
