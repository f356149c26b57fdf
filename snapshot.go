package crossroad

import (
	"errors"
	"fmt"
)

// VehicleView is a read-only copy of a vehicle for renderers
type VehicleView struct {
	ID       VehicleID `json:"id"`
	Road     Road      `json:"road"`
	Position Point     `json:"position"`
	Speed    float64   `json:"speed"`
	Stopped  bool      `json:"stopped"`
	Hue      float64   `json:"hue"`
	Color    string    `json:"color"`
}

// LightView is a read-only copy of a traffic light for renderers
type LightView struct {
	Road        Road        `json:"road"`
	State       LightState  `json:"state"`
	Timer       int         `json:"timer"`
	Duration    int         `json:"duration"`
	QueueLength int         `json:"queueLength"`
	Queue       []VehicleID `json:"queue"`
	Position    Point       `json:"position"`
}

// Snapshot is the complete state of the simulation after a tick.
// It shares no memory with the live simulation.
type Snapshot struct {
	RunID       string        `json:"runId"`
	Tick        uint64        `json:"tick"`
	Running     bool          `json:"running"`
	Paused      bool          `json:"paused"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	ActiveGroup SignalGroup   `json:"activeGroup"`
	Vehicles    []VehicleView `json:"vehicles"`
	Lights      []LightView   `json:"lights"`
}

// Light returns the view for one road
func (s Snapshot) Light(r Road) (LightView, bool) {
	for _, l := range s.Lights {
		if l.Road == r {
			return l, true
		}
	}
	return LightView{}, false
}

// QueueLengths returns the number of stopped vehicles per road
func (s Snapshot) QueueLengths() map[Road]int {
	lengths := make(map[Road]int, len(s.Lights))
	for _, l := range s.Lights {
		lengths[l.Road] = l.QueueLength
	}
	return lengths
}

// Validate checks the snapshot against the simulation invariants and returns
// every violation found, joined
func (s Snapshot) Validate() error {
	var errs []error

	for _, l := range s.Lights {
		if !l.State.Valid() {
			errs = append(errs, NewInvariantError(ErrCodeUndefinedLightState,
				fmt.Sprintf("light state %d", l.State)).ForRoad(l.Road))
		}
		if l.Timer < 0 {
			errs = append(errs, NewInvariantError(ErrCodeInvalidTimer,
				fmt.Sprintf("timer is %d", l.Timer)).ForRoad(l.Road))
		}
		if l.State == Red && l.Timer != 0 {
			errs = append(errs, NewInvariantError(ErrCodeInvalidTimer,
				fmt.Sprintf("red light carries timer %d", l.Timer)).ForRoad(l.Road))
		}
	}

	errs = append(errs, s.validateGroups()...)
	errs = append(errs, s.validateQueues()...)

	return errors.Join(errs...)
}

func (s Snapshot) validateGroups() []error {
	var errs []error
	for _, r := range s.ActiveGroup.Other() {
		if l, ok := s.Light(r); ok && l.State != Red {
			errs = append(errs, NewInvariantError(ErrCodeSignalConflict,
				fmt.Sprintf("idle group %s shows %s", s.ActiveGroup.Other(), l.State)).ForRoad(r))
		}
	}

	lit := false
	for _, r := range s.ActiveGroup {
		if l, ok := s.Light(r); ok && l.State != Red {
			lit = true
		}
	}
	if !lit && len(s.Lights) > 0 {
		errs = append(errs, NewInvariantError(ErrCodeSignalConflict,
			fmt.Sprintf("active group %s is all red", s.ActiveGroup)))
	}
	return errs
}

func (s Snapshot) validateQueues() []error {
	var errs []error

	vehicles := make(map[VehicleID]VehicleView, len(s.Vehicles))
	for _, v := range s.Vehicles {
		vehicles[v.ID] = v
	}

	memberships := make(map[VehicleID]int)
	for _, l := range s.Lights {
		if l.QueueLength != len(l.Queue) {
			errs = append(errs, NewInvariantError(ErrCodeQueueMismatch,
				fmt.Sprintf("queue length %d lists %d vehicles", l.QueueLength, len(l.Queue))).ForRoad(l.Road))
		}
		for _, id := range l.Queue {
			memberships[id]++
			v, ok := vehicles[id]
			switch {
			case !ok:
				errs = append(errs, NewInvariantError(ErrCodeDanglingQueueEntry,
					"queued vehicle no longer exists").ForRoad(l.Road).ForVehicle(id))
			case v.Road != l.Road:
				errs = append(errs, NewInvariantError(ErrCodeQueueMismatch,
					fmt.Sprintf("vehicle on road %s queued at %s", v.Road, l.Road)).ForRoad(l.Road).ForVehicle(id))
			}
		}
	}

	for _, v := range s.Vehicles {
		count := memberships[v.ID]
		if v.Stopped && count != 1 {
			errs = append(errs, NewInvariantError(ErrCodeQueueMismatch,
				fmt.Sprintf("stopped vehicle is in %d queues", count)).ForRoad(v.Road).ForVehicle(v.ID))
		}
		if !v.Stopped && count != 0 {
			errs = append(errs, NewInvariantError(ErrCodeQueueMismatch,
				"moving vehicle still occupies a queue slot").ForRoad(v.Road).ForVehicle(v.ID))
		}
	}
	return errs
}
