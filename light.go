package crossroad

import "strings"

// LightState is the signal a light is showing
type LightState int

const (
	// Red holds traffic; its end is decided by the controller
	Red LightState = iota
	// Green lets traffic through while its timer runs down
	Green
	// Yellow holds traffic that has not reached the line yet
	Yellow
)

func (s LightState) String() string {
	switch s {
	case Red:
		return "red"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	default:
		return "undefined"
	}
}

// Valid reports whether s is exactly one of red, green or yellow
func (s LightState) Valid() bool {
	return s == Red || s == Green || s == Yellow
}

// Active reports whether the light's timer is running
func (s LightState) Active() bool {
	return s == Green || s == Yellow
}

// MarshalText implements encoding.TextMarshaler
func (s LightState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *LightState) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "red":
		*s = Red
	case "green":
		*s = Green
	case "yellow":
		*s = Yellow
	default:
		return NewInvariantError(ErrCodeUndefinedLightState, "unknown light state "+string(text))
	}
	return nil
}

// TrafficLight is the signal for one road together with the vehicles held at it
type TrafficLight struct {
	road     Road
	state    LightState
	timer    int
	duration int
	queue    *VehicleQueue
}

func newTrafficLight(road Road) *TrafficLight {
	return &TrafficLight{
		road:  road,
		state: Red,
		queue: NewVehicleQueue(),
	}
}

// Road returns the road this light controls
func (l *TrafficLight) Road() Road { return l.road }

// State returns the current signal
func (l *TrafficLight) State() LightState { return l.state }

// Timer returns the ticks left in the current green or yellow phase
func (l *TrafficLight) Timer() int { return l.timer }

// Duration returns the green length used the next time this light is armed
func (l *TrafficLight) Duration() int { return l.duration }

// QueueLength returns how many vehicles are stopped at this light
func (l *TrafficLight) QueueLength() int { return l.queue.Len() }

// QueuedVehicles returns the stopped vehicles in arrival order
func (l *TrafficLight) QueuedVehicles() []VehicleID { return l.queue.IDs() }

// countdown decrements an active light's timer and applies the timer-driven
// transitions. Red lights are passive.
func (l *TrafficLight) countdown(yellowTicks int) (from, to LightState, changed bool) {
	if !l.state.Active() {
		return l.state, l.state, false
	}

	l.timer--
	if l.timer > 0 {
		return l.state, l.state, false
	}

	from = l.state
	if l.state == Green {
		l.state = Yellow
		l.timer = yellowTicks
	} else {
		l.state = Red
		l.timer = 0
	}
	return from, l.state, true
}

// arm promotes the light to green for its current duration
func (l *TrafficLight) arm() {
	l.state = Green
	l.timer = l.duration
}

// reset puts the light back in its start-of-run configuration
func (l *TrafficLight) reset(state LightState, duration int) {
	l.state = state
	l.duration = duration
	l.timer = 0
	if state == Green {
		l.timer = duration
	}
	l.queue.Clear()
}
