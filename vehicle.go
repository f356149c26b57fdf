package crossroad

import "fmt"

// VehicleID identifies a vehicle; IDs are assigned in spawn order and never reused
type VehicleID uint64

// Motion is the outcome of a single vehicle update
type Motion int

const (
	// Moving means the vehicle advanced along its road
	Moving Motion = iota
	// Queued means the vehicle latched at the stop line this tick
	Queued
	// Waiting means the vehicle is still held at the stop line
	Waiting
	// Released means the vehicle left its queue and advanced this tick
	Released
)

func (m Motion) String() string {
	switch m {
	case Moving:
		return "moving"
	case Queued:
		return "queued"
	case Waiting:
		return "waiting"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Vehicle travels at constant speed along a single road and stops
// instantaneously at a red or yellow light
type Vehicle struct {
	id       VehicleID
	road     Road
	position Point
	speed    float64
	hue      float64

	stopped bool
	// released latches once the vehicle leaves a queue; it is then committed
	// to crossing and never stops again
	released bool

	spawnedAt uint64
	queuedAt  uint64
}

func newVehicle(id VehicleID, geo RoadGeometry, speed, hue float64, tick uint64) *Vehicle {
	return &Vehicle{
		id:        id,
		road:      geo.Road,
		position:  geo.Entry,
		speed:     speed,
		hue:       hue,
		spawnedAt: tick,
	}
}

// ID returns the vehicle's identifier
func (v *Vehicle) ID() VehicleID { return v.id }

// Road returns the road the vehicle travels on
func (v *Vehicle) Road() Road { return v.road }

// Position returns the current canvas position
func (v *Vehicle) Position() Point { return v.position }

// Speed returns the distance covered per tick; zero while stopped
func (v *Vehicle) Speed() float64 { return v.speed }

// Stopped reports whether the vehicle is held in its light's queue
func (v *Vehicle) Stopped() bool { return v.stopped }

// Color returns the CSS colour a renderer should draw the vehicle with
func (v *Vehicle) Color() string {
	return fmt.Sprintf("hsl(%.0f, 70%%, 50%%)", v.hue)
}

// update advances the vehicle by one tick against its road's light.
// roll supplies a fresh cruising speed when the vehicle pulls away.
func (v *Vehicle) update(geo RoadGeometry, light *TrafficLight, proximity float64, roll func() float64) Motion {
	distance := geo.DistanceToStopLine(v.position)
	held := light.state == Red || light.state == Yellow
	atStopLine := distance >= 0 && distance < proximity

	if held && atStopLine && !v.stopped && !v.released {
		v.stop(light)
		return Queued
	}

	if !v.stopped {
		v.position = geo.Advance(v.position, v.speed)
		return Moving
	}

	// Followers are not modelled: any queued vehicle that finds itself away
	// from the line is free to go, even with the vehicle ahead still waiting.
	if light.state == Green || distance > proximity {
		v.resume(light, roll())
		v.position = geo.Advance(v.position, v.speed)
		return Released
	}

	return Waiting
}

// stop and resume are the only places that touch queue membership, and they
// always flip the stopped flag in the same step.
func (v *Vehicle) stop(light *TrafficLight) {
	light.queue.Push(v.id)
	v.stopped = true
	v.speed = 0
}

func (v *Vehicle) resume(light *TrafficLight, speed float64) {
	light.queue.Remove(v.id)
	v.stopped = false
	v.released = true
	v.speed = speed
}

// detach drops the vehicle from its queue before it is destroyed
func (v *Vehicle) detach(light *TrafficLight) {
	if v.stopped {
		light.queue.Remove(v.id)
		v.stopped = false
	}
}

func (v *Vehicle) view() VehicleView {
	return VehicleView{
		ID:       v.id,
		Road:     v.road,
		Position: v.position,
		Speed:    v.speed,
		Stopped:  v.stopped,
		Hue:      v.hue,
		Color:    v.Color(),
	}
}
