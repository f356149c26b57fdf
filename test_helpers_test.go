package crossroad

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestObserver is a mock observer for testing that captures all observer events
type TestObserver struct {
	mutex       sync.Mutex
	Transitions []Transition
	Groups      []SignalGroup
	Spawned     []VehicleView
	Queued      []VehicleView
	Released    []VehicleView
	Exited      []VehicleView
	Ticks       []uint64
	Started     []string
	Paused      []bool
	Stopped     []string
	Errors      []error
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnLightTransition(t Transition) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, t)
}

func (o *TestObserver) OnGroupActivated(group SignalGroup, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Groups = append(o.Groups, group)
}

func (o *TestObserver) OnVehicleSpawned(v VehicleView, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Spawned = append(o.Spawned, v)
}

func (o *TestObserver) OnVehicleQueued(v VehicleView, position int, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Queued = append(o.Queued, v)
}

func (o *TestObserver) OnVehicleReleased(v VehicleView, waited uint64, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Released = append(o.Released, v)
}

func (o *TestObserver) OnVehicleExited(v VehicleView, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Exited = append(o.Exited, v)
}

func (o *TestObserver) OnTick(snap Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Ticks = append(o.Ticks, snap.Tick)
}

func (o *TestObserver) OnSimulationStarted(runID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, runID)
}

func (o *TestObserver) OnSimulationPaused(paused bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Paused = append(o.Paused, paused)
}

func (o *TestObserver) OnSimulationStopped(runID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Stopped = append(o.Stopped, runID)
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

// quietConfig disables random spawning so tests control every vehicle
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.SpawnIntervalTicks = 1 << 30
	return cfg
}

// CreateQuietSimulation builds a seeded simulation that never spawns on its own
func CreateQuietSimulation(t *testing.T, mutate ...func(*Config)) *Simulation {
	t.Helper()
	cfg := quietConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	sim, err := NewSimulation(cfg)
	require.NoError(t, err)
	return sim
}

// activateNorthSouth hands the green phase to North/South directly
func activateNorthSouth(c *Controller) {
	c.active = NorthSouth
	for _, r := range allRoads {
		state := Red
		if NorthSouth.Contains(r) {
			state = Green
		}
		c.lights[r].reset(state, c.baseGreen)
	}
}

// AssertLights checks the state of every light in N, S, W, E order
func AssertLights(t *testing.T, c *Controller, want ...LightState) {
	t.Helper()
	require.Len(t, want, len(allRoads))
	for i, r := range allRoads {
		require.Equalf(t, want[i], c.Light(r).State(), "light %s", r)
	}
}
