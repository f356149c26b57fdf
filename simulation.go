package crossroad

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Simulation is the clock of the intersection. It owns the live vehicles and
// the controller, and advances them one tick at a time:
// spawn, update vehicles, update lights, prune.
//
// A tick runs under the simulation lock, so Snapshot callers on other
// goroutines never observe a partially applied tick.
type Simulation struct {
	mu sync.Mutex

	cfg        Config
	layout     Layout
	controller *Controller
	observers  *ObserverManager
	rng        *rand.Rand

	vehicles  []*Vehicle
	nextID    VehicleID
	tick      uint64
	lastSpawn uint64

	running bool
	paused  bool
	runID   string
}

// NewSimulation validates cfg and creates a stopped simulation in its
// start-of-run configuration
func NewSimulation(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	observers := NewObserverManager()
	return &Simulation{
		cfg:        cfg,
		layout:     NewLayout(cfg),
		controller: NewController(cfg, observers),
		observers:  observers,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// AddObserver registers an observer for signal and vehicle events
func (s *Simulation) AddObserver(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers.AddObserver(observer)
}

// RemoveObserver unregisters an observer
func (s *Simulation) RemoveObserver(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers.RemoveObserver(observer)
}

// Config returns the configuration the simulation was built with
func (s *Simulation) Config() Config { return s.cfg }

// Layout returns the road geometry
func (s *Simulation) Layout() Layout { return s.layout }

// Start begins ticking. It returns false and does nothing if already running.
func (s *Simulation) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	s.running = true
	s.paused = false
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	s.observers.NotifySimulationStarted(s.runID)
	return true
}

// TogglePause flips the pause gate and returns the new paused state.
// Simulation state is left untouched.
func (s *Simulation) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paused = !s.paused
	s.observers.NotifySimulationPaused(s.paused)
	return s.paused
}

// Stop halts ticking, removes every vehicle, empties every queue and puts the
// lights back to West/East green, North/South red. It is safe in any state.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := s.runID
	s.running = false
	s.paused = false
	s.runID = ""

	s.vehicles = nil
	s.tick = 0
	s.lastSpawn = 0
	s.controller.Reset()

	s.observers.NotifySimulationStopped(runID)
}

// Running reports whether the simulation has been started and not stopped
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Paused reports whether the pause gate is closed
func (s *Simulation) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Advance runs one tick if the simulation is running and not paused
func (s *Simulation) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.paused {
		return false
	}
	s.step()
	return true
}

// Tick runs one tick regardless of the lifecycle gates
func (s *Simulation) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
}

// Run drives Advance from a ticker at the configured tick rate until ctx ends
func (s *Simulation) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Advance()
		}
	}
}

// Spawn places a new vehicle at the entry point of road and returns its ID
func (s *Simulation) Spawn(road Road) (VehicleID, error) {
	if !road.Valid() {
		return 0, NewUnknownRoadError(road.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawn(road).id, nil
}

// Vehicle returns a view of a live vehicle
func (s *Simulation) Vehicle(id VehicleID) (VehicleView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := lo.Find(s.vehicles, func(v *Vehicle) bool { return v.id == id })
	if !ok {
		return VehicleView{}, false
	}
	return v.view(), true
}

// Snapshot returns a deep copy of the current state
func (s *Simulation) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// CheckInvariants validates the current state
func (s *Simulation) CheckInvariants() error {
	return s.Snapshot().Validate()
}

func (s *Simulation) step() {
	s.tick++

	if s.tick-s.lastSpawn > uint64(s.cfg.SpawnIntervalTicks) {
		s.spawn(allRoads[s.rng.Intn(len(allRoads))])
		s.lastSpawn = s.tick
	}

	for _, v := range s.vehicles {
		light := s.controller.lights[v.road]
		switch v.update(s.layout.Geometry(v.road), light, s.cfg.StopProximity, s.rollSpeed) {
		case Queued:
			v.queuedAt = s.tick
			s.observers.NotifyVehicleQueued(v.view(), light.queue.Len(), s.tick)
		case Released:
			s.observers.NotifyVehicleReleased(v.view(), s.tick-v.queuedAt, s.tick)
		}
	}

	s.controller.Update(s.tick)
	s.prune()

	if s.observers.Len() == 0 {
		return
	}
	snap := s.snapshot()
	if s.cfg.CheckInvariants {
		if err := snap.Validate(); err != nil {
			s.observers.NotifyError(fmt.Errorf("tick %d: %w", s.tick, err))
		}
	}
	s.observers.NotifyTick(snap)
}

func (s *Simulation) spawn(road Road) *Vehicle {
	s.nextID++
	v := newVehicle(s.nextID, s.layout.Geometry(road), s.rollSpeed(), s.rng.Float64()*360, s.tick)
	s.vehicles = append(s.vehicles, v)
	s.observers.NotifyVehicleSpawned(v.view(), s.tick)
	return v
}

// prune destroys vehicles that left the canvas, detaching them from their
// queue first
func (s *Simulation) prune() {
	inside := func(v *Vehicle, _ int) bool {
		return s.layout.Contains(v.position, s.cfg.ExitMargin)
	}

	exited := lo.Reject(s.vehicles, inside)
	if len(exited) == 0 {
		return
	}
	s.vehicles = lo.Filter(s.vehicles, inside)

	for _, v := range exited {
		v.detach(s.controller.lights[v.road])
		s.observers.NotifyVehicleExited(v.view(), s.tick)
	}
}

func (s *Simulation) rollSpeed() float64 {
	return s.cfg.MinSpeed + s.rng.Float64()*(s.cfg.MaxSpeed-s.cfg.MinSpeed)
}

func (s *Simulation) snapshot() Snapshot {
	return Snapshot{
		RunID:       s.runID,
		Tick:        s.tick,
		Running:     s.running,
		Paused:      s.paused,
		Width:       s.layout.Width,
		Height:      s.layout.Height,
		ActiveGroup: s.controller.active,
		Vehicles: lo.Map(s.vehicles, func(v *Vehicle, _ int) VehicleView {
			return v.view()
		}),
		Lights: s.controller.views(s.layout),
	}
}
