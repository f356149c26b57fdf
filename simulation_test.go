package crossroad

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulation_SpawnOnWestLatchesAtRedLight(t *testing.T) {
	sim := CreateQuietSimulation(t, func(c *Config) { c.BaseGreenTicks = 1000 })
	activateNorthSouth(sim.controller)

	id, err := sim.Spawn(West)
	require.NoError(t, err)

	v, ok := sim.Vehicle(id)
	require.True(t, ok)
	assert.Equal(t, Point{X: 0, Y: 412.5}, v.Position)

	geo := sim.Layout().Geometry(West)
	lastX := v.Position.X
	for i := 0; i < 400; i++ {
		sim.Tick()
		require.NoError(t, sim.CheckInvariants())

		v, ok = sim.Vehicle(id)
		require.True(t, ok)
		if v.Stopped {
			break
		}
		require.Greater(t, v.Position.X, lastX, "westbound traffic moves toward increasing x")
		lastX = v.Position.X
	}

	require.True(t, v.Stopped)
	d := geo.DistanceToStopLine(v.Position)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.Less(t, d, 2.0)
	assert.Equal(t, []VehicleID{id}, sim.controller.Light(West).QueuedVehicles())
}

func TestSimulation_SpawnUnknownRoad(t *testing.T) {
	sim := CreateQuietSimulation(t)

	_, err := sim.Spawn(Road(12))
	assert.True(t, IsRoadError(err))
}

func TestSimulation_StopResetsEverything(t *testing.T) {
	sim, err := NewBuilder().WithSeed(42).Build()
	require.NoError(t, err)
	fresh, err := NewBuilder().WithSeed(42).Build()
	require.NoError(t, err)

	require.True(t, sim.Start())
	for i := 0; i < 1500; i++ {
		sim.Advance()
	}
	busy := sim.Snapshot()
	require.NotEmpty(t, busy.Vehicles)

	sim.Stop()

	snap := sim.Snapshot()
	assert.False(t, snap.Running)
	assert.Empty(t, snap.Vehicles)
	assert.Zero(t, snap.Tick)
	for _, r := range Roads() {
		assert.Zero(t, snap.QueueLengths()[r])
	}

	require.True(t, sim.Start())
	restarted := sim.Snapshot()
	assert.NotEmpty(t, restarted.RunID)
	assert.NotEqual(t, busy.RunID, restarted.RunID)
	assert.Equal(t, fresh.Snapshot().Lights, restarted.Lights)
	assert.Equal(t, EastWest, restarted.ActiveGroup)
}

func TestSimulation_StopIsSafeInAnyState(t *testing.T) {
	sim := CreateQuietSimulation(t)

	sim.Stop()
	assert.False(t, sim.Running())

	sim.Start()
	sim.TogglePause()
	sim.Stop()
	assert.False(t, sim.Running())
	assert.False(t, sim.Paused())
}

func TestSimulation_StartIsNoOpWhenRunning(t *testing.T) {
	observer := NewTestObserver()
	sim, err := NewBuilder().WithSeed(3).WithObserver(observer).Build()
	require.NoError(t, err)

	assert.True(t, sim.Start())
	runID := sim.Snapshot().RunID
	assert.False(t, sim.Start())
	assert.Equal(t, runID, sim.Snapshot().RunID)
	assert.Len(t, observer.Started, 1)
}

func TestSimulation_PauseGate(t *testing.T) {
	sim := CreateQuietSimulation(t)

	assert.False(t, sim.Advance(), "not started")

	sim.Start()
	require.True(t, sim.Advance())
	assert.Equal(t, uint64(1), sim.Snapshot().Tick)

	assert.True(t, sim.TogglePause())
	before := sim.Snapshot()
	assert.False(t, sim.Advance())
	after := sim.Snapshot()
	assert.Equal(t, before.Tick, after.Tick)
	assert.Equal(t, before.Lights, after.Lights)

	assert.False(t, sim.TogglePause())
	assert.True(t, sim.Advance())
	assert.Equal(t, uint64(2), sim.Snapshot().Tick)
}

func TestSimulation_SpawnInterval(t *testing.T) {
	observer := NewTestObserver()
	sim, err := NewBuilder().WithSeed(9).WithSpawnInterval(6).WithObserver(observer).Build()
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		sim.Tick()
	}
	assert.Empty(t, observer.Spawned)

	sim.Tick()
	require.Len(t, observer.Spawned, 1)

	for i := 0; i < 7; i++ {
		sim.Tick()
	}
	require.Len(t, observer.Spawned, 2)
	assert.Equal(t, VehicleID(1), observer.Spawned[0].ID)
	assert.Equal(t, VehicleID(2), observer.Spawned[1].ID)
}

func TestSimulation_PruneRemovesExitedVehicles(t *testing.T) {
	observer := NewTestObserver()
	sim := CreateQuietSimulation(t)
	sim.AddObserver(observer)

	id, err := sim.Spawn(East)
	require.NoError(t, err)
	sim.vehicles[0].position = Point{X: -9.5, Y: 387.5}

	sim.Tick()

	_, ok := sim.Vehicle(id)
	assert.False(t, ok)
	require.Len(t, observer.Exited, 1)
	assert.Equal(t, id, observer.Exited[0].ID)
	assert.NoError(t, sim.CheckInvariants())
}

func TestSimulation_PruneDetachesQueuedVehicle(t *testing.T) {
	sim := CreateQuietSimulation(t)
	_, err := sim.Spawn(North)
	require.NoError(t, err)
	v := sim.vehicles[0]
	v.stop(sim.controller.Light(North))
	// push it off the canvas while it still holds its queue slot
	v.position.Y = 900

	sim.Tick()

	assert.Empty(t, sim.Snapshot().Vehicles)
	assert.Zero(t, sim.controller.Light(North).QueueLength())
	assert.NoError(t, sim.CheckInvariants())
}

func TestSimulation_LongRunHoldsInvariants(t *testing.T) {
	observer := NewTestObserver()
	sim, err := NewBuilder().WithSeed(7).WithInvariantChecks().WithObserver(observer).Build()
	require.NoError(t, err)
	sim.Start()

	for i := 0; i < 5000; i++ {
		require.True(t, sim.Advance())
		require.NoError(t, sim.CheckInvariants(), "tick %d", i+1)
	}

	seen := map[VehicleID]int{}
	for _, v := range observer.Queued {
		seen[v.ID]++
		require.Equal(t, 1, seen[v.ID], "vehicle %d queued twice", v.ID)
	}
	assert.NotEmpty(t, observer.Queued)
	assert.NotEmpty(t, observer.Released)
	assert.NotEmpty(t, observer.Exited)
	assert.Empty(t, observer.Errors)
	assert.Len(t, observer.Ticks, 5000)
}

func TestSimulation_InvariantChecksReportToObservers(t *testing.T) {
	tests := []struct {
		name   string
		checks bool
		errors int
	}{
		{"checks on", true, 1},
		{"checks off", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := NewTestObserver()
			sim := CreateQuietSimulation(t, func(c *Config) { c.CheckInvariants = tt.checks })
			sim.AddObserver(observer)

			// a queue slot nobody owns
			sim.controller.Light(North).queue.Push(999)
			sim.Tick()

			require.Len(t, observer.Errors, tt.errors)
			if tt.errors == 0 {
				return
			}
			err := observer.Errors[0]
			assert.True(t, IsInvariantError(err))
			assert.Equal(t, ErrCodeDanglingQueueEntry, GetErrorCode(err))
			assert.Contains(t, err.Error(), "tick 1: ")
			assert.Len(t, observer.Ticks, 1)
		})
	}
}

func TestSimulation_SnapshotIsACopy(t *testing.T) {
	sim := CreateQuietSimulation(t)
	_, err := sim.Spawn(South)
	require.NoError(t, err)

	snap := sim.Snapshot()
	snap.Vehicles[0].Position.Y = -100
	snap.Lights[0].State = Yellow

	fresh := sim.Snapshot()
	assert.Equal(t, 800.0, fresh.Vehicles[0].Position.Y)
	assert.Equal(t, Red, fresh.Lights[0].State)
}

func TestSimulation_Run(t *testing.T) {
	sim := CreateQuietSimulation(t, func(c *Config) { c.TickRate = time.Millisecond })
	sim.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := sim.Run(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, sim.Snapshot().Tick, uint64(0))
}
