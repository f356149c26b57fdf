package observers_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/crossroad"
	"github.com/anggasct/crossroad/pkg/observers"
)

func runSimulation(t *testing.T, ticks int, obs ...crossroad.Observer) *crossroad.Simulation {
	t.Helper()
	b := crossroad.NewBuilder().WithSeed(21)
	for _, o := range obs {
		b.WithObserver(o)
	}
	sim, err := b.Build()
	require.NoError(t, err)

	sim.Start()
	for i := 0; i < ticks; i++ {
		sim.Advance()
	}
	return sim
}

func TestLoggingObserver(t *testing.T) {
	t.Run("Light transition fields", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		obs := observers.NewLoggingObserver(logger)

		obs.OnLightTransition(crossroad.Transition{
			Road: crossroad.West, From: crossroad.Green, To: crossroad.Yellow,
			Trigger: crossroad.TriggerTimerExpired, Tick: 200,
		})

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, "light transition", entry.Message)
		assert.Equal(t, "W", entry.Data["road"])
		assert.Equal(t, "yellow", entry.Data["to"])
		assert.Equal(t, uint64(200), entry.Data["tick"])
	})

	t.Run("Vehicle events only at debug", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		obs := observers.NewLoggingObserver(logger)

		obs.OnVehicleQueued(crossroad.VehicleView{ID: 4, Road: crossroad.North}, 1, 30)
		assert.Empty(t, hook.AllEntries())

		logger.SetLevel(logrus.DebugLevel)
		obs.OnVehicleQueued(crossroad.VehicleView{ID: 4, Road: crossroad.North}, 1, 30)
		require.Len(t, hook.AllEntries(), 1)
		assert.Equal(t, "vehicle queued", hook.LastEntry().Message)
	})

	t.Run("Errors", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		obs := observers.NewLoggingObserver(logger)

		obs.OnError(crossroad.NewInvariantError(crossroad.ErrCodeSignalConflict, "both lit"))

		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
		assert.Contains(t, hook.LastEntry().Data[logrus.ErrorKey].(error).Error(), "both lit")
	})

	t.Run("Wired into a simulation", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		runSimulation(t, 300, observers.NewLoggingObserver(logger))

		var armed []string
		for _, e := range hook.AllEntries() {
			if e.Message == "signal group armed" {
				armed = append(armed, e.Data["group"].(string))
			}
		}
		assert.Equal(t, []string{"NS"}, armed)
		assert.Equal(t, "simulation started", hook.AllEntries()[0].Message)
	})
}

func TestMetricsObserver(t *testing.T) {
	t.Run("Collects from a run", func(t *testing.T) {
		metrics := observers.NewMetricsObserver(200)
		sim := runSimulation(t, 4000, metrics)

		m := metrics.Metrics()
		assert.Greater(t, m.Spawned, 0)
		assert.Greater(t, m.Exited, 0)
		assert.LessOrEqual(t, m.Exited, m.Spawned)
		assert.LessOrEqual(t, m.Released, m.Queued)
		assert.Greater(t, m.Transitions["green->yellow"], 0)
		assert.Greater(t, m.Transitions["red->green"], 0)
		assert.Greater(t, m.GroupActivations[crossroad.NorthSouth], 0)
		assert.Equal(t, uint64(4000), m.LastTick)
		if m.Released > 0 {
			assert.Greater(t, m.MeanWaitTicks, 0.0)
		}

		sim.Stop()
		assert.Zero(t, metrics.Metrics().Spawned)

		last, ok := metrics.LastRun()
		require.True(t, ok)
		assert.Equal(t, m.Spawned, last.Spawned)
		assert.Equal(t, uint64(4000), last.LastTick)
		assert.Equal(t, m.Spawned, metrics.Summary().Spawned)
	})

	t.Run("Summary prefers the live run", func(t *testing.T) {
		metrics := observers.NewMetricsObserver(200)
		_, ok := metrics.LastRun()
		assert.False(t, ok)

		metrics.OnVehicleSpawned(crossroad.VehicleView{}, 1)
		metrics.OnTick(crossroad.Snapshot{Tick: 1})
		metrics.OnSimulationStopped("run-1")

		metrics.OnTick(crossroad.Snapshot{Tick: 1})
		assert.Zero(t, metrics.Summary().Spawned)
		last, ok := metrics.LastRun()
		require.True(t, ok)
		assert.Equal(t, 1, last.Spawned)
	})

	t.Run("Extended greens and queue peaks", func(t *testing.T) {
		metrics := observers.NewMetricsObserver(200)

		metrics.OnTick(crossroad.Snapshot{Tick: 5, Lights: []crossroad.LightView{
			{Road: crossroad.West, State: crossroad.Green, Timer: 400, Duration: 400, QueueLength: 7},
			{Road: crossroad.East, State: crossroad.Green, Timer: 200, Duration: 200, QueueLength: 2},
		}})
		metrics.OnTick(crossroad.Snapshot{Tick: 6, Lights: []crossroad.LightView{
			{Road: crossroad.West, State: crossroad.Green, Timer: 399, Duration: 400, QueueLength: 3},
		}})

		m := metrics.Metrics()
		assert.Equal(t, 1, m.ExtendedGreens)
		assert.Equal(t, 7, m.MaxQueue[crossroad.West])
		assert.Equal(t, 2, m.MaxQueue[crossroad.East])
	})
}

func TestValidationObserver(t *testing.T) {
	t.Run("Clean run", func(t *testing.T) {
		validator := observers.NewValidationObserver()
		runSimulation(t, 3000, validator)

		assert.True(t, validator.IsValid(), "%v", validator.Violations())
		assert.Equal(t, uint64(3000), validator.Checked())
	})

	t.Run("Records violations", func(t *testing.T) {
		validator := observers.NewValidationObserver()

		validator.OnTick(crossroad.Snapshot{
			Tick:        9,
			ActiveGroup: crossroad.EastWest,
			Lights: []crossroad.LightView{
				{Road: crossroad.North, State: crossroad.Green, Timer: 3},
				{Road: crossroad.West, State: crossroad.Green, Timer: 3},
			},
		})
		validator.OnLightTransition(crossroad.Transition{Road: crossroad.East, From: crossroad.Red, To: crossroad.Yellow})

		require.Len(t, validator.Violations(), 2)
		assert.False(t, validator.IsValid())
		assert.Equal(t, crossroad.ErrCodeSignalConflict, crossroad.GetErrorCode(validator.Violations()[0]))
	})
}
