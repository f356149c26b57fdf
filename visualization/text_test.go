package visualization_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/crossroad"
	"github.com/anggasct/crossroad/visualization"
)

func TestRenderStatus(t *testing.T) {
	snap := crossroad.Snapshot{
		Tick:        42,
		Running:     true,
		Paused:      true,
		ActiveGroup: crossroad.NorthSouth,
		Vehicles:    []crossroad.VehicleView{{ID: 1}, {ID: 2}, {ID: 3}},
		Lights: []crossroad.LightView{
			{Road: crossroad.North, State: crossroad.Green, Timer: 158, Duration: 200},
			{Road: crossroad.South, State: crossroad.Green, Timer: 158, Duration: 200},
			{Road: crossroad.West, State: crossroad.Red, QueueLength: 2},
			{Road: crossroad.East, State: crossroad.Red, QueueLength: 1},
		},
	}

	var out strings.Builder
	require.NoError(t, visualization.RenderStatus(&out, snap))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "tick 42  paused  active NS  vehicles 3", lines[0])
	assert.Equal(t, []string{"ROAD", "LIGHT", "TIMER", "QUEUE"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"N", "green", "158/200", "0"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"W", "red", "0/0", "2"}, strings.Fields(lines[4]))
}

func TestRenderStatus_Stopped(t *testing.T) {
	var out strings.Builder
	require.NoError(t, visualization.RenderStatus(&out, crossroad.Snapshot{ActiveGroup: crossroad.EastWest}))

	assert.Equal(t, "tick 0  stopped  active WE  vehicles 0\nROAD  LIGHT  TIMER  QUEUE\n", out.String())
}
