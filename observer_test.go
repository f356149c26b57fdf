package crossroad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickingObserver struct {
	BaseObserver
}

func (o *panickingObserver) OnGroupActivated(group SignalGroup, tick uint64) {
	panic("boom")
}

type minimalObserver struct {
	groups int
}

func (o *minimalObserver) OnLightTransition(t Transition)                  {}
func (o *minimalObserver) OnGroupActivated(group SignalGroup, tick uint64) { o.groups++ }

func TestObserverManager_RecoversPanics(t *testing.T) {
	om := NewObserverManager()
	recorder := NewTestObserver()
	om.AddObserver(&panickingObserver{})
	om.AddObserver(recorder)

	assert.NotPanics(t, func() { om.NotifyGroupActivated(NorthSouth, 10) })
	assert.Equal(t, []SignalGroup{NorthSouth}, recorder.Groups)
}

func TestObserverManager_ReportsPanicsToTheFaultyObserver(t *testing.T) {
	om := NewObserverManager()
	recorder := &recordingPanicker{}
	om.AddObserver(recorder)
	om.NotifyGroupActivated(EastWest, 1)

	require.Len(t, recorder.Errors, 1)
	assert.True(t, IsSimulationError(recorder.Errors[0]))
	assert.Equal(t, ErrCodeObserverPanic, GetErrorCode(recorder.Errors[0]))
	assert.Equal(t, "simulation error in OnGroupActivated: observer panic: bad observer", recorder.Errors[0].Error())
}

type recordingPanicker struct {
	TestObserver
}

func (o *recordingPanicker) OnGroupActivated(group SignalGroup, tick uint64) {
	panic("bad observer")
}

func TestObserverManager_BasicObserversSkipExtendedHooks(t *testing.T) {
	om := NewObserverManager()
	basic := &minimalObserver{}
	om.AddObserver(basic)

	om.NotifyVehicleSpawned(VehicleView{ID: 1}, 1)
	om.NotifyTick(Snapshot{})
	om.NotifyGroupActivated(EastWest, 2)

	assert.Equal(t, 1, basic.groups)
}

func TestObserverManager_Remove(t *testing.T) {
	om := NewObserverManager()
	a, b := NewTestObserver(), NewTestObserver()
	om.AddObserver(a)
	om.AddObserver(b)

	om.RemoveObserver(a)
	om.NotifySimulationPaused(true)

	assert.Equal(t, 1, om.Len())
	assert.Empty(t, a.Paused)
	assert.Equal(t, []bool{true}, b.Paused)
}
