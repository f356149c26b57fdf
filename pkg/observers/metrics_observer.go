package observers

import (
	"sync"

	"github.com/anggasct/crossroad"
)

// Metrics is a point-in-time copy of what a MetricsObserver has collected
type Metrics struct {
	Spawned          int                           `json:"spawned"`
	Exited           int                           `json:"exited"`
	Queued           int                           `json:"queued"`
	Released         int                           `json:"released"`
	MeanWaitTicks    float64                       `json:"meanWaitTicks"`
	MaxQueue         map[crossroad.Road]int        `json:"maxQueue"`
	GroupActivations map[crossroad.SignalGroup]int `json:"groupActivations"`
	Transitions      map[string]int                `json:"transitions"`
	ExtendedGreens   int                           `json:"extendedGreens"`
	LastTick         uint64                        `json:"lastTick"`
}

// MetricsObserver collects traffic and signal statistics
type MetricsObserver struct {
	crossroad.BaseObserver

	spawned          int
	exited           int
	queued           int
	released         int
	totalWait        uint64
	maxQueue         map[crossroad.Road]int
	groupActivations map[crossroad.SignalGroup]int
	transitions      map[string]int
	extendedGreens   int
	baseGreen        int
	lastTick         uint64
	lastRun          *Metrics
	mutex            sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer. baseGreen is the
// configured green length; arming with more counts as an extended green.
func NewMetricsObserver(baseGreen int) *MetricsObserver {
	return &MetricsObserver{
		maxQueue:         make(map[crossroad.Road]int),
		groupActivations: make(map[crossroad.SignalGroup]int),
		transitions:      make(map[string]int),
		baseGreen:        baseGreen,
	}
}

// OnLightTransition records transition metrics
func (o *MetricsObserver) OnLightTransition(t crossroad.Transition) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.transitions[t.From.String()+"->"+t.To.String()]++
}

// OnGroupActivated records group activation metrics
func (o *MetricsObserver) OnGroupActivated(group crossroad.SignalGroup, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.groupActivations[group]++
}

// OnVehicleSpawned counts arrivals
func (o *MetricsObserver) OnVehicleSpawned(v crossroad.VehicleView, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.spawned++
}

// OnVehicleQueued counts stops
func (o *MetricsObserver) OnVehicleQueued(v crossroad.VehicleView, position int, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.queued++
}

// OnVehicleReleased accumulates waiting time
func (o *MetricsObserver) OnVehicleReleased(v crossroad.VehicleView, waited uint64, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.released++
	o.totalWait += waited
}

// OnVehicleExited counts departures
func (o *MetricsObserver) OnVehicleExited(v crossroad.VehicleView, tick uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.exited++
}

// OnTick tracks queue peaks and extended greens
func (o *MetricsObserver) OnTick(snap crossroad.Snapshot) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.lastTick = snap.Tick
	for _, l := range snap.Lights {
		if l.QueueLength > o.maxQueue[l.Road] {
			o.maxQueue[l.Road] = l.QueueLength
		}
		// a light armed this tick still has its full timer
		if l.State == crossroad.Green && l.Timer == l.Duration && l.Timer > o.baseGreen {
			o.extendedGreens++
		}
	}
}

// OnSimulationStopped keeps the finished run's totals and starts over
func (o *MetricsObserver) OnSimulationStopped(runID string) {
	finished := o.Metrics()

	o.Reset()

	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.lastRun = &finished
}

// LastRun returns the totals of the most recently stopped run
func (o *MetricsObserver) LastRun() (Metrics, bool) {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	if o.lastRun == nil {
		return Metrics{}, false
	}
	return *o.lastRun, true
}

// Summary returns the current run's metrics, or the last stopped run's when
// nothing has ticked since the stop
func (o *MetricsObserver) Summary() Metrics {
	current := o.Metrics()
	if current.LastTick > 0 {
		return current
	}
	if last, ok := o.LastRun(); ok {
		return last
	}
	return current
}

// Reset clears all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.spawned, o.exited, o.queued, o.released = 0, 0, 0, 0
	o.totalWait = 0
	o.extendedGreens = 0
	o.lastTick = 0
	o.maxQueue = make(map[crossroad.Road]int)
	o.groupActivations = make(map[crossroad.SignalGroup]int)
	o.transitions = make(map[string]int)
}

// Metrics returns a copy of the collected metrics
func (o *MetricsObserver) Metrics() Metrics {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	m := Metrics{
		Spawned:          o.spawned,
		Exited:           o.exited,
		Queued:           o.queued,
		Released:         o.released,
		MaxQueue:         make(map[crossroad.Road]int, len(o.maxQueue)),
		GroupActivations: make(map[crossroad.SignalGroup]int, len(o.groupActivations)),
		Transitions:      make(map[string]int, len(o.transitions)),
		ExtendedGreens:   o.extendedGreens,
		LastTick:         o.lastTick,
	}
	if o.released > 0 {
		m.MeanWaitTicks = float64(o.totalWait) / float64(o.released)
	}
	for k, v := range o.maxQueue {
		m.MaxQueue[k] = v
	}
	for k, v := range o.groupActivations {
		m.GroupActivations[k] = v
	}
	for k, v := range o.transitions {
		m.Transitions[k] = v
	}
	return m
}
