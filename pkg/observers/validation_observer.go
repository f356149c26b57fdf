package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/crossroad"
)

// ValidationObserver checks every completed tick against the simulation
// invariants and records what it finds
type ValidationObserver struct {
	crossroad.BaseObserver

	violations []error
	checked    uint64
	mutex      sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver() *ValidationObserver {
	return &ValidationObserver{
		violations: make([]error, 0),
	}
}

// OnLightTransition rejects state changes the light machine does not allow
func (o *ValidationObserver) OnLightTransition(t crossroad.Transition) {
	if !crossroad.IsLegalTransition(t.From, t.To) {
		o.addViolation(crossroad.NewInvariantError(crossroad.ErrCodeUndefinedLightState,
			fmt.Sprintf("illegal transition %s -> %s at tick %d", t.From, t.To, t.Tick)).ForRoad(t.Road))
	}
}

// OnTick validates the snapshot of the completed tick
func (o *ValidationObserver) OnTick(snap crossroad.Snapshot) {
	err := snap.Validate()

	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.checked++
	if err != nil {
		o.violations = append(o.violations, fmt.Errorf("tick %d: %w", snap.Tick, err))
	}
}

// OnError records errors reported by the simulation
func (o *ValidationObserver) OnError(err error) {
	o.addViolation(err)
}

func (o *ValidationObserver) addViolation(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, err)
}

// Violations returns every violation recorded so far
func (o *ValidationObserver) Violations() []error {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return append([]error(nil), o.violations...)
}

// Checked returns how many ticks have been validated
func (o *ValidationObserver) Checked() uint64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.checked
}

// IsValid returns true if no violations were recorded
func (o *ValidationObserver) IsValid() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) == 0
}
