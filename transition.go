package crossroad

// Trigger names what caused a light to change state
type Trigger string

const (
	// TriggerTimerExpired fires when a green or yellow countdown reaches zero
	TriggerTimerExpired Trigger = "timer_expired"
	// TriggerGroupArmed fires when the controller activates a signal group
	TriggerGroupArmed Trigger = "group_armed"
)

// TransitionRule is one legal edge of the light state machine
type TransitionRule struct {
	From    LightState
	To      LightState
	Trigger Trigger
}

// Transition records a light changing state during a tick
type Transition struct {
	Road    Road       `json:"road"`
	From    LightState `json:"from"`
	To      LightState `json:"to"`
	Trigger Trigger    `json:"trigger"`
	Tick    uint64     `json:"tick"`
}

// red has no countdown of its own; only the controller moves it to green
var lightTransitions = []TransitionRule{
	{From: Green, To: Yellow, Trigger: TriggerTimerExpired},
	{From: Yellow, To: Red, Trigger: TriggerTimerExpired},
	{From: Red, To: Green, Trigger: TriggerGroupArmed},
}

// LightTransitions returns every legal state change of a single light
func LightTransitions() []TransitionRule {
	return append([]TransitionRule(nil), lightTransitions...)
}

// IsLegalTransition reports whether a light may move from one state to another
func IsLegalTransition(from, to LightState) bool {
	for _, rule := range lightTransitions {
		if rule.From == from && rule.To == to {
			return true
		}
	}
	return false
}
