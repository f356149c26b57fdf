package crossroad

import "github.com/samber/lo"

// Controller owns the four traffic lights and runs the signal-group protocol:
// exactly one of West/East or North/South is active, and the idle group is
// armed only once both lights of the active group show red.
type Controller struct {
	lights      [len(allRoads)]*TrafficLight
	active      SignalGroup
	baseGreen   int
	yellowTicks int
	threshold   int
	observers   *ObserverManager
}

// NewController creates a controller in its start-of-run configuration
func NewController(cfg Config, observers *ObserverManager) *Controller {
	if observers == nil {
		observers = NewObserverManager()
	}
	c := &Controller{
		baseGreen:   cfg.BaseGreenTicks,
		yellowTicks: cfg.YellowTicks,
		threshold:   cfg.QueueThreshold,
		observers:   observers,
	}
	for _, r := range allRoads {
		c.lights[r] = newTrafficLight(r)
	}
	c.Reset()
	return c
}

// Light returns the light for a road
func (c *Controller) Light(r Road) *TrafficLight {
	return c.lights[r]
}

// ActiveGroup returns the group currently holding the green phase
func (c *Controller) ActiveGroup() SignalGroup {
	return c.active
}

// Reset empties every queue and restores West/East green with a full
// base duration and North/South red
func (c *Controller) Reset() {
	c.active = EastWest
	for _, r := range allRoads {
		state := Red
		if c.active.Contains(r) {
			state = Green
		}
		c.lights[r].reset(state, c.baseGreen)
	}
}

// greenFor returns the green length a light earns from its current queue
func (c *Controller) greenFor(l *TrafficLight) int {
	if l.queue.Len() > c.threshold {
		return c.baseGreen * 2
	}
	return c.baseGreen
}

// Update advances every light by one tick. It must run after all vehicles
// have read light state for the tick.
func (c *Controller) Update(tick uint64) {
	// Only the next arming sees the new duration; running timers are untouched.
	for _, r := range c.active {
		l := c.lights[r]
		l.duration = c.greenFor(l)
	}

	for _, r := range allRoads {
		if from, to, changed := c.lights[r].countdown(c.yellowTicks); changed {
			c.observers.NotifyLightTransition(Transition{
				Road: r, From: from, To: to, Trigger: TriggerTimerExpired, Tick: tick,
			})
		}
	}

	allRed := lo.EveryBy(c.active[:], func(r Road) bool {
		return c.lights[r].state == Red
	})
	if !allRed {
		return
	}

	c.active = c.active.Other()
	for _, r := range c.active {
		c.lights[r].arm()
		c.observers.NotifyLightTransition(Transition{
			Road: r, From: Red, To: Green, Trigger: TriggerGroupArmed, Tick: tick,
		})
	}
	c.observers.NotifyGroupActivated(c.active, tick)
}

func (c *Controller) views(layout Layout) []LightView {
	views := make([]LightView, 0, len(allRoads))
	for _, r := range allRoads {
		l := c.lights[r]
		views = append(views, LightView{
			Road:        r,
			State:       l.state,
			Timer:       l.timer,
			Duration:    l.duration,
			QueueLength: l.queue.Len(),
			Queue:       l.queue.IDs(),
			Position:    layout.LightPosition(r),
		})
	}
	return views
}
