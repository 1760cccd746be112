// Package ai drives non-player ships: a Patrol/Pursue/Attack/Evade/Retreat
// state machine, nearest-hostile target acquisition, tactical weapon
// selection, and per-state maneuver commands.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/aim"
	"github.com/cory-johannsen/skirmish/internal/game/geom"
)

// State names.
const (
	StatePatrol  = "patrol"
	StatePursue  = "pursue"
	StateAttack  = "attack"
	StateEvade   = "evade"
	StateRetreat = "retreat"
)

// Event names.
const (
	EventAcquire   = "acquire"
	EventEngage    = "engage"
	EventEvade     = "evade"
	EventRetreat   = "retreat"
	EventRecover   = "recover"
	EventDisengage = "disengage"
)

// Retreat and recovery thresholds on health and shield ratios.
const (
	CriticalHealth      = 0.2
	WoundedHealth       = 0.5
	ShieldsDown         = 0.1
	RecoveredHealth     = 0.6
	DefaultEvalInterval = 5.0
)

var transitions = fsm.Events{
	{Name: EventAcquire, Src: []string{StatePatrol}, Dst: StatePursue},
	{Name: EventEngage, Src: []string{StatePursue, StateEvade}, Dst: StateAttack},
	{Name: EventEvade, Src: []string{StateAttack}, Dst: StateEvade},
	{Name: EventRetreat, Src: []string{StatePatrol, StatePursue, StateAttack, StateEvade}, Dst: StateRetreat},
	{Name: EventRecover, Src: []string{StateRetreat}, Dst: StatePatrol},
	{Name: EventDisengage, Src: []string{StatePursue, StateAttack}, Dst: StatePatrol},
}

// Roller is the randomness used for the evade roll.
type Roller interface {
	Chance(p float64, purpose string) bool
}

// Status is the per-tick view of the controlled ship the state machine reads.
type Status struct {
	HealthRatio float64
	ShieldRatio float64
	HasTarget   bool
}

// Transition records a completed state change.
type Transition struct {
	Event string
	From  string
	To    string
}

// Config is the per-ship-class AI tuning supplied at spawn.
type Config struct {
	Aggression       float64
	EvasionThreshold float64
	// Interval is the periodic evaluation period in seconds; 0 means DefaultEvalInterval.
	Interval float64
	// Horizon bounds the lead-aim intercept time; 0 means aim.MaxInterceptTime.
	Horizon float64
	Elite   bool
}

// Controller is the per-actor AI state. Target is a weak handle that the
// world validates before every use.
type Controller struct {
	Target           donburi.Entity
	PatrolPoint      geom.Vec3
	Aggression       float64
	EvasionThreshold float64
	Interval         float64
	Horizon          float64
	Elite            bool
	// StateTimer counts toward the next periodic evaluation.
	StateTimer float64
	// StateAge is the time spent in the current state.
	StateAge float64

	machine *fsm.FSM
	logger  *zap.Logger
	last    *Transition
}

// NewController returns a controller in Patrol around patrolPoint.
//
// Postcondition: State() == StatePatrol; Target is donburi.Null.
func NewController(cfg Config, patrolPoint geom.Vec3, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := cfg.Interval
	if !(interval > 0) {
		interval = DefaultEvalInterval
	}
	horizon := cfg.Horizon
	if !(horizon > 0) {
		horizon = aim.MaxInterceptTime
	}
	c := &Controller{
		Target:           donburi.Null,
		PatrolPoint:      patrolPoint,
		Aggression:       cfg.Aggression,
		EvasionThreshold: cfg.EvasionThreshold,
		Interval:         interval,
		Horizon:          horizon,
		Elite:            cfg.Elite,
		logger:           logger,
	}
	c.machine = fsm.NewFSM(StatePatrol, transitions, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			c.StateAge = 0
			c.last = &Transition{Event: e.Event, From: e.Src, To: e.Dst}
			c.logger.Debug("ai state transition",
				zap.String("event", e.Event),
				zap.String("from", e.Src),
				zap.String("to", e.Dst),
			)
		},
	})
	return c
}

// State returns the current state name.
func (c *Controller) State() string { return c.machine.Current() }

// Is reports whether the controller is in state.
func (c *Controller) Is(state string) bool { return c.machine.Is(state) }

// ShouldRetreat reports whether s forces an immediate retreat.
func ShouldRetreat(s Status) bool {
	return s.HealthRatio < CriticalHealth || (s.HealthRatio < WoundedHealth && s.ShieldRatio < ShieldsDown)
}

// Evaluate runs the retreat override and, when the periodic timer elapses,
// the transition table.
//
// The retreat override is checked every call regardless of the timer. The
// table: Patrol->Pursue with a target; Pursue->Attack with a target;
// Attack->Evade with probability EvasionThreshold; Evade->Attack
// unconditionally; Retreat->Patrol once health exceeds RecoveredHealth.
// Pursue and Attack without a target fall back to Patrol.
//
// Postcondition: returns the transition taken, if any. At most one
// transition happens per call.
func (c *Controller) Evaluate(ctx context.Context, s Status, dt float64, r Roller) (Transition, bool) {
	if dt > 0 {
		c.StateAge += dt
		c.StateTimer += dt
	}

	if ShouldRetreat(s) && !c.Is(StateRetreat) {
		return c.fire(ctx, EventRetreat)
	}

	if c.StateTimer < c.Interval {
		return Transition{}, false
	}
	c.StateTimer = 0

	switch c.State() {
	case StatePatrol:
		if s.HasTarget {
			return c.fire(ctx, EventAcquire)
		}
	case StatePursue:
		if s.HasTarget {
			return c.fire(ctx, EventEngage)
		}
		return c.fire(ctx, EventDisengage)
	case StateAttack:
		if !s.HasTarget {
			return c.fire(ctx, EventDisengage)
		}
		if r != nil && r.Chance(c.EvasionThreshold, "ai_evade") {
			return c.fire(ctx, EventEvade)
		}
	case StateEvade:
		return c.fire(ctx, EventEngage)
	case StateRetreat:
		if s.HealthRatio > RecoveredHealth {
			return c.fire(ctx, EventRecover)
		}
	}
	return Transition{}, false
}

func (c *Controller) fire(ctx context.Context, event string) (Transition, bool) {
	c.last = nil
	if err := c.machine.Event(ctx, event); err != nil {
		var noTransition fsm.NoTransitionError
		if !errors.As(err, &noTransition) {
			c.logger.Warn("ai transition rejected",
				zap.String("event", event),
				zap.String("state", c.State()),
				zap.Error(err),
			)
		}
		return Transition{}, false
	}
	if c.last == nil {
		return Transition{}, false
	}
	return *c.last, true
}

// String returns a compact debug label.
func (c *Controller) String() string {
	return fmt.Sprintf("ai[%s age=%.2f]", c.State(), c.StateAge)
}
