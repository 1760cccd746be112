// Package progression keeps per-actor score totals by consuming combat
// events from the bus. Points per kill come from the Lua hook
// award_points(class, is_enemy) when a script defines it, otherwise from
// the ship-class table.
package progression

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/event"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// AwardHook is the Lua global consulted for kill points.
const AwardHook = "award_points"

// Standing is an actor's running total.
type Standing struct {
	ID     uuid.UUID `msgpack:"id"`
	Class  string    `msgpack:"class"`
	Points int       `msgpack:"points"`
	Kills  int       `msgpack:"kills"`
	Damage float64   `msgpack:"damage"`
}

// Tracker accumulates standings. All methods are safe for concurrent use.
type Tracker struct {
	classes *ship.Registry
	scripts *scripting.Manager
	scope   string
	logger  *zap.Logger

	mu        sync.Mutex
	standings map[uuid.UUID]*Standing
}

// NewTracker creates a Tracker.
//
// Precondition: classes must be non-nil. scripts may be nil, which
// disables the Lua hook; scope selects the script VM.
// Postcondition: Returns a Tracker with no standings.
func NewTracker(classes *ship.Registry, scripts *scripting.Manager, scope string, logger *zap.Logger) *Tracker {
	if classes == nil {
		panic("progression.NewTracker: classes must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		classes:   classes,
		scripts:   scripts,
		scope:     scope,
		logger:    logger,
		standings: make(map[uuid.UUID]*Standing),
	}
}

// Run applies events from sub until ctx is cancelled or the subscription
// channel is closed.
//
// Postcondition: returns ctx.Err() on cancellation, nil on close.
func (t *Tracker) Run(ctx context.Context, sub *event.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-sub.C:
			if !ok {
				return nil
			}
			t.Apply(e)
		}
	}
}

// Apply folds one event into the standings. Events other than Kill and
// DamageDealt are ignored.
func (t *Tracker) Apply(e event.Event) {
	switch ev := e.(type) {
	case event.Kill:
		pts := t.PointsFor(ev.Victim.Class, ev.IsEnemy)
		t.mu.Lock()
		s := t.standing(ev.Killer)
		s.Kills++
		s.Points += pts
		t.mu.Unlock()
		t.logger.Debug("points awarded",
			zap.Stringer("killer", ev.Killer.ID),
			zap.String("victim_class", ev.Victim.Class),
			zap.Int("points", pts),
		)
	case event.DamageDealt:
		if !(ev.Amount > 0) {
			return
		}
		t.mu.Lock()
		t.standing(ev.Source).Damage += ev.Amount
		t.mu.Unlock()
	}
}

// PointsFor returns the award for destroying an actor of class.
//
// Postcondition: a numeric award_points result wins, rounded and clamped
// to >= 0. Otherwise an enemy victim is worth its class Points and any
// other victim is worth 0.
func (t *Tracker) PointsFor(class string, isEnemy bool) int {
	if t.scripts != nil && t.scripts.HasHook(t.scope, AwardHook) {
		ret, _ := t.scripts.CallHook(t.scope, AwardHook, lua.LString(class), lua.LBool(isEnemy))
		if n, ok := ret.(lua.LNumber); ok && !math.IsNaN(float64(n)) {
			return max(0, int(math.Round(float64(n))))
		}
		t.logger.Debug("award hook returned no number, using class table",
			zap.String("class", class),
			zap.String("returned", ret.String()),
		)
	}
	if !isEnemy {
		return 0
	}
	def, ok := t.classes.Class(ship.Class(class))
	if !ok {
		return 0
	}
	return def.Points
}

// Standing returns the current total for id.
func (t *Tracker) Standing(id uuid.UUID) (Standing, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.standings[id]
	if !ok {
		return Standing{}, false
	}
	return *s, true
}

// Leaderboard returns every standing ordered by points, then kills,
// then ID.
func (t *Tracker) Leaderboard() []Standing {
	t.mu.Lock()
	out := make([]Standing, 0, len(t.standings))
	for _, s := range t.standings {
		out = append(out, *s)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Kills != out[j].Kills {
			return out[i].Kills > out[j].Kills
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// standing must be called with mu held.
func (t *Tracker) standing(a event.Actor) *Standing {
	s, ok := t.standings[a.ID]
	if !ok {
		s = &Standing{ID: a.ID, Class: a.Class}
		t.standings[a.ID] = s
	}
	return s
}
