package combat

import "github.com/cory-johannsen/skirmish/internal/game/geom"

// Contact is a read-only view of a live actor used for target scans.
type Contact[H comparable] struct {
	Handle   H
	Faction  Faction
	Position geom.Vec3
	Velocity geom.Vec3
}

// NearestHostile returns the closest contact hostile to from within radius.
// Ties keep the earlier contact.
//
// Postcondition: ok is false when no hostile contact lies within radius.
func NearestHostile[H comparable](pos geom.Vec3, from Faction, contacts []Contact[H], radius float64) (Contact[H], bool) {
	var best Contact[H]
	bestDist := radius * radius
	found := false
	for _, c := range contacts {
		if !Hostile(from, c.Faction) {
			continue
		}
		d := c.Position.Sub(pos).LenSq()
		if !geom.IsFinite(d) {
			continue
		}
		if d < bestDist || (!found && d <= bestDist) {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}
