package weapon

// Mount is an ordered set of weapons with exactly one current weapon.
//
// Invariant: 0 <= Current < len(Weapons) whenever Weapons is non-empty.
type Mount struct {
	Weapons []*Weapon
	Current int
}

// NewMount returns a mount whose first weapon is current.
func NewMount(ws ...*Weapon) *Mount {
	return &Mount{Weapons: ws}
}

// Active returns the current weapon, or nil for an empty mount.
func (m *Mount) Active() *Weapon {
	if m == nil || len(m.Weapons) == 0 {
		return nil
	}
	return m.Weapons[m.Current]
}

// Select makes index current.
//
// Postcondition: returns false, changing nothing, for an out-of-range index.
func (m *Mount) Select(index int) bool {
	if index < 0 || index >= len(m.Weapons) {
		return false
	}
	if index != m.Current {
		// switching away drops any charge in progress
		m.Weapons[m.Current].CancelCharge()
	}
	m.Current = index
	return true
}

// Tick advances every weapon's timers, not only the current one.
func (m *Mount) Tick(dt float64) {
	for _, w := range m.Weapons {
		w.Tick(dt)
	}
}

// Len returns the number of mounted weapons.
func (m *Mount) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Weapons)
}
