package weapon

import "fmt"

// MaxCharge is the longest useful charge time of a charged alt-fire, in seconds.
const MaxCharge = 2.0

// State is the mutable firing state of one weapon instance.
//
// Invariant: 0 <= CurrentAmmo <= Profile.MaxAmmo for ammo-fed weapons;
// Cooldown, Heat, ReloadTimer, and AltFireCharge are never negative.
type State struct {
	Cooldown      float64 `msgpack:"cooldown"`
	Heat          float64 `msgpack:"heat"`
	Overheated    bool    `msgpack:"overheated"`
	CurrentAmmo   int     `msgpack:"current_ammo"`
	ReserveAmmo   int     `msgpack:"reserve_ammo"`
	Reloading     bool    `msgpack:"reloading"`
	ReloadTimer   float64 `msgpack:"reload_timer"`
	Charging      bool    `msgpack:"charging"`
	AltFireCharge float64 `msgpack:"alt_fire_charge"`
}

// Weapon pairs a shared static Profile with its own firing State.
type Weapon struct {
	Profile *Profile
	State   State
}

// New returns a ready weapon with a full magazine and full reserve.
//
// Precondition: p must be non-nil and valid.
func New(p *Profile) *Weapon {
	return &Weapon{
		Profile: p,
		State: State{
			CurrentAmmo: p.MaxAmmo,
			ReserveAmmo: p.ReserveAmmo,
		},
	}
}

// String returns a compact debug label.
func (w *Weapon) String() string {
	return fmt.Sprintf("%s(%s)", w.Profile.ID, w.Profile.Type)
}

// Tick advances cooldown, cooling, reload, and charge timers by dt seconds.
//
// Postcondition: a reload whose timer reaches ReloadTime moves
// min(MaxAmmo-CurrentAmmo, ReserveAmmo) rounds from reserve into the magazine.
func (w *Weapon) Tick(dt float64) {
	if !(dt > 0) {
		return
	}
	s := &w.State
	p := w.Profile

	if s.Cooldown > 0 {
		s.Cooldown = max(s.Cooldown-dt, 0)
	}
	if s.Heat > 0 {
		s.Heat = max(s.Heat-p.CoolingRate*dt, 0)
	}
	if s.Overheated && (!p.HeatCapped() || s.Heat < p.MaxHeat) {
		s.Overheated = false
	}
	if s.Reloading {
		s.ReloadTimer += dt
		if s.ReloadTimer >= p.ReloadTime {
			w.completeReload()
		}
	}
	if s.Charging {
		s.AltFireCharge = min(s.AltFireCharge+dt, MaxCharge)
	}
}

// StartReload begins a reload.
//
// Postcondition: returns false, changing nothing, for unlimited-ammo
// weapons, a full magazine, an empty reserve, or a reload in progress.
func (w *Weapon) StartReload() bool {
	s := &w.State
	p := w.Profile
	if p.UnlimitedAmmo() || s.Reloading || s.CurrentAmmo >= p.MaxAmmo || s.ReserveAmmo <= 0 {
		return false
	}
	s.Reloading = true
	s.ReloadTimer = 0
	return true
}

func (w *Weapon) completeReload() {
	s := &w.State
	moved := min(w.Profile.MaxAmmo-s.CurrentAmmo, s.ReserveAmmo)
	if moved > 0 {
		s.CurrentAmmo += moved
		s.ReserveAmmo -= moved
	}
	s.Reloading = false
	s.ReloadTimer = 0
}

// BeginCharge starts accumulating alt-fire charge.
func (w *Weapon) BeginCharge() {
	w.State.Charging = true
}

// CancelCharge drops any accumulated charge.
func (w *Weapon) CancelCharge() {
	w.State.Charging = false
	w.State.AltFireCharge = 0
}
