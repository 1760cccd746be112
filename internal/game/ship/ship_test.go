package ship_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/weapon"
)

func TestDefaultClassesValidate(t *testing.T) {
	defs := ship.DefaultClasses()
	require.Len(t, defs, 4)
	for _, d := range defs {
		assert.NoError(t, d.Validate(), d.ID)
	}
}

func TestFighterPreset(t *testing.T) {
	reg, err := ship.NewRegistry(ship.DefaultClasses())
	require.NoError(t, err)
	f, ok := reg.Class(ship.Fighter)
	require.True(t, ok)

	h := f.NewHealth()
	assert.Equal(t, 50.0, h.Current)
	s := f.NewShield()
	require.NotNil(t, s)
	assert.Equal(t, 30.0, s.Current)
	assert.False(t, f.AIConfig().Elite)
}

func TestEliteClasses(t *testing.T) {
	assert.False(t, ship.Fighter.IsElite())
	assert.False(t, ship.Corvette.IsElite())
	assert.True(t, ship.Frigate.IsElite())
	assert.True(t, ship.CapitalShip.IsElite())
}

func TestDefaultClassesReferenceDefaultWeapons(t *testing.T) {
	classes, err := ship.NewRegistry(ship.DefaultClasses())
	require.NoError(t, err)
	weapons, err := weapon.NewRegistryFrom(weapon.DefaultProfiles())
	require.NoError(t, err)
	assert.NoError(t, classes.CheckWeapons(weapons))

	empty := weapon.NewRegistry()
	assert.ErrorContains(t, classes.CheckWeapons(empty), "unknown weapon")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	defs := append(ship.DefaultClasses(), ship.DefaultClasses()[0])
	_, err := ship.NewRegistry(defs)
	assert.ErrorContains(t, err, "already registered")
}

func TestNoShieldOrEnergy(t *testing.T) {
	d := &ship.ClassDef{ID: "drone", Hull: 5, MaxSpeed: 10, Radius: 1}
	require.NoError(t, d.Validate())
	assert.Nil(t, d.NewShield())
	assert.Nil(t, d.NewEnergy())
}

func TestValidateCollectsViolations(t *testing.T) {
	d := &ship.ClassDef{Hull: -1, Aggression: 2}
	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id must not be empty")
	assert.Contains(t, err.Error(), "hull must be > 0")
	assert.Contains(t, err.Error(), "aggression must be in [0,1]")
	assert.Contains(t, err.Error(), "radius must be > 0")
}

func TestLoadClasses(t *testing.T) {
	dir := t.TempDir()
	yml := `id: interceptor
name: Interceptor
hull: 40
shield: 20
shield_recharge: 5
shield_delay: 2
energy: 80
energy_recharge: 15
max_speed: 50
turn_rate: 4
radius: 1.5
weapons: [laser]
aggression: 0.9
evasion_threshold: 0.4
points: 12
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "interceptor.yaml"), []byte(yml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	defs, err := ship.LoadClasses(dir)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, ship.Class("interceptor"), defs[0].ID)
	assert.Equal(t, []string{"laser"}, defs[0].Weapons)
	assert.Equal(t, 12, defs[0].Points)
}

func TestLoadClassesRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("id: bad\nhull: 0\n"), 0o644))
	_, err := ship.LoadClasses(dir)
	assert.ErrorContains(t, err, "bad.yaml")
}

func TestLoadClassesMissingDir(t *testing.T) {
	_, err := ship.LoadClasses(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
