package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/content"
	"github.com/cory-johannsen/skirmish/internal/game/ship"
	"github.com/cory-johannsen/skirmish/internal/game/sim"
	"github.com/cory-johannsen/skirmish/internal/gameserver"
	"github.com/cory-johannsen/skirmish/internal/progression"
)

// repoContent is the content tree shipped with the repository.
const repoContent = "../../content"

func repoConfig() config.Config {
	cfg := config.Default()
	cfg.Content = config.ContentConfig{
		ShipsDir:   filepath.Join(repoContent, "ships"),
		WeaponsDir: filepath.Join(repoContent, "weapons"),
		ScriptsDir: filepath.Join(repoContent, "scripts"),
	}
	cfg.Simulation.Seed = 7
	return cfg
}

func TestLoad_BuiltInTables(t *testing.T) {
	p, err := content.Load(config.Default(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Close()
	assert.Nil(t, p.Scripts)
	assert.Len(t, p.Classes.Classes(), 4)
	assert.Len(t, p.Weapons.IDs(), 7)
}

func TestLoad_RepositoryContentMatchesBuiltIns(t *testing.T) {
	p, err := content.Load(repoConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Close()

	for _, want := range ship.DefaultClasses() {
		got, ok := p.Classes.Class(want.ID)
		require.True(t, ok, "class %s", want.ID)
		assert.Equal(t, want, got)
	}
	require.NotNil(t, p.Scripts)
	assert.True(t, p.Scripts.HasHook("any-battle", progression.AwardHook))
}

func TestLoad_RepositoryScenariosPopulate(t *testing.T) {
	p, err := content.Load(repoConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Close()

	paths, err := filepath.Glob(filepath.Join(repoContent, "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		sc, err := gameserver.LoadScenario(path)
		require.NoError(t, err, path)
		b := p.NewBattle(config.Default().Simulation, zaptest.NewLogger(t))
		roster, err := sc.Populate(b)
		require.NoError(t, err, path)
		assert.Len(t, roster.Players, 1, path)
		b.Close()
	}
}

func TestNewBattle_WiresScriptActorLookup(t *testing.T) {
	p, err := content.Load(repoConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Close()

	b := p.NewBattle(config.Default().Simulation, zaptest.NewLogger(t))
	defer b.Close()
	id, err := b.Spawn(escortSpec())
	require.NoError(t, err)

	info := p.Scripts.GetActor(id.String())
	require.NotNil(t, info)
	assert.Equal(t, "corvette", info.Class)
}

func TestLoad_ScriptPointsOverrideClassTable(t *testing.T) {
	p, err := content.Load(repoConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer p.Close()

	tr := progression.NewTracker(p.Classes, p.Scripts, "battle", nil)
	assert.Equal(t, 200, tr.PointsFor("capital_ship", true))
	assert.Equal(t, 10, tr.PointsFor("fighter", true))
	assert.Equal(t, 0, tr.PointsFor("fighter", false))
}

func TestLoad_UnknownWeaponReference(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gunboat.yaml"), []byte(`
id: gunboat
name: Gunboat
hull: 80
max_speed: 20
radius: 3
weapons: [death_ray]
`), 0644))
	cfg := config.Default()
	cfg.Content.ShipsDir = dir
	_, err := content.Load(cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, `unknown weapon "death_ray"`)
}

func TestLoad_MissingScriptsDir(t *testing.T) {
	cfg := config.Default()
	cfg.Content.ScriptsDir = filepath.Join(t.TempDir(), "nope")
	_, err := content.Load(cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "loading scripts")
}

func escortSpec() sim.SpawnSpec {
	return sim.SpawnSpec{Class: ship.Corvette, Name: "Escort"}
}
