package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby-sim/internal/logger"
	"github.com/yourusername/derby-sim/internal/models"
	"github.com/yourusername/derby-sim/internal/rng"
)

func TestGenerateRosterIsValid(t *testing.T) {
	g := NewGenerator(DefaultConfig(), nil, rng.NewPartitioned(42).For(rng.SubsystemFactory), logger.Discard())

	horses, err := g.GenerateRoster(models.TeamFreeAgent, 200)
	require.NoError(t, err)
	require.Len(t, horses, 200)

	seen := make(map[string]bool)
	for _, h := range horses {
		assert.False(t, seen[h.Name()], "duplicate name %s", h.Name())
		seen[h.Name()] = true

		assert.Equal(t, models.TeamFreeAgent, h.TeamID)
		assert.Equal(t, models.HorseStatusActive, h.Status)
		assert.GreaterOrEqual(t, h.Age, DefaultMinAge)
		assert.LessOrEqual(t, h.Age, DefaultMaxAge)
		assert.Greater(t, h.Potential, h.Stats.Sum())
		assert.Equal(t, h.Stats.Overall(), h.CurrentOvr)
		assert.NotNil(t, h.History)
		assert.NotNil(t, h.Skills)

		for _, v := range []int{h.Stats.Speed, h.Stats.Stamina, h.Stats.Power, h.Stats.Guts, h.Stats.Wisdom} {
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, models.StatCeiling)
		}
		assert.Equal(t, h.Aptitude, h.Aptitude.Normalize())
	}
	assert.Equal(t, 200, g.Names().Len())
}

func TestGenerateIsReproducible(t *testing.T) {
	a := NewGenerator(DefaultConfig(), nil, rng.NewPartitioned(9).For(rng.SubsystemFactory), logger.Discard())
	b := NewGenerator(DefaultConfig(), nil, rng.NewPartitioned(9).For(rng.SubsystemFactory), logger.Discard())

	for i := 0; i < 10; i++ {
		ha, err := a.Generate(models.TeamPlayer)
		require.NoError(t, err)
		hb, err := b.Generate(models.TeamPlayer)
		require.NoError(t, err)

		assert.Equal(t, ha.Name(), hb.Name())
		assert.Equal(t, ha.Stats, hb.Stats)
		assert.Equal(t, ha.Aptitude, hb.Aptitude)
		assert.Equal(t, ha.Skills, hb.Skills)
	}
}

func TestCollidingNamesGetSuffixes(t *testing.T) {
	g := NewGenerator(DefaultConfig(), nil, rng.Fixed(0), logger.Discard())

	first, err := g.Generate(models.TeamPlayer)
	require.NoError(t, err)
	second, err := g.Generate(models.TeamPlayer)
	require.NoError(t, err)
	third, err := g.Generate(models.TeamPlayer)
	require.NoError(t, err)

	assert.Equal(t, "Silent Suzuka", first.Name())
	assert.Equal(t, "Silent Suzuka II", second.Name())
	assert.Equal(t, "Silent Suzuka III", third.Name())
}

func TestRegistryIsRespected(t *testing.T) {
	names := NewNameRegistry("silent   SUZUKA")
	g := NewGenerator(DefaultConfig(), names, rng.Fixed(0), logger.Discard())

	h, err := g.Generate(models.TeamPlayer)
	require.NoError(t, err)
	assert.Equal(t, "Silent Suzuka II", h.Name())
	assert.Same(t, names, g.Names())
}

func TestNameRegistry(t *testing.T) {
	r := NewNameRegistry()
	assert.True(t, r.Reserve("Gold Ship"))
	assert.False(t, r.Reserve("gold ship"))
	assert.False(t, r.Reserve("  "))
	assert.True(t, r.Taken("GOLD  SHIP"))

	r.Release("Gold Ship")
	assert.False(t, r.Taken("Gold Ship"))
	assert.Equal(t, 0, r.Len())
}

func TestSuffixed(t *testing.T) {
	assert.Equal(t, "Ship II", suffixed("Ship", 0))
	assert.Equal(t, "Ship X", suffixed("Ship", 8))
	assert.Equal(t, "Ship 11", suffixed("Ship", 9))
}

func TestConfigBounds(t *testing.T) {
	cfg := Config{MinAge: 3, MaxAge: 3, MinTalent: 1100, MaxTalent: 1100}
	g := NewGenerator(cfg, nil, rng.Fixed(0.999), logger.Discard())

	h, err := g.Generate(models.TeamFreeAgent)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Age)
	// talent 1100 with the top of the spread is capped at the ceiling
	assert.Equal(t, models.StatCeiling, h.Stats.Speed)
	assert.LessOrEqual(t, h.Potential, 5*models.StatCeiling)
}
