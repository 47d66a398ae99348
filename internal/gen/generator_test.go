package gen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fableweave.dev/internal/gen"
)

func loadTables(t *testing.T) gen.Tables {
	t.Helper()
	tables, err := gen.LoadTables("../../configs", "../../schemas")
	require.NoError(t, err)
	return tables
}

func TestLoadTables_ValidatesAndDigests(t *testing.T) {
	tables := loadTables(t)
	require.NotEmpty(t, tables.Names.Given)
	require.NotEmpty(t, tables.Races)
	require.NotEmpty(t, tables.Digest)

	again := loadTables(t)
	require.Equal(t, tables.Digest, again.Digest)
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	g := gen.NewGenerator(loadTables(t))
	req := gen.Request{Seed: 1337, Locations: 6, NPCs: 20}

	a, err := g.Generate(req)
	require.NoError(t, err)
	b, err := g.Generate(req)
	require.NoError(t, err)

	require.Equal(t, a, b)
	require.Len(t, a.Locations, 6)
	require.Len(t, a.NPCs, 20)
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	g := gen.NewGenerator(loadTables(t))
	a, err := g.Generate(gen.Request{Seed: 1, Locations: 4, NPCs: 12})
	require.NoError(t, err)
	b, err := g.Generate(gen.Request{Seed: 2, Locations: 4, NPCs: 12})
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestGenerate_RecordShape(t *testing.T) {
	g := gen.NewGenerator(loadTables(t))
	res, err := g.Generate(gen.Request{Seed: 7, Locations: 3, NPCs: 5})
	require.NoError(t, err)

	for _, rec := range res.NPCs {
		require.Contains(t, rec, "name")
		require.Contains(t, rec, "race")
		require.Contains(t, rec, "professions")
		home := rec["home_index"].(int)
		require.GreaterOrEqual(t, home, 0)
		require.Less(t, home, 3)
	}
	for _, rec := range res.Locations {
		require.Contains(t, rec, "archetype")
		require.Contains(t, rec, "name")
	}
}

func TestGenerate_RejectsImpossibleRequest(t *testing.T) {
	g := gen.NewGenerator(loadTables(t))
	_, err := g.Generate(gen.Request{Seed: 1, Locations: 0, NPCs: 3})
	require.Error(t, err)
	_, err = g.Generate(gen.Request{Seed: 1, Locations: -1})
	require.Error(t, err)
}

func TestCraftTable(t *testing.T) {
	tables := loadTables(t)
	crafts := tables.CraftTable()
	require.Contains(t, crafts, "blacksmith")
	require.Contains(t, crafts["blacksmith"], "iron_sword")
}
