package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupFixedCallback(t *testing.T) {
	idx, ok := Lookup("Create")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = Lookup("Go")
	require.True(t, ok)
	assert.Equal(t, 32, idx)
}

func TestLookupWeaponCallback(t *testing.T) {
	idx, ok := Lookup("FireWeapon1")
	require.True(t, ok)
	want, err := FireWeapon(0)
	require.NoError(t, err)
	assert.Equal(t, want, idx)
}

func TestLegacyAliasesMatchCanonicalNames(t *testing.T) {
	cases := map[string]string{
		"QueryPrimary":     "QueryWeapon1",
		"AimSecondary":     "AimWeapon2",
		"AimFromTertiary":  "AimFromWeapon3",
		"FirePrimary":      "FireWeapon1",
	}
	for alias, canonical := range cases {
		aliasIdx, ok := Lookup(alias)
		require.True(t, ok, "alias %q should resolve", alias)
		canonicalIdx, ok := Lookup(canonical)
		require.True(t, ok)
		assert.Equal(t, canonicalIdx, aliasIdx)
	}
}

func TestNameRoundTrips(t *testing.T) {
	for name := range map[string]struct{}{"Create": {}, "FireWeapon32": {}, "TargetWeight1": {}} {
		idx, ok := Lookup(name)
		require.True(t, ok)
		assert.Equal(t, name, Name(idx))
	}
}

func TestWeaponIndexOutOfRange(t *testing.T) {
	_, err := FireWeapon(MaxWeaponsPerUnit)
	assert.Error(t, err)
	_, err = FireWeapon(-1)
	assert.Error(t, err)
}

func TestNumUnitFuncsMatchesTable(t *testing.T) {
	assert.Equal(t, FuncLast+MaxWeaponsPerUnit*NumWeaponFuncs, NumUnitFuncs)
	_, ok := Lookup("TargetWeight32")
	assert.True(t, ok)
	assert.Equal(t, NumUnitFuncs-1, func() int { idx, _ := Lookup("TargetWeight32"); return idx }())
}
