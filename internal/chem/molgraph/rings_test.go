package molgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSSSR_Naphthalene(t *testing.T) {
	mol, err := ParseSMILES("c1ccc2ccccc2c1")
	require.NoError(t, err)
	require.NoError(t, mol.EnsureDerivedTables())

	rings := mol.Rings()
	require.Len(t, rings, 2)
	for _, r := range rings {
		assert.Len(t, r, 6)
	}
}

func TestComputeSSSR_Acyclic(t *testing.T) {
	mol, err := ParseSMILES("CCCC")
	require.NoError(t, err)
	require.NoError(t, mol.EnsureDerivedTables())
	assert.Empty(t, mol.Rings())
}
