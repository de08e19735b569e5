package chain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/legal-officer-api/chain"
)

func TestValidAddress(t *testing.T) {
	assert.True(t, chain.ValidAddress("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"))
	assert.True(t, chain.ValidAddress("5CXLTF2PFBE89tTYsrofGPkSfGTdmW4ciw4vAfgcKhjggRgZ"))

	assert.False(t, chain.ValidAddress(""))
	assert.False(t, chain.ValidAddress("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQZ"))
	assert.False(t, chain.ValidAddress("0GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"))
	assert.False(t, chain.ValidAddress("5Grwva"))
}
