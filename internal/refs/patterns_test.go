package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchAccessesChainedVariable(t *testing.T) {
	ms := matchAccesses(attrPattern, "self.doc.title")

	require.Len(t, ms, 2)
	assert.Equal(t, "self", ms[0].variable)
	assert.Equal(t, "doc", ms[0].field)
	assert.Equal(t, "doc", ms[1].variable)
	assert.Equal(t, "title", ms[1].field)
}

func TestMatchAccessesRejectsIdentifierSuffix(t *testing.T) {
	// "inv" inside a longer identifier is not an access through "inv".
	for _, line := range []string{
		"subinv.total = 1",
		"my_inv.total = 1",
		"x9inv.total = 1",
	} {
		for _, m := range matchAccesses(attrPattern, line) {
			assert.NotEqual(t, "inv", m.variable, line)
		}
	}

	for _, m := range matchAccesses(getPattern, `subinv.get("total")`) {
		assert.NotEqual(t, "inv", m.variable)
	}
}
