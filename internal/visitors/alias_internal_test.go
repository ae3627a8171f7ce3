package visitors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAliasIndices(t *testing.T) {
	t.Run("Hashes with the high bit set stay in range", func(t *testing.T) {
		adjective, animal := aliasIndices(0xFFFFFFFF)

		assert.Equal(t, 15, adjective)
		assert.Equal(t, 22, animal)
		assert.Equal(t, "Nimble", aliasAdjectives[adjective])
		assert.Equal(t, "Seahorse", aliasAnimals[animal])
	})

	t.Run("Every index is within its list", func(t *testing.T) {
		for _, sum := range []uint32{0, 1, 39, 40, 1 << 31, 0x80000001, 0xFFFFFFFE, 0xFFFFFFFF} {
			adjective, animal := aliasIndices(sum)
			assert.GreaterOrEqual(t, adjective, 0)
			assert.Less(t, adjective, len(aliasAdjectives))
			assert.GreaterOrEqual(t, animal, 0)
			assert.Less(t, animal, len(aliasAnimals))
		}
	})
}
