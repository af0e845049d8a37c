package idgen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortFormat(t *testing.T) {
	gen := Short("WK")
	re := regexp.MustCompile(`^WK-[A-HJ-NP-Z2-9]{6}$`)
	for i := 0; i < 100; i++ {
		assert.Regexp(t, re, gen())
	}
	assert.Len(t, Short("")(), 6)
}

func TestUUIDFormat(t *testing.T) {
	id := UUID("WK")()
	assert.True(t, strings.HasPrefix(id, "WK-"))
	assert.Len(t, id, len("WK-")+36)
}

func TestGeneratorsMostlyUnique(t *testing.T) {
	for _, gen := range []Generator{Short("WK"), UUID("WK")} {
		seen := make(map[string]struct{}, 1000)
		for i := 0; i < 1000; i++ {
			seen[gen()] = struct{}{}
		}
		// 32^6 codes make a collision in 1000 draws vanishingly rare
		assert.GreaterOrEqual(t, len(seen), 999)
	}
}

func TestNew(t *testing.T) {
	g, err := New("", "WK")
	require.NoError(t, err)
	assert.Regexp(t, `^WK-`, g())

	g, err = New("UUID", "BK")
	require.NoError(t, err)
	assert.Regexp(t, `^BK-[0-9a-f-]{36}$`, g())

	_, err = New("ulid", "WK")
	assert.Error(t, err)
}
