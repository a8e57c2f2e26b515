package service

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortCodeGenerator_LengthAndAlphabet(t *testing.T) {
	owner := uuid.New()

	for _, length := range []int{1, 4, 6, 8, 16, 40} {
		gen := NewShortCodeGenerator(length)
		code := gen.Generate("https://example.com/some/long/path", owner)

		require.Len(t, code, length)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(base62Alphabet, c),
				"code %q contains non-base62 character %q", code, c)
		}
	}
}

func TestShortCodeGenerator_DefaultLength(t *testing.T) {
	gen := NewShortCodeGenerator(0)
	assert.Len(t, gen.Generate("https://example.com", uuid.New()), defaultCodeLength)
}

func TestShortCodeGenerator_DeterministicPerTick(t *testing.T) {
	gen := NewShortCodeGenerator(8)
	gen.nowNano = func() int64 { return 1234567890 }
	owner := uuid.New()

	first := gen.Generate("https://example.com", owner)
	second := gen.Generate("https://example.com", owner)
	assert.Equal(t, first, second, "same inputs within one tick hash identically")
}

func TestShortCodeGenerator_InputsChangeTheCode(t *testing.T) {
	gen := NewShortCodeGenerator(8)
	gen.nowNano = func() int64 { return 42 }

	alice, bob := uuid.New(), uuid.New()
	assert.NotEqual(t,
		gen.Generate("https://example.com", alice),
		gen.Generate("https://example.com", bob),
		"different owners get different codes for the same URL")
	assert.NotEqual(t,
		gen.Generate("https://example.com/a", alice),
		gen.Generate("https://example.com/b", alice))
}

func TestShortCodeGenerator_DistinctAcrossCalls(t *testing.T) {
	gen := NewShortCodeGenerator(8)
	owner := uuid.New()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		seen[gen.Generate("https://example.com", owner)] = struct{}{}
	}
	// The nanosecond salt makes collisions vanishingly rare even for
	// identical URL and owner.
	assert.Greater(t, len(seen), 990)
}
