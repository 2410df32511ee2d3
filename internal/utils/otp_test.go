package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOneTimeCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateOneTimeCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q has a non-digit", code)
		}
		seen[code] = true
	}
	// 50 draws from a million values colliding down to a handful would
	// mean the generator is broken.
	assert.Greater(t, len(seen), 40)
}

func TestHashOneTimeCodeIsDeterministic(t *testing.T) {
	a := HashOneTimeCode("a@b.com", "123456")
	b := HashOneTimeCode("a@b.com", "123456")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashOneTimeCodeBindsEmailAndCode(t *testing.T) {
	base := HashOneTimeCode("a@b.com", "123456")
	assert.NotEqual(t, base, HashOneTimeCode("c@d.com", "123456"))
	assert.NotEqual(t, base, HashOneTimeCode("a@b.com", "654321"))
}

func TestHashToken(t *testing.T) {
	a := HashToken("refresh-token-1")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, HashToken("refresh-token-2"))
}
