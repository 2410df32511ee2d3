package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Person@Example.COM", "person@example.com"},
		{"  padded@mail.io  ", "padded@mail.io"},
		{"plain@sub.domain.org", "plain@sub.domain.org"},
		{"no-at-sign", ""},
		{"two@@ats.com", ""},
		{"", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseEmail(tt.in), "input %q", tt.in)
	}
}

func TestParseInputString(t *testing.T) {
	assert.Equal(t, "hello world", ParseInputString("  hello   world  "))
	assert.Equal(t, "", ParseInputString("   "))
	assert.Equal(t, "a b c", ParseInputString("a\tb\nc"))
}

func TestParseCountryCode(t *testing.T) {
	assert.Equal(t, "US", ParseCountryCode(" us "))
	assert.Equal(t, "GB", ParseCountryCode("gb"))
	assert.Equal(t, "", ParseCountryCode("usa"))
	assert.Equal(t, "", ParseCountryCode(""))
}
