package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOtpEmailCarriesTheCode(t *testing.T) {
	html, err := RenderOtpEmail(OtpEmailData{Code: "482913", ExpiryMinutes: 10})
	require.NoError(t, err)
	assert.Contains(t, html, "482913")
	assert.Contains(t, html, "10")
}

func TestRenderOtpEmailEscapesHostileCode(t *testing.T) {
	html, err := RenderOtpEmail(OtpEmailData{Code: "<script>", ExpiryMinutes: 10})
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>"), "template must escape injected markup")
}

func TestOtpEmailPlainText(t *testing.T) {
	text := OtpEmailPlainText(OtpEmailData{Code: "482913", ExpiryMinutes: 10})
	assert.Contains(t, text, "482913")
	assert.Contains(t, text, "10")
}
