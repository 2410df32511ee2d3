package middleware

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemainingAfterClampsAtZero(t *testing.T) {
	assert.Equal(t, 4, remainingAfter(5, 1))
	assert.Equal(t, 0, remainingAfter(5, 5))
	// Requests past the limit keep incrementing the window counter but
	// must never report a negative budget.
	assert.Equal(t, 0, remainingAfter(5, 6))
	assert.Equal(t, 0, remainingAfter(5, 400))
}

func TestKeyByIPAndEmailRestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/auth/send-otp",
		bytes.NewReader([]byte(`{"email": " User@Example.COM "}`)))
	c.Request.RemoteAddr = "203.0.113.9:4444"

	key := KeyByIPAndEmail()(c)
	assert.Equal(t, "rl:otp:203.0.113.9:user@example.com", key)

	// The handler behind the limiter still needs the body.
	raw, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email": " User@Example.COM "}`, string(raw))
}

func TestRateLimitIsANoOpWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/api/auth/send-otp", nil)

	handler := RateLimit(nil, 5, time.Minute, KeyByIP())
	handler(c)

	assert.False(t, c.IsAborted())
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
