package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sendgrid/sendgrid-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/six-app/six-backend/internal/logger"
)

// sendgridStub accepts mail/send posts and rejects any from address not
// on its verified list, like the real API does for unverified senders.
type sendgridStub struct {
	mu       sync.Mutex
	verified map[string]bool
	froms    []string
}

func (s *sendgridStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			From struct {
				Email string `json:"email"`
			} `json:"from"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.froms = append(s.froms, body.From.Email)
		ok := s.verified[body.From.Email]
		s.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":[{"message":"The from address does not match a verified Sender Identity"}]}`))
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *sendgridStub) sentFrom() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.froms...)
}

func newTestEmailService(t *testing.T, stub *sendgridStub, fallback string) *emailService {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	req := sendgrid.GetRequest("test-key", "/v3/mail/send", srv.URL)
	req.Method = "POST"
	return &emailService{
		log:               logger.NewNop(),
		client:            &sendgrid.Client{Request: req},
		fromAuthEmail:     "verify@6ixapp.com",
		fromSupportEmail:  "no-reply@6ixapp.com",
		fromFallbackEmail: fallback,
	}
}

func TestSendEmailUsesVerifiedPrimarySender(t *testing.T) {
	stub := &sendgridStub{verified: map[string]bool{"verify@6ixapp.com": true}}
	svc := newTestEmailService(t, stub, "")

	err := svc.SendEmail(context.Background(), "user@example.com", "hi", "text", "<p>html</p>", "authorization")
	require.NoError(t, err)
	assert.Equal(t, []string{"verify@6ixapp.com"}, stub.sentFrom())
}

func TestSendEmailRetriesFromConfiguredFallback(t *testing.T) {
	stub := &sendgridStub{verified: map[string]bool{"backup@6ixapp.com": true}}
	svc := newTestEmailService(t, stub, "backup@6ixapp.com")

	err := svc.SendEmail(context.Background(), "user@example.com", "hi", "text", "<p>html</p>", "authorization")
	require.NoError(t, err)
	assert.Equal(t, []string{"verify@6ixapp.com", "backup@6ixapp.com"}, stub.sentFrom())
}

func TestSendEmailWithoutFallbackFailsAfterOneAttempt(t *testing.T) {
	stub := &sendgridStub{verified: map[string]bool{}}
	svc := newTestEmailService(t, stub, "")

	err := svc.SendEmail(context.Background(), "user@example.com", "hi", "text", "<p>html</p>", "authorization")
	require.Error(t, err)
	assert.Len(t, stub.sentFrom(), 1)
}
