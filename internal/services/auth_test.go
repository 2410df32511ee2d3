package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/types"
)

//----------------------------------------------------------------------------------------------------------------------
// Fakes
//----------------------------------------------------------------------------------------------------------------------

type fakeUserRepo struct {
	users []*types.User
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	f.users = append(f.users, users...)
	return users, nil
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, id := range userIDs {
			if u.ID == id {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.User, error) {
	var out []*types.User
	for _, u := range f.users {
		for _, e := range emails {
			if u.Email == e {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	return users, nil
}

type fakeOneTimeCodeRepo struct {
	codes []*types.OneTimeCode
}

func (f *fakeOneTimeCodeRepo) Create(ctx context.Context, tx *gorm.DB, otCodes []*types.OneTimeCode) ([]*types.OneTimeCode, error) {
	f.codes = append(f.codes, otCodes...)
	return otCodes, nil
}

func (f *fakeOneTimeCodeRepo) GetByCodeHashes(ctx context.Context, tx *gorm.DB, codeHashes []string) ([]*types.OneTimeCode, error) {
	var out []*types.OneTimeCode
	for _, c := range f.codes {
		for _, h := range codeHashes {
			if c.CodeHash == h {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeOneTimeCodeRepo) GetActiveByEmail(ctx context.Context, tx *gorm.DB, email string, now time.Time) ([]*types.OneTimeCode, error) {
	var out []*types.OneTimeCode
	for _, c := range f.codes {
		if c.Email == email && c.Active(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeOneTimeCodeRepo) MarkUsed(ctx context.Context, tx *gorm.DB, otCodeID uuid.UUID, tokenHash string, now time.Time) error {
	for _, c := range f.codes {
		if c.ID == otCodeID {
			if c.Used {
				return repos.ErrCodeAlreadyUsed
			}
			c.Used = true
			c.UsedAt = &now
			if tokenHash != "" {
				c.TokenHash = &tokenHash
			}
			return nil
		}
	}
	return fmt.Errorf("code %s not found", otCodeID)
}

func (f *fakeOneTimeCodeRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, otCodeIDs []uuid.UUID) error {
	var kept []*types.OneTimeCode
	for _, c := range f.codes {
		drop := false
		for _, id := range otCodeIDs {
			if c.ID == id {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, c)
		}
	}
	f.codes = kept
	return nil
}

func (f *fakeOneTimeCodeRepo) FullDeleteUnusedByEmail(ctx context.Context, tx *gorm.DB, email string) error {
	var kept []*types.OneTimeCode
	for _, c := range f.codes {
		if c.Email == email && !c.Used {
			continue
		}
		kept = append(kept, c)
	}
	f.codes = kept
	return nil
}

func (f *fakeOneTimeCodeRepo) FullDeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) error {
	var kept []*types.OneTimeCode
	for _, c := range f.codes {
		if c.ExpiresAt.Before(cutoff) {
			continue
		}
		kept = append(kept, c)
	}
	f.codes = kept
	return nil
}

type fakeUserTokenRepo struct {
	tokens []*types.UserToken
}

func (f *fakeUserTokenRepo) Create(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) ([]*types.UserToken, error) {
	f.tokens = append(f.tokens, tokens...)
	return tokens, nil
}

func (f *fakeUserTokenRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	var out []*types.UserToken
	for _, t := range f.tokens {
		for _, id := range userIDs {
			if t.UserID == id {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeUserTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, accessTokens []string) ([]*types.UserToken, error) {
	var out []*types.UserToken
	for _, t := range f.tokens {
		for _, a := range accessTokens {
			if t.AccessToken == a {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeUserTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, refreshTokens []string) ([]*types.UserToken, error) {
	var out []*types.UserToken
	for _, t := range f.tokens {
		for _, r := range refreshTokens {
			if t.RefreshToken == r {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeUserTokenRepo) FullDeleteByTokens(ctx context.Context, tx *gorm.DB, tokens []*types.UserToken) error {
	var kept []*types.UserToken
	for _, t := range f.tokens {
		drop := false
		for _, d := range tokens {
			if t.ID == d.ID {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

func (f *fakeUserTokenRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	var kept []*types.UserToken
	for _, t := range f.tokens {
		drop := false
		for _, id := range userIDs {
			if t.UserID == id {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, t)
		}
	}
	f.tokens = kept
	return nil
}

type fakeEmailService struct {
	sends       int
	lastSubject string
	failNext    bool
}

func (f *fakeEmailService) SendEmail(ctx context.Context, toEmail, subject, plainText, htmlContent, emailType string) error {
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("simulated delivery failure")
	}
	f.sends++
	f.lastSubject = subject
	return nil
}

// lastCode pulls the 6-digit code out of the captured subject line.
func (f *fakeEmailService) lastCode() string {
	fields := strings.Fields(f.lastSubject)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

//----------------------------------------------------------------------------------------------------------------------
// Harness
//----------------------------------------------------------------------------------------------------------------------

type authHarness struct {
	svc    *authService
	users  *fakeUserRepo
	codes  *fakeOneTimeCodeRepo
	tokens *fakeUserTokenRepo
	email  *fakeEmailService
	now    time.Time
}

func newAuthHarness(t *testing.T) *authHarness {
	t.Helper()
	h := &authHarness{
		users:  &fakeUserRepo{},
		codes:  &fakeOneTimeCodeRepo{},
		tokens: &fakeUserTokenRepo{},
		email:  &fakeEmailService{},
		// JWT validation compares exp against the real clock, so the
		// simulated clock starts at wall time.
		now: time.Now().Truncate(time.Second),
	}
	svc := NewAuthService(nil, logger.NewNop(), h.users, h.codes, h.tokens, h.email, nil,
		"test-secret", time.Hour, 30*24*time.Hour)
	h.svc = svc.(*authService)
	h.svc.now = func() time.Time { return h.now }
	return h
}

func (h *authHarness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

//----------------------------------------------------------------------------------------------------------------------
// Issuance
//----------------------------------------------------------------------------------------------------------------------

func TestSendOneTimeCodeIssuesAndDelivers(t *testing.T) {
	h := newAuthHarness(t)

	result, err := h.svc.SendOneTimeCode(context.Background(), "Person@Example.COM ", "email", false)
	require.NoError(t, err)
	assert.True(t, result.Sent)
	assert.Equal(t, 1, h.email.sends)
	require.Len(t, h.codes.codes, 1)
	assert.Equal(t, "person@example.com", h.codes.codes[0].Email)
	assert.Len(t, h.email.lastCode(), 6)
}

func TestSendOneTimeCodeRejectsBadEmail(t *testing.T) {
	h := newAuthHarness(t)

	_, err := h.svc.SendOneTimeCode(context.Background(), "not-an-email", "email", false)
	assert.ErrorIs(t, err, ErrBadEmail)
	assert.Empty(t, h.codes.codes)
}

func TestDoubleIssuanceWithoutForceKeepsOneActiveCode(t *testing.T) {
	h := newAuthHarness(t)

	first, err := h.svc.SendOneTimeCode(context.Background(), "a@b.com", "email", false)
	require.NoError(t, err)
	assert.True(t, first.Sent)

	second, err := h.svc.SendOneTimeCode(context.Background(), "a@b.com", "email", false)
	require.NoError(t, err)
	assert.False(t, second.Sent, "second issuance should reuse the active code")

	active, err := h.codes.GetActiveByEmail(context.Background(), nil, "a@b.com", h.now)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, 1, h.email.sends)
}

func TestForcedResendReplacesPriorCode(t *testing.T) {
	h := newAuthHarness(t)

	_, err := h.svc.SendOneTimeCode(context.Background(), "a@b.com", "email", false)
	require.NoError(t, err)
	firstHash := h.codes.codes[0].CodeHash

	result, err := h.svc.SendOneTimeCode(context.Background(), "a@b.com", "email", true)
	require.NoError(t, err)
	assert.True(t, result.Sent)

	require.Len(t, h.codes.codes, 1)
	assert.NotEqual(t, firstHash, h.codes.codes[0].CodeHash)
	assert.Equal(t, 2, h.email.sends)
}

func TestDeliveryFailureRollsBackTheCode(t *testing.T) {
	h := newAuthHarness(t)
	h.email.failNext = true

	_, err := h.svc.SendOneTimeCode(context.Background(), "a@b.com", "email", false)
	assert.ErrorIs(t, err, ErrDeliveryFail)
	assert.Empty(t, h.codes.codes, "failed delivery must not leave a redeemable code behind")
}

//----------------------------------------------------------------------------------------------------------------------
// Verification
//----------------------------------------------------------------------------------------------------------------------

func issue(t *testing.T, h *authHarness, email string) string {
	t.Helper()
	_, err := h.svc.SendOneTimeCode(context.Background(), email, "email", false)
	require.NoError(t, err)
	code := h.email.lastCode()
	require.Len(t, code, 6)
	return code
}

func TestVerifyHappyPathMintsSessionAndCreatesUser(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "new@user.com")

	result, err := h.svc.VerifyOneTimeCode(context.Background(), "new@user.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, 3600, result.ExpiresIn)

	require.NotNil(t, result.User)
	assert.Equal(t, "new@user.com", result.User.Email)
	assert.Equal(t, types.PlanFree, result.User.Plan)
	require.NotNil(t, result.User.VerifiedAt)

	require.Len(t, h.codes.codes, 1)
	assert.True(t, h.codes.codes[0].Used)
	require.NotNil(t, h.codes.codes[0].TokenHash)
	require.Len(t, h.tokens.tokens, 1)
}

func TestVerifyWrongCodeDoesNotConsume(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "a@b.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err := h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)

	assert.False(t, h.codes.codes[0].Used, "a wrong guess must not consume the code")

	// The real code still works afterwards.
	_, err = h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", code)
	assert.NoError(t, err)
}

func TestVerifyRejectsCodeIssuedToAnotherEmail(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "a@b.com")

	_, err := h.svc.VerifyOneTimeCode(context.Background(), "c@d.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
}

func TestVerifyRedeemedCodeCannotBeRedeemedAgain(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "a@b.com")

	first, err := h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, first.AccessToken)

	_, err = h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
	require.Len(t, h.tokens.tokens, 1, "the replay must not mint a second session")
}

func TestVerifyExpiredCodeFailsEvenWhenCorrect(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "a@b.com")

	h.advance(10*time.Minute + time.Second)

	_, err := h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", code)
	assert.ErrorIs(t, err, ErrInvalidOrExpired)
	assert.False(t, h.codes.codes[0].Used)
}

func TestVerifyRejectsMalformedCode(t *testing.T) {
	h := newAuthHarness(t)
	issue(t, h, "a@b.com")

	for _, bad := range []string{"", "12345", "1234567", "12a456"} {
		_, err := h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", bad)
		assert.ErrorIs(t, err, ErrBadCode, "code %q", bad)
	}
}

//----------------------------------------------------------------------------------------------------------------------
// Sessions
//----------------------------------------------------------------------------------------------------------------------

func TestRefreshRotatesBothTokens(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "a@b.com")
	result, err := h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", code)
	require.NoError(t, err)

	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		RefreshToken: result.RefreshToken,
	})
	access, refresh, err := h.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEqual(t, result.RefreshToken, refresh)

	// The old refresh token is gone.
	_, _, err = h.svc.Refresh(ctx)
	assert.Error(t, err)
}

func TestLogoutDeletesTheSession(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "a@b.com")
	result, err := h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", code)
	require.NoError(t, err)

	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		TokenString: result.AccessToken,
	})
	require.NoError(t, h.svc.Logout(ctx))
	assert.Empty(t, h.tokens.tokens)
}

func TestSetContextFromTokenRoundTrip(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "a@b.com")
	result, err := h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", code)
	require.NoError(t, err)

	ctx, err := h.svc.SetContextFromToken(context.Background(), result.AccessToken, "refresh-123")
	require.NoError(t, err)
	rd := requestdata.GetRequestData(ctx)
	require.NotNil(t, rd)
	assert.Equal(t, result.User.ID, rd.UserID)
	assert.Equal(t, "a@b.com", rd.Email)
	assert.Equal(t, types.PlanFree, rd.Plan)
	assert.Equal(t, "refresh-123", rd.RefreshToken)
}

func TestSetContextFromTokenRejectsTampering(t *testing.T) {
	h := newAuthHarness(t)
	code := issue(t, h, "a@b.com")
	result, err := h.svc.VerifyOneTimeCode(context.Background(), "a@b.com", code)
	require.NoError(t, err)

	tampered := result.AccessToken[:len(result.AccessToken)-2] + "xx"
	_, err = h.svc.SetContextFromToken(context.Background(), tampered, "")
	assert.Error(t, err)
}
