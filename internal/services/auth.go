package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/normalization"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/templates"
	"github.com/six-app/six-backend/internal/types"
	"github.com/six-app/six-backend/internal/utils"
)

const otpExpiry = 10 * time.Minute

// Sentinel errors handlers translate into the uniform taxonomy.
var (
	// ErrInvalidOrExpired covers every rejection of a code: unknown,
	// already used, or past expiry. Callers get no oracle about which.
	ErrInvalidOrExpired = errors.New("code is invalid or expired")

	ErrBadEmail     = errors.New("invalid email address")
	ErrBadCode      = errors.New("code must be 6 digits")
	ErrDeliveryFail = errors.New("could not deliver one-time code")
)

type JWTClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Plan  string `json:"plan,omitempty"`
}

// SendResult reports what issuance actually did, so clients can tell an
// idempotent reuse apart from a fresh send.
type SendResult struct {
	Sent    bool   `json:"sent"`
	Channel string `json:"channel"`
}

// VerifyResult carries the session minted for a redeemed code.
type VerifyResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         *types.User `json:"user"`
}

type AuthService interface {
	SendOneTimeCode(ctx context.Context, email, channel string, force bool) (SendResult, error)
	VerifyOneTimeCode(ctx context.Context, email, code string) (VerifyResult, error)
	Refresh(ctx context.Context) (string, string, error)
	Logout(ctx context.Context) error

	SetContextFromToken(ctx context.Context, tokenString, refreshToken string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	otCodeRepo    repos.OneTimeCodeRepo
	userTokenRepo repos.UserTokenRepo
	emailService  EmailService
	textService   TextService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	otCodeRepo repos.OneTimeCodeRepo,
	userTokenRepo repos.UserTokenRepo,
	emailService EmailService,
	textService TextService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		otCodeRepo:    otCodeRepo,
		userTokenRepo: userTokenRepo,
		emailService:  emailService,
		textService:   textService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

//----------------------------------------------------------------------------------------------------------------------
// SendOneTimeCode
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) SendOneTimeCode(ctx context.Context, rawEmail, channel string, force bool) (SendResult, error) {
	as.log.Info("Starting SendOneTimeCode now...")

	//1) Normalize And Validate Input
	email := normalization.ParseEmail(rawEmail)
	if email == "" {
		as.log.Warn("Email failed normalization, cannot proceed.", "rawEmail", rawEmail)
		return SendResult{}, ErrBadEmail
	}
	if channel == "" {
		channel = "email"
	}
	now := as.now()

	//2) Concurrent Reads: Existing User + Active Codes
	var foundUsers []*types.User
	var activeCodes []*types.OneTimeCode
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := as.userRepo.GetByEmails(gctx, nil, []string{email})
		if err != nil {
			return fmt.Errorf("failed to check for existing user: %w", err)
		}
		foundUsers = users
		return nil
	})
	g.Go(func() error {
		codes, err := as.otCodeRepo.GetActiveByEmail(gctx, nil, email, now)
		if err != nil {
			return fmt.Errorf("failed to look up active one-time codes: %w", err)
		}
		activeCodes = codes
		return nil
	})
	if err := g.Wait(); err != nil {
		as.log.Warn("Concurrent lookups failed, cannot proceed. Returning error.", "error", err)
		return SendResult{}, err
	}

	//3) Opportunistic Sweep Of Long-Expired Rows
	if err := as.otCodeRepo.FullDeleteExpiredBefore(ctx, nil, now.Add(-24*time.Hour)); err != nil {
		as.log.Warn("Failed to sweep expired one-time codes, continuing anyway", "error", err)
	}

	//4) Idempotent Reuse Of An Active Code
	if len(activeCodes) > 0 && !force {
		as.log.Info("Active one-time code already exists for email, skipping send", "email", email)
		return SendResult{Sent: false, Channel: channel}, nil
	}

	//5) Forced Resend Deletes Prior Unused Codes
	if force {
		if err := as.otCodeRepo.FullDeleteUnusedByEmail(ctx, nil, email); err != nil {
			as.log.Warn("Failed to delete prior unused codes on forced resend, cannot proceed. Returning error.", "error", err)
			return SendResult{}, fmt.Errorf("failed to delete prior unused codes: %w", err)
		}
	}

	//6) Generate And Persist The New Code
	code, err := utils.GenerateOneTimeCode()
	if err != nil {
		as.log.Warn("Failed to generate one-time code, cannot proceed. Returning error.", "error", err)
		return SendResult{}, err
	}
	record := &types.OneTimeCode{
		ID:        uuid.New(),
		Email:     email,
		CodeHash:  utils.HashOneTimeCode(email, code),
		ExpiresAt: now.Add(otpExpiry),
	}
	created, err := as.otCodeRepo.Create(ctx, nil, []*types.OneTimeCode{record})
	if err != nil {
		as.log.Warn("Failed to persist one-time code, cannot proceed. Returning error.", "error", err)
		return SendResult{}, fmt.Errorf("failed to persist one-time code: %w", err)
	}
	record = created[0]

	//7) Deliver, Rolling The Row Back On Failure
	var user *types.User
	if len(foundUsers) > 0 {
		user = foundUsers[0]
	}
	if dErr := as.deliverOneTimeCode(ctx, email, code, channel, user); dErr != nil {
		as.log.Warn("Delivery failed, rolling back the one-time code row", "error", dErr)
		if rbErr := as.otCodeRepo.FullDeleteByIDs(ctx, nil, []uuid.UUID{record.ID}); rbErr != nil {
			as.log.Error("Failed to roll back one-time code after delivery failure", "error", rbErr)
		}
		return SendResult{}, fmt.Errorf("%w: %v", ErrDeliveryFail, dErr)
	}

	as.log.Info("Successfully issued one-time code :)", "email", email, "channel", channel)
	return SendResult{Sent: true, Channel: channel}, nil
}

func (as *authService) deliverOneTimeCode(ctx context.Context, email, code, channel string, user *types.User) error {
	if channel == "sms" {
		if as.textService == nil {
			return fmt.Errorf("sms delivery is not configured")
		}
		if user == nil || user.PhoneNumber == nil || *user.PhoneNumber == "" {
			return fmt.Errorf("no phone number on file for %s", email)
		}
		body := fmt.Sprintf("6ix code: %s (expires in %d minutes)", code, int(otpExpiry.Minutes()))
		return as.textService.SendText(ctx, *user.PhoneNumber, body)
	}

	data := templates.OtpEmailData{Code: code, ExpiryMinutes: int(otpExpiry.Minutes())}
	html, err := templates.RenderOtpEmail(data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s is your 6ix verification code", code)
	return as.emailService.SendEmail(ctx, email, subject, templates.OtpEmailPlainText(data), html, "authorization")
}

//----------------------------------------------------------------------------------------------------------------------
// VerifyOneTimeCode
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) VerifyOneTimeCode(ctx context.Context, rawEmail, code string) (VerifyResult, error) {
	as.log.Info("Starting VerifyOneTimeCode now...")

	//1) Normalize And Validate Input
	email := normalization.ParseEmail(rawEmail)
	if email == "" {
		return VerifyResult{}, ErrBadEmail
	}
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return VerifyResult{}, ErrBadCode
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return VerifyResult{}, ErrBadCode
		}
	}
	now := as.now()

	//2) Look The Record Up By Digest
	codeHash := utils.HashOneTimeCode(email, code)
	found, err := as.otCodeRepo.GetByCodeHashes(ctx, nil, []string{codeHash})
	if err != nil {
		as.log.Warn("Failed to fetch one-time code by hash, cannot proceed. Returning error.", "error", err)
		return VerifyResult{}, fmt.Errorf("failed to fetch one-time code: %w", err)
	}
	if len(found) == 0 || found[0].Email != email || !found[0].Active(now) {
		as.log.Warn("One-time code rejected", "email", email)
		return VerifyResult{}, ErrInvalidOrExpired
	}
	record := found[0]

	//3) Transaction: Get-Or-Create User, Mint Session, Consume Code
	var result VerifyResult
	err = as.inTransaction(ctx, func(tx *gorm.DB) error {
		user, uErr := as.getOrCreateUser(ctx, tx, email, now)
		if uErr != nil {
			return uErr
		}

		accessToken, gErr := as.generateAccessToken(user, now)
		if gErr != nil {
			// One retry before giving up; a transient signing failure
			// should not burn the code.
			as.log.Warn("Access token generation failed, retrying once", "error", gErr)
			accessToken, gErr = as.generateAccessToken(user, now)
			if gErr != nil {
				return fmt.Errorf("failed to generate access token: %w", gErr)
			}
		}
		refreshToken := uuid.New().String()

		userToken := &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    now.Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); cErr != nil {
			return fmt.Errorf("failed to create user token: %w", cErr)
		}

		if mErr := as.otCodeRepo.MarkUsed(ctx, tx, record.ID, utils.HashToken(refreshToken), now); mErr != nil {
			if errors.Is(mErr, repos.ErrCodeAlreadyUsed) {
				return ErrInvalidOrExpired
			}
			return fmt.Errorf("failed to mark one-time code used: %w", mErr)
		}

		result = VerifyResult{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(as.accessTTL.Seconds()),
			User:         user,
		}
		return nil
	})
	if err != nil {
		return VerifyResult{}, err
	}

	as.log.Info("Successfully verified one-time code :)", "email", email)
	return result, nil
}

func (as *authService) getOrCreateUser(ctx context.Context, tx *gorm.DB, email string, now time.Time) (*types.User, error) {
	users, err := as.userRepo.GetByEmails(ctx, tx, []string{email})
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(users) > 0 {
		user := users[0]
		if user.VerifiedAt == nil {
			user.VerifiedAt = &now
			if _, err := as.userRepo.Update(ctx, tx, []*types.User{user}); err != nil {
				return nil, fmt.Errorf("failed to mark user verified: %w", err)
			}
		}
		return user, nil
	}

	displayName := email
	if at := strings.Index(email, "@"); at > 0 {
		displayName = email[:at]
	}
	user := &types.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		Plan:        types.PlanFree,
		VerifiedAt:  &now,
	}
	created, err := as.userRepo.Create(ctx, tx, []*types.User{user})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("failed to create user in DB")
	}
	as.log.Info("Created new user on first verification", "email", email)
	return created[0], nil
}

//----------------------------------------------------------------------------------------------------------------------
// Refresh / Logout
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) Refresh(ctx context.Context) (string, string, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		as.log.Warn("No Request Data found in context, cannot proceed.")
		return "", "", fmt.Errorf("no request data found in context")
	}
	if rd.RefreshToken == "" {
		as.log.Warn("RefreshToken in Request Data is an empty string, cannot proceed.")
		return "", "", fmt.Errorf("refresh token missing from request")
	}
	now := as.now()

	var accessToken string
	var newRefreshToken string
	err := as.inTransaction(ctx, func(tx *gorm.DB) error {
		foundTokens, fTErr := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{rd.RefreshToken})
		if fTErr != nil {
			as.log.Warn("Error fetching refresh token, cannot proceed. Returning error.", "error", fTErr)
			return fmt.Errorf("error fetching refresh token: %w", fTErr)
		}
		if len(foundTokens) == 0 {
			return fmt.Errorf("unknown refresh token")
		}
		existingToken := foundTokens[0]

		if existingToken.ExpiresAt.Before(now) {
			if dTErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dTErr != nil {
				as.log.Warn("Refresh token expired, error deleting expired refresh token.", "error", dTErr)
				return fmt.Errorf("refresh token expired, error deleting: %w", dTErr)
			}
			return fmt.Errorf("refresh token expired")
		}

		users, uErr := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existingToken.UserID})
		if uErr != nil {
			return fmt.Errorf("failed to load user for refresh: %w", uErr)
		}
		if len(users) == 0 {
			return fmt.Errorf("no user found for the given refresh token")
		}
		user := users[0]

		tok, genErr := as.generateAccessToken(user, now)
		if genErr != nil {
			return fmt.Errorf("failed to generate new access token: %w", genErr)
		}
		accessToken = tok
		newRefreshToken = uuid.New().String()
		newUserToken := &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  tok,
			RefreshToken: newRefreshToken,
			ExpiresAt:    now.Add(as.refreshTTL),
		}
		if _, cErr := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{newUserToken}); cErr != nil {
			return fmt.Errorf("failed to create new user token: %w", cErr)
		}
		if dErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, []*types.UserToken{existingToken}); dErr != nil {
			return fmt.Errorf("failed to remove old refresh token: %w", dErr)
		}
		return nil
	})
	if err != nil {
		as.log.Warn("Failed refresh transaction, cannot proceed. Returning error.", "error", err)
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		as.log.Warn("No Request Data found in context, cannot proceed.")
		return fmt.Errorf("no request data found in context")
	}
	if rd.TokenString == "" {
		as.log.Warn("TokenString in Request Data is an empty string, cannot proceed.")
		return fmt.Errorf("token string missing from request")
	}
	return as.inTransaction(ctx, func(tx *gorm.DB) error {
		foundTokens, fTErr := as.userTokenRepo.GetByAccessTokens(ctx, tx, []string{rd.TokenString})
		if fTErr != nil {
			as.log.Warn("Error finding user token from token string.", "error", fTErr)
			return fmt.Errorf("error finding user token from token string: %w", fTErr)
		}
		if len(foundTokens) == 0 {
			return nil
		}
		if tDErr := as.userTokenRepo.FullDeleteByTokens(ctx, tx, foundTokens); tDErr != nil {
			as.log.Warn("Error deleting user token.", "error", tDErr)
			return fmt.Errorf("error deleting user token: %w", tDErr)
		}
		return nil
	})
}

// inTransaction runs fn inside a DB transaction. The repos fall back
// to their own handle when tx is nil, which keeps service logic
// exercisable against fakes.
func (as *authService) inTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if as.db == nil {
		return fn(nil)
	}
	return as.db.WithContext(ctx).Transaction(fn)
}

//----------------------------------------------------------------------------------------------------------------------
// Tokens / Context
//----------------------------------------------------------------------------------------------------------------------

func (as *authService) generateAccessToken(user *types.User, now time.Time) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		Email: user.Email,
		Plan:  user.Plan,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString, refreshToken string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid token claims")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid subject in token: %w", err)
	}
	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: refreshToken,
		UserID:       userID,
		Email:        claims.Email,
		Plan:         claims.Plan,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
