package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/socket"
	"github.com/six-app/six-backend/internal/types"
)

var (
	ErrShareLinkNotFound = errors.New("share link not found or expired")
	ErrBadTargetURL      = errors.New("target_url must be an absolute http(s) URL")
)

type ShareService interface {
	CreateLink(ctx context.Context, targetURL, kind string, ttl time.Duration) (*types.ShareLink, error)
	Resolve(ctx context.Context, token string) (*types.ShareLink, error)
}

type shareService struct {
	log           *logger.Logger
	shareLinkRepo repos.ShareLinkRepo
	hub           *socket.Hub

	now func() time.Time
}

func NewShareService(log *logger.Logger, shareLinkRepo repos.ShareLinkRepo, hub *socket.Hub) ShareService {
	serviceLog := log.With("service", "ShareService")
	return &shareService{
		log:           serviceLog,
		shareLinkRepo: shareLinkRepo,
		hub:           hub,
		now:           time.Now,
	}
}

// ShareToken derives a 22-character URL-safe token from a fresh UUID.
func ShareToken() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])
}

func (ss *shareService) CreateLink(ctx context.Context, targetURL, kind string, ttl time.Duration) (*types.ShareLink, error) {
	ss.log.Info("Starting CreateLink now...", "kind", kind)

	parsed, err := url.Parse(targetURL)
	if err != nil || !parsed.IsAbs() || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrBadTargetURL
	}
	switch kind {
	case types.ShareKindSong, types.ShareKindChat, types.ShareKindProfile:
	default:
		return nil, fmt.Errorf("unknown share kind %q", kind)
	}

	link := &types.ShareLink{
		ID:        uuid.New(),
		Token:     ShareToken(),
		TargetURL: targetURL,
		Kind:      kind,
	}
	if rd := requestdata.GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		userID := rd.UserID
		link.CreatedBy = &userID
	}
	if ttl > 0 {
		expiresAt := ss.now().Add(ttl)
		link.ExpiresAt = &expiresAt
	}

	created, err := ss.shareLinkRepo.Create(ctx, nil, []*types.ShareLink{link})
	if err != nil {
		ss.log.Warn("Failed to create share link, cannot proceed. Returning error.", "error", err)
		return nil, fmt.Errorf("failed to create share link: %w", err)
	}
	ss.log.Info("Successfully created share link :)", "token", created[0].Token)
	return created[0], nil
}

func (ss *shareService) Resolve(ctx context.Context, token string) (*types.ShareLink, error) {
	found, err := ss.shareLinkRepo.GetByTokens(ctx, nil, []string{token})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch share link: %w", err)
	}
	now := ss.now()
	if len(found) == 0 || found[0].Expired(now) {
		return nil, ErrShareLinkNotFound
	}
	link := found[0]

	if err := ss.shareLinkRepo.RecordHit(ctx, nil, token, now); err != nil {
		// The redirect still goes out; the count catches up next hit.
		ss.log.Warn("Failed to record share link hit", "error", err, "token", token)
	} else {
		link.HitCount++
		link.LastHitAt = &now
	}

	if ss.hub != nil {
		ss.hub.BroadcastEngagement(ctx, socket.EngagementEvent{
			Kind:   "share_hit",
			Target: link.Token,
			Count:  link.HitCount,
		})
	}
	return link, nil
}
