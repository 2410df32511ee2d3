package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/types"
)

type fakeShareLinkRepo struct {
	links []*types.ShareLink
}

func (f *fakeShareLinkRepo) Create(ctx context.Context, tx *gorm.DB, links []*types.ShareLink) ([]*types.ShareLink, error) {
	f.links = append(f.links, links...)
	return links, nil
}

func (f *fakeShareLinkRepo) GetByTokens(ctx context.Context, tx *gorm.DB, tokens []string) ([]*types.ShareLink, error) {
	var out []*types.ShareLink
	for _, l := range f.links {
		for _, tok := range tokens {
			if l.Token == tok {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (f *fakeShareLinkRepo) RecordHit(ctx context.Context, tx *gorm.DB, token string, now time.Time) error {
	for _, l := range f.links {
		if l.Token == token {
			l.HitCount++
			l.LastHitAt = &now
		}
	}
	return nil
}

func newShareHarness() (*shareService, *fakeShareLinkRepo) {
	repo := &fakeShareLinkRepo{}
	svc := NewShareService(logger.NewNop(), repo, nil).(*shareService)
	return svc, repo
}

func TestCreateLinkMintsToken(t *testing.T) {
	svc, repo := newShareHarness()
	userID := uuid.New()
	ctx := requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})

	link, err := svc.CreateLink(ctx, "https://6ix.example/song/42", types.ShareKindSong, 0)
	require.NoError(t, err)
	assert.Len(t, link.Token, 22)
	require.NotNil(t, link.CreatedBy)
	assert.Equal(t, userID, *link.CreatedBy)
	assert.Nil(t, link.ExpiresAt)
	assert.Len(t, repo.links, 1)
}

func TestCreateLinkRejectsBadTargets(t *testing.T) {
	svc, _ := newShareHarness()
	for _, target := range []string{"", "not-a-url", "ftp://x.com/a", "/relative/path", "javascript:alert(1)"} {
		_, err := svc.CreateLink(context.Background(), target, types.ShareKindSong, 0)
		assert.ErrorIs(t, err, ErrBadTargetURL, "target %q", target)
	}
}

func TestCreateLinkRejectsUnknownKind(t *testing.T) {
	svc, _ := newShareHarness()
	_, err := svc.CreateLink(context.Background(), "https://ok.example/x", "poster", 0)
	assert.Error(t, err)
}

func TestResolveRecordsHit(t *testing.T) {
	svc, repo := newShareHarness()
	link, err := svc.CreateLink(context.Background(), "https://6ix.example/song/42", types.ShareKindSong, 0)
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, "https://6ix.example/song/42", resolved.TargetURL)
	assert.Equal(t, int64(1), repo.links[0].HitCount)
	assert.NotNil(t, repo.links[0].LastHitAt)

	_, err = svc.Resolve(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.links[0].HitCount)
}

func TestResolveUnknownToken(t *testing.T) {
	svc, _ := newShareHarness()
	_, err := svc.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrShareLinkNotFound)
}

func TestResolveExpiredLink(t *testing.T) {
	svc, repo := newShareHarness()
	link, err := svc.CreateLink(context.Background(), "https://6ix.example/song/42", types.ShareKindSong, time.Hour)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Resolve(context.Background(), link.Token)
	assert.ErrorIs(t, err, ErrShareLinkNotFound)
	assert.Equal(t, int64(0), repo.links[0].HitCount, "expired links must not record hits")
}
