package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/types"
)

type fakeSongRepo struct {
	songs []*types.Song
}

func (f *fakeSongRepo) Create(ctx context.Context, tx *gorm.DB, songs []*types.Song) ([]*types.Song, error) {
	f.songs = append(f.songs, songs...)
	return songs, nil
}

func (f *fakeSongRepo) GetByIDs(ctx context.Context, tx *gorm.DB, songIDs []uuid.UUID) ([]*types.Song, error) {
	var out []*types.Song
	for _, s := range f.songs {
		for _, id := range songIDs {
			if s.ID == id {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func (f *fakeSongRepo) GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Song, error) {
	var out []*types.Song
	for _, s := range f.songs {
		if s.Published {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSongRepo) IncrementPlayCount(ctx context.Context, tx *gorm.DB, songID uuid.UUID, delta int64) error {
	for _, s := range f.songs {
		if s.ID == songID {
			s.PlayCount += delta
		}
	}
	return nil
}

func (f *fakeSongRepo) IncrementLikeCount(ctx context.Context, tx *gorm.DB, songID uuid.UUID, delta int64) error {
	for _, s := range f.songs {
		if s.ID == songID {
			s.LikeCount += delta
		}
	}
	return nil
}

func newMusicHarness() (MusicService, *fakeSongRepo) {
	repo := &fakeSongRepo{}
	svc := NewMusicService(logger.NewNop(), repo, nil, nil)
	return svc, repo
}

func TestPlayIncrementsAndReturnsCount(t *testing.T) {
	svc, repo := newMusicHarness()
	song := &types.Song{ID: uuid.New(), Title: "Neon", Artist: "Glass", Published: true, PlayCount: 7}
	repo.songs = append(repo.songs, song)

	count, err := svc.Play(context.Background(), song.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), count)
	assert.Equal(t, int64(8), song.PlayCount)
}

func TestLikeIncrements(t *testing.T) {
	svc, repo := newMusicHarness()
	song := &types.Song{ID: uuid.New(), Title: "Neon", Artist: "Glass", Published: true}
	repo.songs = append(repo.songs, song)

	count, err := svc.Like(context.Background(), song.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPlayUnknownOrUnpublishedSong(t *testing.T) {
	svc, repo := newMusicHarness()
	hidden := &types.Song{ID: uuid.New(), Title: "Draft", Artist: "Glass", Published: false}
	repo.songs = append(repo.songs, hidden)

	_, err := svc.Play(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSongNotFound)

	_, err = svc.Play(context.Background(), hidden.ID)
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestListSongsOnlyPublished(t *testing.T) {
	svc, repo := newMusicHarness()
	repo.songs = append(repo.songs,
		&types.Song{ID: uuid.New(), Title: "A", Artist: "X", Published: true},
		&types.Song{ID: uuid.New(), Title: "B", Artist: "X", Published: false},
	)
	songs, err := svc.ListSongs(context.Background())
	require.NoError(t, err)
	assert.Len(t, songs, 1)
}

func TestAddSongValidates(t *testing.T) {
	svc, _ := newMusicHarness()
	_, err := svc.AddSong(context.Background(), "", "Glass", "https://cdn/a.mp3", "", 180)
	assert.Error(t, err)

	song, err := svc.AddSong(context.Background(), "  Neon  Nights ", "Glass", "https://cdn/a.mp3", "", 180)
	require.NoError(t, err)
	assert.Equal(t, "Neon Nights", song.Title)
	assert.True(t, song.Published)
}
