package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/normalization"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/socket"
	"github.com/six-app/six-backend/internal/types"
)

var ErrSongNotFound = errors.New("song not found")

type MusicService interface {
	ListSongs(ctx context.Context) ([]*types.Song, error)
	Play(ctx context.Context, songID uuid.UUID) (int64, error)
	Like(ctx context.Context, songID uuid.UUID) (int64, error)
	AddSong(ctx context.Context, title, artist, audioURL, coverURL string, durationSeconds int) (*types.Song, error)
}

type musicService struct {
	log         *logger.Logger
	songRepo    repos.SongRepo
	redisClient *redis.Client
	hub         *socket.Hub
}

// NewMusicService wires the song store to the live layer. redisClient
// and hub are optional; without them counts come straight from the DB
// and nothing is broadcast.
func NewMusicService(
	log *logger.Logger,
	songRepo repos.SongRepo,
	redisClient *redis.Client,
	hub *socket.Hub,
) MusicService {
	serviceLog := log.With("service", "MusicService")
	return &musicService{
		log:         serviceLog,
		songRepo:    songRepo,
		redisClient: redisClient,
		hub:         hub,
	}
}

func songCounterKey(songID uuid.UUID, kind string) string {
	return fmt.Sprintf("six:song:%s:%s", songID, kind)
}

func (ms *musicService) ListSongs(ctx context.Context) ([]*types.Song, error) {
	songs, err := ms.songRepo.GetPublished(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	if ms.redisClient == nil || len(songs) == 0 {
		return songs, nil
	}

	// Overlay live Redis counts on the stored columns. The stored value
	// wins when the key is cold or Redis is unreachable.
	keys := make([]string, 0, len(songs)*2)
	for _, s := range songs {
		keys = append(keys, songCounterKey(s.ID, "plays"), songCounterKey(s.ID, "likes"))
	}
	vals, err := ms.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		ms.log.Warn("Failed to read live counters, serving stored counts", "error", err)
		return songs, nil
	}
	for i, s := range songs {
		if n, ok := counterValue(vals[i*2]); ok && n > s.PlayCount {
			s.PlayCount = n
		}
		if n, ok := counterValue(vals[i*2+1]); ok && n > s.LikeCount {
			s.LikeCount = n
		}
	}
	return songs, nil
}

func counterValue(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (ms *musicService) Play(ctx context.Context, songID uuid.UUID) (int64, error) {
	return ms.bump(ctx, songID, "plays")
}

func (ms *musicService) Like(ctx context.Context, songID uuid.UUID) (int64, error) {
	return ms.bump(ctx, songID, "likes")
}

func (ms *musicService) bump(ctx context.Context, songID uuid.UUID, kind string) (int64, error) {
	ms.log.Info("Recording engagement now...", "songID", songID, "kind", kind)

	found, err := ms.songRepo.GetByIDs(ctx, nil, []uuid.UUID{songID})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch song: %w", err)
	}
	if len(found) == 0 || !found[0].Published {
		return 0, ErrSongNotFound
	}
	song := found[0]

	stored := song.PlayCount
	if kind == "likes" {
		stored = song.LikeCount
	}

	//1) Live Counter: Seed From The Stored Column, Then INCR
	count := stored + 1
	if ms.redisClient != nil {
		key := songCounterKey(songID, kind)
		if err := ms.redisClient.SetNX(ctx, key, stored, 0).Err(); err != nil {
			ms.log.Warn("Failed to seed live counter", "error", err, "key", key)
		}
		if n, incrErr := ms.redisClient.Incr(ctx, key).Result(); incrErr != nil {
			ms.log.Warn("Failed to bump live counter, falling back to stored count", "error", incrErr)
		} else {
			count = n
		}
	}

	//2) Write-Through To The Song Row
	if kind == "likes" {
		err = ms.songRepo.IncrementLikeCount(ctx, nil, songID, 1)
	} else {
		err = ms.songRepo.IncrementPlayCount(ctx, nil, songID, 1)
	}
	if err != nil {
		ms.log.Warn("Failed to persist engagement counter", "error", err, "kind", kind)
		return 0, fmt.Errorf("failed to persist %s count: %w", kind, err)
	}

	//3) Fan The Event Out
	if ms.hub != nil {
		eventKind := "play"
		if kind == "likes" {
			eventKind = "like"
		}
		ms.hub.BroadcastEngagement(ctx, socket.EngagementEvent{
			Kind:   eventKind,
			Target: songID.String(),
			Count:  count,
		})
	}

	ms.log.Info("Successfully recorded engagement :)", "songID", songID, "kind", kind, "count", count)
	return count, nil
}

func (ms *musicService) AddSong(ctx context.Context, title, artist, audioURL, coverURL string, durationSeconds int) (*types.Song, error) {
	ms.log.Info("Starting AddSong now...")

	title = normalization.ParseInputString(title)
	artist = normalization.ParseInputString(artist)
	if title == "" || artist == "" || audioURL == "" {
		return nil, fmt.Errorf("title, artist and audio_url are required")
	}
	song := &types.Song{
		ID:              uuid.New(),
		Title:           title,
		Artist:          artist,
		AudioURL:        audioURL,
		CoverURL:        coverURL,
		DurationSeconds: durationSeconds,
		Published:       true,
	}
	created, err := ms.songRepo.Create(ctx, nil, []*types.Song{song})
	if err != nil {
		return nil, fmt.Errorf("failed to create song: %w", err)
	}
	ms.log.Info("Successfully added song :)", "songID", created[0].ID)
	return created[0], nil
}
