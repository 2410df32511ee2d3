package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/types"
)

type SongRepo interface {
	Create(ctx context.Context, tx *gorm.DB, songs []*types.Song) ([]*types.Song, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, songIDs []uuid.UUID) ([]*types.Song, error)
	GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Song, error)
	IncrementPlayCount(ctx context.Context, tx *gorm.DB, songID uuid.UUID, delta int64) error
	IncrementLikeCount(ctx context.Context, tx *gorm.DB, songID uuid.UUID, delta int64) error
}

type songRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSongRepo(db *gorm.DB, baseLog *logger.Logger) SongRepo {
	repoLog := baseLog.With("repo", "SongRepo")
	return &songRepo{db: db, log: repoLog}
}

func (sr *songRepo) Create(ctx context.Context, tx *gorm.DB, songs []*types.Song) ([]*types.Song, error) {
	sr.log.Info("Starting Create Songs now...")

	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(songs) == 0 {
		return []*types.Song{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&songs).Error; err != nil {
		sr.log.Error("Failed to create songs", "error", err)
		return nil, err
	}
	sr.log.Info("Successfully created songs", "count", len(songs))
	return songs, nil
}

func (sr *songRepo) GetByIDs(ctx context.Context, tx *gorm.DB, songIDs []uuid.UUID) ([]*types.Song, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Song
	if len(songIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", songIDs).
		Find(&results).Error; err != nil {
		sr.log.Error("Failed to fetch songs by IDs", "error", err)
		return nil, err
	}
	return results, nil
}

func (sr *songRepo) GetPublished(ctx context.Context, tx *gorm.DB) ([]*types.Song, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Song
	if err := transaction.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		sr.log.Error("Failed to fetch published songs", "error", err)
		return nil, err
	}
	sr.log.Debug("Published songs fetched", "count", len(results))
	return results, nil
}

// Increment helpers write through with a single UPDATE so concurrent
// plays never lose counts to read-modify-write races.

func (sr *songRepo) IncrementPlayCount(ctx context.Context, tx *gorm.DB, songID uuid.UUID, delta int64) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Song{}).
		Where("id = ?", songID).
		UpdateColumn("play_count", gorm.Expr("play_count + ?", delta)).Error; err != nil {
		sr.log.Error("Failed to increment song play count", "error", err, "songID", songID)
		return err
	}
	return nil
}

func (sr *songRepo) IncrementLikeCount(ctx context.Context, tx *gorm.DB, songID uuid.UUID, delta int64) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Song{}).
		Where("id = ?", songID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error; err != nil {
		sr.log.Error("Failed to increment song like count", "error", err, "songID", songID)
		return err
	}
	return nil
}
