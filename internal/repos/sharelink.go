package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/types"
)

type ShareLinkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, links []*types.ShareLink) ([]*types.ShareLink, error)
	GetByTokens(ctx context.Context, tx *gorm.DB, tokens []string) ([]*types.ShareLink, error)
	RecordHit(ctx context.Context, tx *gorm.DB, token string, now time.Time) error
}

type shareLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShareLinkRepo(db *gorm.DB, baseLog *logger.Logger) ShareLinkRepo {
	repoLog := baseLog.With("repo", "ShareLinkRepo")
	return &shareLinkRepo{db: db, log: repoLog}
}

func (slr *shareLinkRepo) Create(ctx context.Context, tx *gorm.DB, links []*types.ShareLink) ([]*types.ShareLink, error) {
	slr.log.Info("Starting Create ShareLinks now...")

	transaction := tx
	if transaction == nil {
		transaction = slr.db
	}

	if len(links) == 0 {
		return []*types.ShareLink{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&links).Error; err != nil {
		slr.log.Error("Failed to create share links", "error", err)
		return nil, err
	}
	slr.log.Info("Successfully created share links", "count", len(links))
	return links, nil
}

func (slr *shareLinkRepo) GetByTokens(ctx context.Context, tx *gorm.DB, tokens []string) ([]*types.ShareLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = slr.db
	}

	var results []*types.ShareLink
	if len(tokens) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("token IN ?", tokens).
		Find(&results).Error; err != nil {
		slr.log.Error("Failed to fetch share links by tokens", "error", err)
		return nil, err
	}
	return results, nil
}

// RecordHit bumps the counter and last-hit timestamp in one UPDATE.
func (slr *shareLinkRepo) RecordHit(ctx context.Context, tx *gorm.DB, token string, now time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = slr.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.ShareLink{}).
		Where("token = ?", token).
		UpdateColumns(map[string]interface{}{
			"hit_count":   gorm.Expr("hit_count + 1"),
			"last_hit_at": now,
		}).Error; err != nil {
		slr.log.Error("Failed to record share link hit", "error", err, "token", token)
		return err
	}
	slr.log.Debug("Share link hit recorded", "token", token)
	return nil
}
