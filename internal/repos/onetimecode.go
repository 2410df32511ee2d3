package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/types"
)

// ErrCodeAlreadyUsed is returned by MarkUsed when the locked row has
// already been redeemed, so the second redemption can be rejected.
var ErrCodeAlreadyUsed = errors.New("one-time code already used")

type OneTimeCodeRepo interface {
	// CREATE
	Create(ctx context.Context, tx *gorm.DB, otCodes []*types.OneTimeCode) ([]*types.OneTimeCode, error)

	// READ
	GetByCodeHashes(ctx context.Context, tx *gorm.DB, codeHashes []string) ([]*types.OneTimeCode, error)
	GetActiveByEmail(ctx context.Context, tx *gorm.DB, email string, now time.Time) ([]*types.OneTimeCode, error)

	// PARTIAL UPDATE
	MarkUsed(ctx context.Context, tx *gorm.DB, otCodeID uuid.UUID, tokenHash string, now time.Time) error

	// FULL (HARD) DELETE
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, otCodeIDs []uuid.UUID) error
	FullDeleteUnusedByEmail(ctx context.Context, tx *gorm.DB, email string) error
	FullDeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) error
}

type oneTimeCodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOneTimeCodeRepo(db *gorm.DB, baseLog *logger.Logger) OneTimeCodeRepo {
	repoLog := baseLog.With("repo", "OneTimeCodeRepo")
	return &oneTimeCodeRepo{db: db, log: repoLog}
}

// ----------------------------------------------------------------
// CREATE
// ----------------------------------------------------------------

func (ocr *oneTimeCodeRepo) Create(ctx context.Context, tx *gorm.DB, otCodes []*types.OneTimeCode) ([]*types.OneTimeCode, error) {
	ocr.log.Info("Starting Create OneTimeCodes now...")

	transaction := tx
	if transaction == nil {
		transaction = ocr.db
	}

	if len(otCodes) == 0 {
		ocr.log.Debug("No OneTimeCodes provided, returning empty slice")
		return []*types.OneTimeCode{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&otCodes).Error; err != nil {
		ocr.log.Error("Failed to create one-time codes", "error", err)
		return nil, err
	}
	ocr.log.Info("Successfully created one-time codes", "count", len(otCodes))
	return otCodes, nil
}

// ----------------------------------------------------------------
// READ
// ----------------------------------------------------------------

func (ocr *oneTimeCodeRepo) GetByCodeHashes(ctx context.Context, tx *gorm.DB, codeHashes []string) ([]*types.OneTimeCode, error) {
	transaction := tx
	if transaction == nil {
		transaction = ocr.db
	}

	var results []*types.OneTimeCode
	if len(codeHashes) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("code_hash IN ?", codeHashes).
		Find(&results).Error; err != nil {
		ocr.log.Error("Failed to fetch one-time codes by code hashes", "error", err)
		return nil, err
	}
	ocr.log.Debug("OneTimeCodes fetched by code hashes", "count", len(results))
	return results, nil
}

func (ocr *oneTimeCodeRepo) GetActiveByEmail(ctx context.Context, tx *gorm.DB, email string, now time.Time) ([]*types.OneTimeCode, error) {
	transaction := tx
	if transaction == nil {
		transaction = ocr.db
	}

	var results []*types.OneTimeCode
	if email == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email = ? AND used = ? AND expires_at > ?", email, false, now).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		ocr.log.Error("Failed to fetch active one-time codes by email", "error", err)
		return nil, err
	}
	ocr.log.Debug("Active OneTimeCodes fetched by email", "count", len(results))
	return results, nil
}

// ----------------------------------------------------------------
// PARTIAL UPDATE
// ----------------------------------------------------------------

// MarkUsed locks the row, then flips it to used exactly once. The row
// lock is what closes the race between two concurrent redemptions of
// the same code.
func (ocr *oneTimeCodeRepo) MarkUsed(ctx context.Context, tx *gorm.DB, otCodeID uuid.UUID, tokenHash string, now time.Time) error {
	ocr.log.Info("Starting MarkUsed for OneTimeCode now...")

	transaction := tx
	if transaction == nil {
		transaction = ocr.db
	}

	if otCodeID == uuid.Nil {
		ocr.log.Debug("otCodeID is nil, skipping MarkUsed")
		return nil
	}

	var otc types.OneTimeCode
	if err := transaction.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", otCodeID).
		First(&otc).Error; err != nil {
		ocr.log.Error("Failed to load one-time code in MarkUsed", "error", err)
		return err
	}

	if otc.Used {
		ocr.log.Warn("OneTimeCode already used, rejecting second redemption", "otCodeID", otCodeID)
		return ErrCodeAlreadyUsed
	}
	otc.Used = true
	otc.UsedAt = &now
	if tokenHash != "" {
		otc.TokenHash = &tokenHash
	}

	if err := transaction.WithContext(ctx).Save(&otc).Error; err != nil {
		ocr.log.Error("Failed to save one-time code as used", "error", err)
		return err
	}
	ocr.log.Info("Successfully marked one-time code as used", "otCodeID", otCodeID)
	return nil
}

// ----------------------------------------------------------------
// FULL (HARD) DELETE
// ----------------------------------------------------------------

func (ocr *oneTimeCodeRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, otCodeIDs []uuid.UUID) error {
	ocr.log.Info("Starting FullDeleteByIDs for OneTimeCodes now...")

	transaction := tx
	if transaction == nil {
		transaction = ocr.db
	}

	if len(otCodeIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", otCodeIDs).
		Delete(&types.OneTimeCode{}).Error; err != nil {
		ocr.log.Error("Failed to FULL delete one-time codes by IDs", "error", err)
		return err
	}
	ocr.log.Info("Successfully FULL deleted one-time codes by IDs", "count", len(otCodeIDs))
	return nil
}

func (ocr *oneTimeCodeRepo) FullDeleteUnusedByEmail(ctx context.Context, tx *gorm.DB, email string) error {
	ocr.log.Info("Starting FullDeleteUnusedByEmail for OneTimeCodes now...")

	transaction := tx
	if transaction == nil {
		transaction = ocr.db
	}

	if email == "" {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("email = ? AND used = ?", email, false).
		Delete(&types.OneTimeCode{}).Error; err != nil {
		ocr.log.Error("Failed to FULL delete unused one-time codes by email", "error", err)
		return err
	}
	ocr.log.Info("Successfully FULL deleted unused one-time codes by email")
	return nil
}

func (ocr *oneTimeCodeRepo) FullDeleteExpiredBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = ocr.db
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("expires_at < ?", cutoff).
		Delete(&types.OneTimeCode{}).Error; err != nil {
		ocr.log.Error("Failed to FULL delete expired one-time codes", "error", err)
		return err
	}
	ocr.log.Debug("Expired one-time codes swept", "cutoff", cutoff)
	return nil
}
