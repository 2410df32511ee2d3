package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/types"
)

type FileObjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, objs []*types.FileObject) ([]*types.FileObject, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, objIDs []uuid.UUID) ([]*types.FileObject, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FileObject, error)
	UpdateAnalysis(ctx context.Context, tx *gorm.DB, objID uuid.UUID, analysis datatypes.JSON) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, objIDs []uuid.UUID) error
}

type fileObjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFileObjectRepo(db *gorm.DB, baseLog *logger.Logger) FileObjectRepo {
	repoLog := baseLog.With("repo", "FileObjectRepo")
	return &fileObjectRepo{db: db, log: repoLog}
}

func (fr *fileObjectRepo) Create(ctx context.Context, tx *gorm.DB, objs []*types.FileObject) ([]*types.FileObject, error) {
	fr.log.Info("Starting Create FileObjects now...")

	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(objs) == 0 {
		return []*types.FileObject{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&objs).Error; err != nil {
		fr.log.Error("Failed to create file objects", "error", err)
		return nil, err
	}
	fr.log.Info("Successfully created file objects", "count", len(objs))
	return objs, nil
}

func (fr *fileObjectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, objIDs []uuid.UUID) ([]*types.FileObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.FileObject
	if len(objIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", objIDs).
		Find(&results).Error; err != nil {
		fr.log.Error("Failed to fetch file objects by IDs", "error", err)
		return nil, err
	}
	return results, nil
}

func (fr *fileObjectRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.FileObject, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.FileObject
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		fr.log.Error("Failed to fetch file objects by user ID", "error", err)
		return nil, err
	}
	return results, nil
}

func (fr *fileObjectRepo) UpdateAnalysis(ctx context.Context, tx *gorm.DB, objID uuid.UUID, analysis datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).
		Model(&types.FileObject{}).
		Where("id = ?", objID).
		UpdateColumn("analysis", analysis).Error; err != nil {
		fr.log.Error("Failed to update file object analysis", "error", err, "objID", objID)
		return err
	}
	fr.log.Debug("File object analysis updated", "objID", objID)
	return nil
}

func (fr *fileObjectRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, objIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(objIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", objIDs).
		Delete(&types.FileObject{}).Error; err != nil {
		fr.log.Error("Failed to FULL delete file objects by IDs", "error", err)
		return err
	}
	return nil
}
