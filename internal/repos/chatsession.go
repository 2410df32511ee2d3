package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/types"
)

type ChatSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sessions []*types.ChatSession) ([]*types.ChatSession, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.ChatSession, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ChatSession, error)
	Update(ctx context.Context, tx *gorm.DB, sessions []*types.ChatSession) ([]*types.ChatSession, error)
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) error
}

type chatSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChatSessionRepo {
	repoLog := baseLog.With("repo", "ChatSessionRepo")
	return &chatSessionRepo{db: db, log: repoLog}
}

func (csr *chatSessionRepo) Create(ctx context.Context, tx *gorm.DB, sessions []*types.ChatSession) ([]*types.ChatSession, error) {
	csr.log.Info("Starting Create ChatSessions now...")

	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	if len(sessions) == 0 {
		return []*types.ChatSession{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&sessions).Error; err != nil {
		csr.log.Error("Failed to create chat sessions", "error", err)
		return nil, err
	}
	csr.log.Info("Successfully created chat sessions", "count", len(sessions))
	return sessions, nil
}

func (csr *chatSessionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) ([]*types.ChatSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	var results []*types.ChatSession
	if len(sessionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", sessionIDs).
		Find(&results).Error; err != nil {
		csr.log.Error("Failed to fetch chat sessions by IDs", "error", err)
		return nil, err
	}
	return results, nil
}

func (csr *chatSessionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ChatSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	var results []*types.ChatSession
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		csr.log.Error("Failed to fetch chat sessions by user ID", "error", err)
		return nil, err
	}
	return results, nil
}

func (csr *chatSessionRepo) Update(ctx context.Context, tx *gorm.DB, sessions []*types.ChatSession) ([]*types.ChatSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	for i := range sessions {
		if err := transaction.WithContext(ctx).Save(sessions[i]).Error; err != nil {
			csr.log.Error("Failed to update chat session", "error", err, "sessionID", sessions[i].ID)
			return nil, err
		}
	}
	return sessions, nil
}

func (csr *chatSessionRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, sessionIDs []uuid.UUID) error {
	csr.log.Info("Starting FullDeleteByIDs for ChatSessions now...")

	transaction := tx
	if transaction == nil {
		transaction = csr.db
	}

	if len(sessionIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("id IN ?", sessionIDs).
		Delete(&types.ChatSession{}).Error; err != nil {
		csr.log.Error("Failed to FULL delete chat sessions by IDs", "error", err)
		return err
	}
	csr.log.Info("Successfully FULL deleted chat sessions", "count", len(sessionIDs))
	return nil
}
