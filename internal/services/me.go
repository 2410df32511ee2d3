package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/repos"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/types"
)

var ErrUserNotFound = errors.New("user not found")

type MeService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateDisplayName(ctx context.Context, displayName string) (*types.User, error)
}

type meService struct {
	log           *logger.Logger
	userRepo      repos.UserRepo
	avatarService AvatarService
}

// NewMeService serves the authenticated profile. avatarService is
// optional; without it users simply have no generated avatar.
func NewMeService(log *logger.Logger, userRepo repos.UserRepo, avatarService AvatarService) MeService {
	serviceLog := log.With("service", "MeService")
	return &meService{
		log:           serviceLog,
		userRepo:      userRepo,
		avatarService: avatarService,
	}
}

func (ms *meService) GetMe(ctx context.Context) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no request data found in context")
	}
	found, err := ms.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrUserNotFound
	}
	user := found[0]

	// First fetch after signup renders the initial-letter avatar. A
	// failure here never blocks the profile response.
	if user.AvatarURL == "" && ms.avatarService != nil {
		if err := ms.avatarService.CreateAndUploadUserAvatar(ctx, nil, user); err != nil {
			ms.log.Warn("Failed to generate avatar lazily, serving profile without one", "error", err, "userID", user.ID)
		}
	}
	return user, nil
}

func (ms *meService) UpdateDisplayName(ctx context.Context, displayName string) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("no request data found in context")
	}
	if displayName == "" {
		return nil, fmt.Errorf("display_name is required")
	}
	found, err := ms.userRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if len(found) == 0 {
		return nil, ErrUserNotFound
	}
	user := found[0]
	user.DisplayName = displayName
	updated, err := ms.userRepo.Update(ctx, nil, []*types.User{user})
	if err != nil {
		return nil, fmt.Errorf("failed to update display name: %w", err)
	}
	return updated[0], nil
}
