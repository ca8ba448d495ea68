package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
	"github.com/Dosada05/tennis-club/storage"
)

const (
	defaultUserPageLimit = 20
	maxUserPageLimit     = 100
)

// AdminService covers the member directory and staff-reported activities.
type AdminService interface {
	ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error)
	RecordActivity(ctx context.Context, playerID int, activity models.AchievementEventType) (*AwardResult, error)
}

type adminService struct {
	userRepo     repositories.UserRepository
	achievements AchievementService
	uploader     storage.FileUploader
}

func NewAdminService(userRepo repositories.UserRepository, achievements AchievementService, uploader storage.FileUploader) AdminService {
	return &adminService{userRepo: userRepo, achievements: achievements, uploader: uploader}
}

func (s *adminService) ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultUserPageLimit
	}
	if filter.Limit > maxUserPageLimit {
		filter.Limit = maxUserPageLimit
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return models.UserListResponse{}, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	for _, u := range users {
		populateAvatarURL(u, s.uploader)
	}
	return models.UserListResponse{
		Users:      users,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *adminService) RecordActivity(ctx context.Context, playerID int, activity models.AchievementEventType) (*AwardResult, error) {
	user, err := s.userRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, playerID)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if user.Role != models.RolePlayer {
		return nil, fmt.Errorf("%w: user %d is not a player", ErrValidationFailed, playerID)
	}
	return s.achievements.RecordActivity(ctx, playerID, activity)
}
