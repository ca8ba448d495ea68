package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
	"github.com/Dosada05/tennis-club/storage"
)

type Profile struct {
	User         *models.User               `json:"user"`
	Progress     *PlayerProgress            `json:"progress"`
	Achievements []models.PlayerAchievement `json:"achievements"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*Profile, error)
	UpdateAvatar(ctx context.Context, userID int, file io.Reader, contentType string) (*models.User, error)
}

type userService struct {
	userRepo     repositories.UserRepository
	progression  ProgressionService
	achievements AchievementService
	uploader     storage.FileUploader
	logger       *slog.Logger
}

// NewUserService: uploader may be nil when R2 is not configured.
func NewUserService(
	userRepo repositories.UserRepository,
	progression ProgressionService,
	achievements AchievementService,
	uploader storage.FileUploader,
	logger *slog.Logger,
) UserService {
	return &userService{
		userRepo:     userRepo,
		progression:  progression,
		achievements: achievements,
		uploader:     uploader,
		logger:       logger,
	}
}

func (s *userService) getUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return user, nil
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*Profile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	populateAvatarURL(user, s.uploader)

	progress, err := s.progression.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.achievements.ListForPlayer(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Progress: progress, Achievements: achievements}, nil
}

// UpdateAvatar uploads under a fresh key and only then removes the old
// object, so a failed upload keeps the current avatar.
func (s *userService) UpdateAvatar(ctx context.Context, userID int, file io.Reader, contentType string) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrAvatarUploadDisabled
	}
	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldKey := derefString(user.AvatarKey)

	key := storage.AvatarKey(userID, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar for user %d: %w", userID, err)
	}

	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		if delErr := s.uploader.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove orphaned avatar", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	if oldKey != "" && oldKey != key {
		if err := s.uploader.Delete(context.WithoutCancel(ctx), oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous avatar",
				slog.Int("user_id", userID), slog.String("key", oldKey), slog.Any("error", err))
		}
	}

	user.AvatarKey = &key
	populateAvatarURL(user, s.uploader)
	return user, nil
}
