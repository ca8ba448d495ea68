package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tennis-club/events"
	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
)

type NotificationList struct {
	Items       []*models.Notification `json:"items"`
	UnreadCount int                    `json:"unread_count"`
}

type NotificationService interface {
	Notifier
	List(ctx context.Context, userID int, unreadOnly bool, limit int) (*NotificationList, error)
	MarkRead(ctx context.Context, id, userID int) error
	MarkAllRead(ctx context.Context, userID int) (int64, error)
}

type notificationService struct {
	repo      repositories.NotificationRepository
	userRepo  repositories.UserRepository
	publisher EventPublisher
	mailer    Mailer
	logger    *slog.Logger
}

// NewNotificationService: publisher и mailer могут быть nil.
func NewNotificationService(
	repo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	publisher EventPublisher,
	mailer Mailer,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		repo:      repo,
		userRepo:  userRepo,
		publisher: publisher,
		mailer:    mailer,
		logger:    logger,
	}
}

// emailedKinds are also delivered by email when a mailer is configured.
var emailedKinds = map[models.NotificationKind]bool{
	models.NotificationMatchDispute: true,
}

// Notify stores the notification; push and email delivery are best effort.
func (s *notificationService) Notify(ctx context.Context, userID int, payload models.NotificationPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", payload.Kind(), err)
	}

	n := &models.Notification{
		UserID:  userID,
		Kind:    payload.Kind(),
		Title:   payload.Title(),
		Message: payload.Message(),
		Data:    data,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.Event{Name: events.NotificationCreated, Payload: n}); err != nil {
			s.logger.WarnContext(ctx, "failed to publish notification",
				slog.Int("notification_id", n.ID), slog.Int("user_id", userID), slog.Any("error", err))
		}
	}

	if s.mailer != nil && emailedKinds[n.Kind] {
		s.sendEmail(ctx, n)
	}
	return nil
}

func (s *notificationService) sendEmail(ctx context.Context, n *models.Notification) {
	user, err := s.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "cannot email notification, user lookup failed",
			slog.Int("user_id", n.UserID), slog.Any("error", err))
		return
	}
	if err := s.mailer.SendNotificationEmail(user.Email, n.Title, n.Message); err != nil {
		s.logger.ErrorContext(ctx, "failed to email notification",
			slog.Int("notification_id", n.ID), slog.Int("user_id", n.UserID), slog.Any("error", err))
	}
}

func (s *notificationService) List(ctx context.Context, userID int, unreadOnly bool, limit int) (*NotificationList, error) {
	items, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return &NotificationList{Items: items, UnreadCount: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID int) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return fmt.Errorf("%w: id %d", ErrNotificationNotFound, id)
		}
		return fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return n, nil
}
