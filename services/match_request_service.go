package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tennis-club/events"
	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
)

const maxMatchRequestMessage = 500

type CreateMatchRequestInput struct {
	OpponentID int        `json:"opponent_id"`
	ProposedAt *time.Time `json:"proposed_at,omitempty"`
	Message    *string    `json:"message,omitempty"`
}

type MatchRequestService interface {
	Create(ctx context.Context, requesterID int, input CreateMatchRequestInput) (*models.MatchRequest, error)
	// Accept creates the match; only the invited player may accept.
	Accept(ctx context.Context, requestID, userID int) (*models.Match, error)
	// Decline is available to both sides: the requester withdraws, the
	// opponent refuses.
	Decline(ctx context.Context, requestID, userID int) error
	ListIncoming(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error)
	ListOutgoing(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error)
}

type matchRequestService struct {
	tx          repositories.Transactor
	requestRepo repositories.MatchRequestRepository
	matchRepo   repositories.MatchRepository
	userRepo    repositories.UserRepository
	notifier    Notifier
	publisher   EventPublisher
	logger      *slog.Logger
}

func NewMatchRequestService(
	tx repositories.Transactor,
	requestRepo repositories.MatchRequestRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	publisher EventPublisher,
	logger *slog.Logger,
) MatchRequestService {
	return &matchRequestService{
		tx:          tx,
		requestRepo: requestRepo,
		matchRepo:   matchRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *matchRequestService) Create(ctx context.Context, requesterID int, input CreateMatchRequestInput) (*models.MatchRequest, error) {
	if input.OpponentID <= 0 {
		return nil, fmt.Errorf("%w: opponent_id is required", ErrValidationFailed)
	}
	if input.OpponentID == requesterID {
		return nil, ErrMatchRequestSelf
	}
	if input.Message != nil {
		msg := strings.TrimSpace(*input.Message)
		if len(msg) > maxMatchRequestMessage {
			return nil, fmt.Errorf("%w: message must be at most %d characters", ErrValidationFailed, maxMatchRequestMessage)
		}
		if msg == "" {
			input.Message = nil
		} else {
			input.Message = &msg
		}
	}

	users, err := s.userRepo.ListByIDs(ctx, []int{requesterID, input.OpponentID})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	if _, ok := users[input.OpponentID]; !ok {
		return nil, fmt.Errorf("%w: opponent %d", ErrUserNotFound, input.OpponentID)
	}

	req := &models.MatchRequest{
		RequesterID: requesterID,
		OpponentID:  input.OpponentID,
		Status:      models.MatchRequestPending,
		ProposedAt:  input.ProposedAt,
		Message:     input.Message,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchRequestDuplicate):
			return nil, ErrMatchRequestDuplicate
		case errors.Is(err, repositories.ErrMatchRequestPlayerInvalid):
			return nil, fmt.Errorf("%w: opponent %d", ErrUserNotFound, input.OpponentID)
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	s.notify(ctx, input.OpponentID, models.MatchRequestPayload{
		RequestID: req.ID,
		FromID:    requesterID,
		FromName:  users[requesterID].DisplayName(),
		Status:    models.MatchRequestPending,
	})
	return req, nil
}

func (s *matchRequestService) Accept(ctx context.Context, requestID, userID int) (*models.Match, error) {
	var (
		req   *models.MatchRequest
		match *models.Match
	)

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		req, err = s.lockPending(ctx, exec, requestID)
		if err != nil {
			return err
		}
		if req.OpponentID != userID {
			return fmt.Errorf("%w: request %d, user %d", ErrMatchRequestForbidden, requestID, userID)
		}

		match = &models.Match{
			RequestID:   &req.ID,
			Player1ID:   req.RequesterID,
			Player2ID:   req.OpponentID,
			Status:      models.MatchStatusScheduled,
			ScheduledAt: req.ProposedAt,
		}
		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			if errors.Is(err, repositories.ErrMatchRequestAlreadyUsed) {
				return fmt.Errorf("%w: request %d", ErrMatchRequestNotPending, requestID)
			}
			return fmt.Errorf("%w: create match for request %d: %w", ErrPersistenceFailure, requestID, err)
		}

		if err := s.requestRepo.UpdateStatus(ctx, exec, req.ID, models.MatchRequestAccepted, &match.ID); err != nil {
			return fmt.Errorf("%w: accept request %d: %w", ErrPersistenceFailure, requestID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sideCtx := context.WithoutCancel(ctx)
	s.logger.InfoContext(sideCtx, "match request accepted",
		slog.Int("request_id", requestID), slog.Int("match_id", match.ID))

	fromName := ""
	if u, err := s.userRepo.GetByID(sideCtx, userID); err == nil {
		fromName = u.DisplayName()
	}
	s.notify(sideCtx, req.RequesterID, models.MatchRequestPayload{
		RequestID: req.ID,
		FromID:    userID,
		FromName:  fromName,
		Status:    models.MatchRequestAccepted,
		MatchID:   &match.ID,
	})
	if s.publisher != nil {
		if err := s.publisher.Publish(sideCtx, events.Event{Name: events.MatchCreated, Payload: match}); err != nil {
			s.logger.WarnContext(sideCtx, "failed to publish match creation",
				slog.Int("match_id", match.ID), slog.Any("error", err))
		}
	}
	return match, nil
}

func (s *matchRequestService) Decline(ctx context.Context, requestID, userID int) error {
	return s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		req, err := s.lockPending(ctx, exec, requestID)
		if err != nil {
			return err
		}
		if req.OpponentID != userID && req.RequesterID != userID {
			return fmt.Errorf("%w: request %d, user %d", ErrMatchRequestForbidden, requestID, userID)
		}
		if err := s.requestRepo.UpdateStatus(ctx, exec, req.ID, models.MatchRequestDeclined, nil); err != nil {
			return fmt.Errorf("%w: decline request %d: %w", ErrPersistenceFailure, requestID, err)
		}
		return nil
	})
}

func (s *matchRequestService) lockPending(ctx context.Context, exec repositories.SQLExecutor, requestID int) (*models.MatchRequest, error) {
	req, err := s.requestRepo.GetForUpdate(ctx, exec, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchRequestNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrMatchRequestNotFound, requestID)
		}
		return nil, fmt.Errorf("%w: load request %d: %w", ErrPersistenceFailure, requestID, err)
	}
	if req.Status != models.MatchRequestPending {
		return nil, fmt.Errorf("%w: request %d is %s", ErrMatchRequestNotPending, requestID, req.Status)
	}
	return req, nil
}

func (s *matchRequestService) ListIncoming(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error) {
	reqs, err := s.requestRepo.ListIncoming(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return reqs, nil
}

func (s *matchRequestService) ListOutgoing(ctx context.Context, userID int, status *models.MatchRequestStatus) ([]*models.MatchRequest, error) {
	reqs, err := s.requestRepo.ListOutgoing(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return reqs, nil
}

func (s *matchRequestService) notify(ctx context.Context, userID int, payload models.MatchRequestPayload) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, payload); err != nil {
		s.logger.ErrorContext(ctx, "failed to send match request notification",
			slog.Int("request_id", payload.RequestID), slog.Int("user_id", userID), slog.Any("error", err))
	}
}
