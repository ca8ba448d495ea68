package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
	"github.com/Dosada05/tennis-club/storage"
)

// MatchDetail is a match as seen by one of its players.
type MatchDetail struct {
	Match       *models.Match            `json:"match"`
	Player1     *models.User             `json:"player1,omitempty"`
	Player2     *models.User             `json:"player2,omitempty"`
	Selections  []models.WinnerSelection `json:"selections"`
	State       models.ConfirmationState `json:"confirmation_state"`
	MySelection *int                     `json:"my_selection,omitempty"`
}

type MatchService interface {
	GetMatchDetail(ctx context.Context, matchID, viewerID int) (*MatchDetail, error)
	ListForPlayer(ctx context.Context, playerID int) ([]*models.Match, error)
	Hide(ctx context.Context, matchID, playerID int) error
}

type matchService struct {
	matchRepo     repositories.MatchRepository
	selectionRepo repositories.SelectionRepository
	userRepo      repositories.UserRepository
	uploader      storage.FileUploader
	logger        *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	selectionRepo repositories.SelectionRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:     matchRepo,
		selectionRepo: selectionRepo,
		userRepo:      userRepo,
		uploader:      uploader,
		logger:        logger,
	}
}

func (s *matchService) GetMatchDetail(ctx context.Context, matchID, viewerID int) (*MatchDetail, error) {
	var (
		match      *models.Match
		selections []models.WinnerSelection
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.matchRepo.GetByID(gctx, nil, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return fmt.Errorf("%w: id %d", ErrMatchNotFound, matchID)
			}
			return fmt.Errorf("%w: load match %d: %w", ErrPersistenceFailure, matchID, err)
		}
		match = m
		return nil
	})
	g.Go(func() error {
		sels, err := s.selectionRepo.ListByMatch(gctx, nil, matchID)
		if err != nil {
			return fmt.Errorf("%w: list selections for match %d: %w", ErrPersistenceFailure, matchID, err)
		}
		selections = sels
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !match.HasParticipant(viewerID) {
		return nil, fmt.Errorf("%w: user %d, match %d", ErrNotAParticipant, viewerID, matchID)
	}

	detail := &MatchDetail{
		Match:      match,
		Selections: selections,
		State:      models.DeriveConfirmationState(match, selections),
	}
	for _, sel := range selections {
		if sel.SelectorID == viewerID {
			winner := sel.SelectedWinnerID
			detail.MySelection = &winner
		}
	}

	users, err := s.userRepo.ListByIDs(ctx, []int{match.Player1ID, match.Player2ID})
	if err != nil {
		// профили не критичны для ответа
		s.logger.WarnContext(ctx, "failed to load match players",
			slog.Int("match_id", matchID), slog.Any("error", err))
		return detail, nil
	}
	detail.Player1 = users[match.Player1ID]
	detail.Player2 = users[match.Player2ID]
	populateAvatarURL(detail.Player1, s.uploader)
	populateAvatarURL(detail.Player2, s.uploader)
	return detail, nil
}

func (s *matchService) ListForPlayer(ctx context.Context, playerID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByPlayer(ctx, playerID, false)
	if err != nil {
		return nil, fmt.Errorf("%w: list matches of player %d: %w", ErrPersistenceFailure, playerID, err)
	}
	return matches, nil
}

// Hide removes the match from the player's own list only; the outcome and
// the opponent's view are untouched.
func (s *matchService) Hide(ctx context.Context, matchID, playerID int) error {
	if err := s.matchRepo.Hide(ctx, matchID, playerID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return fmt.Errorf("%w: id %d for user %d", ErrMatchNotFound, matchID, playerID)
		}
		return fmt.Errorf("%w: hide match %d: %w", ErrPersistenceFailure, matchID, err)
	}
	return nil
}
