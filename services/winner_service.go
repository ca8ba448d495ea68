package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tennis-club/events"
	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
)

// SelectionResult is what the submitting player gets back.
type SelectionResult struct {
	Status   models.SelectionStatus `json:"status"`
	WinnerID *int                   `json:"winner_id,omitempty"`
}

// WinnerService runs two-party winner confirmation: a match outcome is
// written only when both participants name the same winner.
type WinnerService interface {
	SubmitSelection(ctx context.Context, matchID, selectorID, selectedWinnerID int) (*SelectionResult, error)
}

type transition int

const (
	transitionNone transition = iota
	transitionFinalized
	transitionDisputed
)

type winnerService struct {
	tx            repositories.Transactor
	matchRepo     repositories.MatchRepository
	selectionRepo repositories.SelectionRepository
	userRepo      repositories.UserRepository
	notifier      Notifier
	evaluator     AchievementEvaluator
	publisher     EventPublisher
	logger        *slog.Logger
}

func NewWinnerService(
	tx repositories.Transactor,
	matchRepo repositories.MatchRepository,
	selectionRepo repositories.SelectionRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	evaluator AchievementEvaluator,
	publisher EventPublisher,
	logger *slog.Logger,
) WinnerService {
	return &winnerService{
		tx:            tx,
		matchRepo:     matchRepo,
		selectionRepo: selectionRepo,
		userRepo:      userRepo,
		notifier:      notifier,
		evaluator:     evaluator,
		publisher:     publisher,
		logger:        logger,
	}
}

// SubmitSelection upserts the selector's choice and re-evaluates the match
// with its row locked, so concurrent submissions for one match are
// evaluated one after another against the stored selections.
func (s *winnerService) SubmitSelection(ctx context.Context, matchID, selectorID, selectedWinnerID int) (*SelectionResult, error) {
	var (
		match  *models.Match
		result *SelectionResult
		step   transition
	)

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		m, err := s.matchRepo.GetForUpdate(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return fmt.Errorf("%w: id %d", ErrMatchNotFound, matchID)
			}
			return fmt.Errorf("%w: load match %d: %w", ErrPersistenceFailure, matchID, err)
		}
		if !m.HasParticipant(selectorID) {
			return fmt.Errorf("%w: user %d, match %d", ErrNotAParticipant, selectorID, matchID)
		}
		if !m.HasParticipant(selectedWinnerID) {
			return fmt.Errorf("%w: user %d, match %d", ErrInvalidWinnerCandidate, selectedWinnerID, matchID)
		}
		match = m

		if m.IsFinalized() {
			if *m.WinnerID != selectedWinnerID {
				return fmt.Errorf("%w: match %d was won by %d", ErrAlreadyFinalizedConflict, matchID, *m.WinnerID)
			}
			result = completedResult(*m.WinnerID)
			return nil
		}

		changed, err := s.selectionRepo.Upsert(ctx, exec, matchID, selectorID, selectedWinnerID)
		if err != nil {
			return fmt.Errorf("%w: upsert selection for match %d: %w", ErrPersistenceFailure, matchID, err)
		}

		selections, err := s.selectionRepo.ListByMatch(ctx, exec, matchID)
		if err != nil {
			return fmt.Errorf("%w: list selections for match %d: %w", ErrPersistenceFailure, matchID, err)
		}

		status, winnerID := models.EvaluateSelections(m, selections)
		switch status {
		case models.SelectionPending:
			result = &SelectionResult{Status: models.SelectionPending}

		case models.SelectionDisputed:
			result = &SelectionResult{Status: models.SelectionDisputed}
			if changed {
				step = transitionDisputed
			}

		case models.SelectionCompleted:
			wrote, err := s.matchRepo.SetWinner(ctx, exec, matchID, winnerID)
			if err != nil {
				if errors.Is(err, repositories.ErrMatchWinnerConflict) {
					return fmt.Errorf("%w: match %d", ErrAlreadyFinalizedConflict, matchID)
				}
				return fmt.Errorf("%w: set winner for match %d: %w", ErrPersistenceFailure, matchID, err)
			}
			m.WinnerID = &winnerID
			m.Status = models.MatchStatusCompleted
			result = completedResult(winnerID)
			if wrote {
				step = transitionFinalized
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if step == transitionNone {
		return result, nil
	}

	// Транзакция зафиксирована; побочные эффекты не должны зависеть от отмены запроса.
	sideCtx := context.WithoutCancel(ctx)
	s.publishMatchUpdated(sideCtx, match)

	switch step {
	case transitionFinalized:
		s.onFinalized(sideCtx, match, *result.WinnerID)
	case transitionDisputed:
		s.onDisputed(sideCtx, match)
	}
	return result, nil
}

func completedResult(winnerID int) *SelectionResult {
	w := winnerID
	return &SelectionResult{Status: models.SelectionCompleted, WinnerID: &w}
}

func (s *winnerService) onFinalized(ctx context.Context, match *models.Match, winnerID int) {
	names := s.playerNames(ctx, match)

	for _, playerID := range []int{match.Player1ID, match.Player2ID} {
		opponentID, _ := match.OpponentOf(playerID)
		payload := models.MatchCompletedPayload{
			MatchID:      match.ID,
			WinnerID:     winnerID,
			OpponentID:   opponentID,
			OpponentName: names[opponentID],
			Won:          playerID == winnerID,
		}
		if err := s.notifier.Notify(ctx, playerID, payload); err != nil {
			s.logger.ErrorContext(ctx, "failed to send match completed notification",
				slog.Int("match_id", match.ID), slog.Int("player_id", playerID), slog.Any("error", err))
		}
	}

	// Игроки оцениваются параллельно; для одного игрока match_played идет раньше match_won.
	var g errgroup.Group
	for _, playerID := range []int{match.Player1ID, match.Player2ID} {
		g.Go(func() error {
			opponentID, _ := match.OpponentOf(playerID)
			ev := models.AchievementEvent{
				Type:       models.EventMatchPlayed,
				PlayerID:   playerID,
				MatchID:    match.ID,
				OpponentID: opponentID,
			}
			s.evaluate(ctx, ev)
			if playerID == winnerID {
				ev.Type = models.EventMatchWon
				s.evaluate(ctx, ev)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.InfoContext(ctx, "match finalized", slog.Int("match_id", match.ID), slog.Int("winner_id", winnerID))
}

func (s *winnerService) onDisputed(ctx context.Context, match *models.Match) {
	names := s.playerNames(ctx, match)

	for _, playerID := range []int{match.Player1ID, match.Player2ID} {
		opponentID, _ := match.OpponentOf(playerID)
		payload := models.MatchDisputePayload{
			MatchID:      match.ID,
			OpponentID:   opponentID,
			OpponentName: names[opponentID],
		}
		if err := s.notifier.Notify(ctx, playerID, payload); err != nil {
			s.logger.ErrorContext(ctx, "failed to send match dispute notification",
				slog.Int("match_id", match.ID), slog.Int("player_id", playerID), slog.Any("error", err))
		}
	}
	s.logger.InfoContext(ctx, "match result disputed", slog.Int("match_id", match.ID))
}

func (s *winnerService) evaluate(ctx context.Context, ev models.AchievementEvent) {
	if err := s.evaluator.Evaluate(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "achievement evaluation failed",
			slog.String("event", string(ev.Type)), slog.Int("player_id", ev.PlayerID),
			slog.Int("match_id", ev.MatchID), slog.Any("error", err))
	}
}

// playerNames is best effort: messages fall back to a generic opponent.
func (s *winnerService) playerNames(ctx context.Context, match *models.Match) map[int]string {
	names := make(map[int]string, 2)
	if s.userRepo == nil {
		return names
	}
	users, err := s.userRepo.ListByIDs(ctx, []int{match.Player1ID, match.Player2ID})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load player names", slog.Int("match_id", match.ID), slog.Any("error", err))
		return names
	}
	for id, u := range users {
		names[id] = u.DisplayName()
	}
	return names
}

func (s *winnerService) publishMatchUpdated(ctx context.Context, match *models.Match) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.Event{Name: events.MatchUpdated, Payload: match}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish match update", slog.Int("match_id", match.ID), slog.Any("error", err))
	}
}
