package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/progression"
	"github.com/Dosada05/tennis-club/repositories"
)

type AwardResult struct {
	PlayerID   int             `json:"player_id"`
	Amount     int             `json:"amount"`
	Reason     models.XPReason `json:"reason"`
	PreviousXP int             `json:"previous_xp"`
	TotalXP    int             `json:"total_xp"`
	OldLevel   int             `json:"old_level"`
	NewLevel   int             `json:"new_level"`
}

func (r *AwardResult) LeveledUp() bool {
	return r.NewLevel > r.OldLevel
}

// PlayerProgress is the progress view of one player.
type PlayerProgress struct {
	PlayerID int `json:"player_id"`
	progression.LevelProgress
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

type ProgressionService interface {
	AwardXP(ctx context.Context, playerID, amount int, reason models.XPReason) (*AwardResult, error)
	GetProgress(ctx context.Context, playerID int) (*PlayerProgress, error)
	ListTransactions(ctx context.Context, playerID, limit int) ([]models.XPTransaction, error)
}

type progressionService struct {
	tx       repositories.Transactor
	expRepo  repositories.ExperienceRepository
	notifier Notifier
	logger   *slog.Logger
}

func NewProgressionService(
	tx repositories.Transactor,
	expRepo repositories.ExperienceRepository,
	notifier Notifier,
	logger *slog.Logger,
) ProgressionService {
	return &progressionService{
		tx:       tx,
		expRepo:  expRepo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *progressionService) AwardXP(ctx context.Context, playerID, amount int, reason models.XPReason) (*AwardResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: award amount must be positive, got %d", ErrInvalidInput, amount)
	}

	res := &AwardResult{PlayerID: playerID, Amount: amount, Reason: reason}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		exp, err := s.expRepo.GetOrCreateForUpdate(ctx, exec, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrExperiencePlayer) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, playerID)
			}
			return fmt.Errorf("%w: lock experience of player %d: %w", ErrPersistenceFailure, playerID, err)
		}
		res.PreviousXP = exp.TotalXP

		total, err := s.expRepo.AddXP(ctx, exec, playerID, amount)
		if err != nil {
			return fmt.Errorf("%w: add xp to player %d: %w", ErrPersistenceFailure, playerID, err)
		}
		res.TotalXP = total

		if err := s.expRepo.InsertTransaction(ctx, exec, &models.XPTransaction{
			PlayerID: playerID,
			Amount:   amount,
			Reason:   reason,
		}); err != nil {
			return fmt.Errorf("%w: record xp transaction for player %d: %w", ErrPersistenceFailure, playerID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.OldLevel, err = progression.LevelFor(res.PreviousXP); err != nil {
		return nil, err
	}
	if res.NewLevel, err = progression.LevelFor(res.TotalXP); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "xp awarded",
		slog.Int("player_id", playerID), slog.Int("amount", amount),
		slog.String("reason", string(reason)), slog.Int("total_xp", res.TotalXP))

	if res.LeveledUp() {
		s.OnLevelUp(context.WithoutCancel(ctx), playerID, res.OldLevel, res.NewLevel, res.TotalXP)
	}
	return res, nil
}

// OnLevelUp raises a single notification even when several levels were
// crossed by one award.
func (s *progressionService) OnLevelUp(ctx context.Context, playerID, oldLevel, newLevel, totalXP int) {
	s.logger.InfoContext(ctx, "player leveled up",
		slog.Int("player_id", playerID), slog.Int("old_level", oldLevel), slog.Int("new_level", newLevel))

	if s.notifier == nil {
		return
	}
	payload := models.LevelUpPayload{OldLevel: oldLevel, NewLevel: newLevel, CurrentXP: totalXP}
	if err := s.notifier.Notify(ctx, playerID, payload); err != nil {
		s.logger.ErrorContext(ctx, "failed to send level up notification",
			slog.Int("player_id", playerID), slog.Any("error", err))
	}
}

func (s *progressionService) GetProgress(ctx context.Context, playerID int) (*PlayerProgress, error) {
	view := &PlayerProgress{PlayerID: playerID}

	exp, err := s.expRepo.GetByPlayer(ctx, nil, playerID)
	switch {
	case err == nil:
		view.CurrentStreak = exp.CurrentStreak
		view.LongestStreak = exp.LongestStreak
	case errors.Is(err, repositories.ErrExperienceNotFound):
		// ещё нет начислений
		exp = &models.PlayerExperience{PlayerID: playerID}
	default:
		return nil, fmt.Errorf("%w: load experience of player %d: %w", ErrPersistenceFailure, playerID, err)
	}

	lp, err := progression.Calculate(exp.TotalXP)
	if err != nil {
		return nil, err
	}
	view.LevelProgress = lp
	return view, nil
}

func (s *progressionService) ListTransactions(ctx context.Context, playerID, limit int) ([]models.XPTransaction, error) {
	txs, err := s.expRepo.ListTransactions(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list xp transactions of player %d: %w", ErrPersistenceFailure, playerID, err)
	}
	return txs, nil
}
