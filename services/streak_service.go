package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
)

type CheckInResult struct {
	CurrentStreak int  `json:"current_streak"`
	LongestStreak int  `json:"longest_streak"`
	NewDay        bool `json:"new_day"`
	// PreviousStreak is set when a streak was lost by this check-in.
	PreviousStreak int `json:"previous_streak,omitempty"`
}

type StreakService interface {
	RecordCheckIn(ctx context.Context, playerID int, now time.Time) (*CheckInResult, error)
	// ExpireStale resets streaks of players who were not active yesterday
	// and returns how many were reset.
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

const streakResetConcurrency = 8

type streakService struct {
	tx        repositories.Transactor
	expRepo   repositories.ExperienceRepository
	notifier  Notifier
	evaluator AchievementEvaluator
	logger    *slog.Logger
}

func NewStreakService(
	tx repositories.Transactor,
	expRepo repositories.ExperienceRepository,
	notifier Notifier,
	evaluator AchievementEvaluator,
	logger *slog.Logger,
) StreakService {
	return &streakService{
		tx:        tx,
		expRepo:   expRepo,
		notifier:  notifier,
		evaluator: evaluator,
		logger:    logger,
	}
}

// dayOf truncates t to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *streakService) RecordCheckIn(ctx context.Context, playerID int, now time.Time) (*CheckInResult, error) {
	today := dayOf(now)
	res := &CheckInResult{}

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		exp, err := s.expRepo.GetOrCreateForUpdate(ctx, exec, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrExperiencePlayer) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, playerID)
			}
			return fmt.Errorf("%w: lock experience of player %d: %w", ErrPersistenceFailure, playerID, err)
		}

		res.CurrentStreak = exp.CurrentStreak
		res.LongestStreak = exp.LongestStreak

		var last time.Time
		if exp.LastActiveOn != nil {
			last = dayOf(*exp.LastActiveOn)
		}
		switch {
		case !last.IsZero() && !last.Before(today):
			return nil
		case !last.IsZero() && last.Equal(today.AddDate(0, 0, -1)):
			res.CurrentStreak++
		default:
			if exp.CurrentStreak > 1 {
				res.PreviousStreak = exp.CurrentStreak
			}
			res.CurrentStreak = 1
		}
		res.LongestStreak = max(res.LongestStreak, res.CurrentStreak)
		res.NewDay = true

		if err := s.expRepo.UpdateStreak(ctx, exec, playerID, res.CurrentStreak, res.LongestStreak, today); err != nil {
			return fmt.Errorf("%w: update streak of player %d: %w", ErrPersistenceFailure, playerID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !res.NewDay {
		return res, nil
	}

	sideCtx := context.WithoutCancel(ctx)
	if res.PreviousStreak > 0 {
		s.notifyBroken(sideCtx, playerID, res.PreviousStreak)
	}
	if s.evaluator != nil {
		ev := models.AchievementEvent{Type: models.EventDailyLogin, PlayerID: playerID, StreakDays: res.CurrentStreak}
		if err := s.evaluator.Evaluate(sideCtx, ev); err != nil {
			s.logger.ErrorContext(sideCtx, "daily login evaluation failed",
				slog.Int("player_id", playerID), slog.Any("error", err))
		}
	}
	return res, nil
}

func (s *streakService) ExpireStale(ctx context.Context, now time.Time) (int, error) {
	yesterday := dayOf(now).AddDate(0, 0, -1)

	stale, err := s.expRepo.ListStaleStreaks(ctx, yesterday)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	var (
		g     errgroup.Group
		reset atomic.Int64
	)
	g.SetLimit(streakResetConcurrency)
	for _, rec := range stale {
		g.Go(func() error {
			ok, err := s.expRepo.ResetStreak(ctx, rec.PlayerID, yesterday)
			if err != nil {
				return fmt.Errorf("reset streak of player %d: %w", rec.PlayerID, err)
			}
			if !ok {
				// игрок успел отметиться
				return nil
			}
			reset.Add(1)
			if rec.CurrentStreak > 1 {
				s.notifyBroken(ctx, rec.PlayerID, rec.CurrentStreak)
			}
			return nil
		})
	}
	err = g.Wait()

	n := int(reset.Load())
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}
	return n, nil
}

func (s *streakService) notifyBroken(ctx context.Context, playerID, previous int) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, playerID, models.StreakBrokenPayload{PreviousStreak: previous}); err != nil {
		s.logger.ErrorContext(ctx, "failed to send streak broken notification",
			slog.Int("player_id", playerID), slog.Any("error", err))
	}
}
