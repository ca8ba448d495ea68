package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tennis-club/config"
	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
)

type AchievementService interface {
	AchievementEvaluator
	ListForPlayer(ctx context.Context, playerID int) ([]models.PlayerAchievement, error)
	// RecordActivity is the entry point for club activities reported by
	// staff (court bookings, trainings).
	RecordActivity(ctx context.Context, playerID int, activity models.AchievementEventType) (*AwardResult, error)
}

type achievementService struct {
	repo        repositories.AchievementRepository
	progression ProgressionService
	notifier    Notifier
	rewards     config.XPRewards
	logger      *slog.Logger
}

func NewAchievementService(
	repo repositories.AchievementRepository,
	progression ProgressionService,
	notifier Notifier,
	rewards config.XPRewards,
	logger *slog.Logger,
) AchievementService {
	return &achievementService{
		repo:        repo,
		progression: progression,
		notifier:    notifier,
		rewards:     rewards,
		logger:      logger,
	}
}

// measures is what one evaluation knows about the player. Zero values mean
// "not measured by this event".
type measures struct {
	stats  *models.PlayerStats
	level  int
	streak int
}

func (s *achievementService) Evaluate(ctx context.Context, ev models.AchievementEvent) error {
	_, err := s.evaluate(ctx, ev)
	return err
}

func (s *achievementService) evaluate(ctx context.Context, ev models.AchievementEvent) (*AwardResult, error) {
	reason, amount, err := s.rewardFor(ev.Type)
	if err != nil {
		return nil, err
	}

	var m measures
	switch ev.Type {
	case models.EventMatchPlayed:
		if m.stats, err = s.repo.IncrementStats(ctx, ev.PlayerID, 1, 0); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
		}
	case models.EventMatchWon:
		if m.stats, err = s.repo.IncrementStats(ctx, ev.PlayerID, 0, 1); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
		}
	case models.EventDailyLogin:
		m.streak = ev.StreakDays
	}

	var award *AwardResult
	if amount > 0 {
		award, err = s.progression.AwardXP(ctx, ev.PlayerID, amount, reason)
		if err != nil {
			return nil, fmt.Errorf("award %s xp to player %d: %w", reason, ev.PlayerID, err)
		}
		m.level = award.NewLevel
	}

	s.unlockSatisfied(ctx, ev.PlayerID, m)
	return award, nil
}

func (s *achievementService) rewardFor(t models.AchievementEventType) (models.XPReason, int, error) {
	switch t {
	case models.EventMatchPlayed:
		return models.XPReasonMatchPlayed, s.rewards.MatchPlayed, nil
	case models.EventMatchWon:
		return models.XPReasonMatchWon, s.rewards.MatchWon, nil
	case models.EventCourtBooked:
		return models.XPReasonCourtBooked, s.rewards.CourtBooked, nil
	case models.EventTrainingAttended:
		return models.XPReasonTrainingAttended, s.rewards.TrainingAttended, nil
	case models.EventDailyLogin:
		return models.XPReasonDailyLogin, s.rewards.DailyLogin, nil
	}
	return "", 0, fmt.Errorf("%w: %q", ErrUnknownActivity, t)
}

// unlockSatisfied records every catalog entry the measures satisfy. Unlock
// is insert-if-absent, so each achievement is announced once.
func (s *achievementService) unlockSatisfied(ctx context.Context, playerID int, m measures) {
	for _, a := range models.AchievementCatalog {
		if !satisfies(a, m) {
			continue
		}
		unlocked, err := s.repo.Unlock(ctx, playerID, a.Code)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to unlock achievement",
				slog.Int("player_id", playerID), slog.String("code", a.Code), slog.Any("error", err))
			continue
		}
		if !unlocked {
			continue
		}

		s.logger.InfoContext(ctx, "achievement unlocked", slog.Int("player_id", playerID), slog.String("code", a.Code))
		if s.notifier == nil {
			continue
		}
		payload := models.AchievementUnlockedPayload{Code: a.Code, Name: a.Name, Description: a.Description}
		if err := s.notifier.Notify(ctx, playerID, payload); err != nil {
			s.logger.ErrorContext(ctx, "failed to send achievement notification",
				slog.Int("player_id", playerID), slog.String("code", a.Code), slog.Any("error", err))
		}
	}
}

func satisfies(a models.Achievement, m measures) bool {
	switch a.Metric {
	case models.MetricMatchesPlayed:
		return m.stats != nil && m.stats.MatchesPlayed >= a.Threshold
	case models.MetricMatchesWon:
		return m.stats != nil && m.stats.MatchesWon >= a.Threshold
	case models.MetricLevel:
		return m.level > 0 && m.level >= a.Threshold
	case models.MetricStreak:
		return m.streak > 0 && m.streak >= a.Threshold
	}
	return false
}

func (s *achievementService) ListForPlayer(ctx context.Context, playerID int) ([]models.PlayerAchievement, error) {
	unlocked, err := s.repo.ListUnlocked(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	list := make([]models.PlayerAchievement, 0, len(models.AchievementCatalog))
	for _, a := range models.AchievementCatalog {
		pa := models.PlayerAchievement{Achievement: a}
		if at, ok := unlocked[a.Code]; ok {
			pa.Unlocked = true
			pa.UnlockedAt = &at
		}
		list = append(list, pa)
	}
	return list, nil
}

func (s *achievementService) RecordActivity(ctx context.Context, playerID int, activity models.AchievementEventType) (*AwardResult, error) {
	if activity != models.EventCourtBooked && activity != models.EventTrainingAttended {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActivity, activity)
	}
	award, err := s.evaluate(ctx, models.AchievementEvent{Type: activity, PlayerID: playerID})
	if err != nil {
		return nil, fmt.Errorf("record %s for player %d: %w", activity, playerID, err)
	}
	return award, nil
}
