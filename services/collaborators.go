package services

import (
	"context"

	"github.com/Dosada05/tennis-club/events"
	"github.com/Dosada05/tennis-club/models"
)

// Notifier delivers a notification to one player.
type Notifier interface {
	Notify(ctx context.Context, userID int, payload models.NotificationPayload) error
}

// AchievementEvaluator reacts to player activity: counters, XP and unlocks.
type AchievementEvaluator interface {
	Evaluate(ctx context.Context, event models.AchievementEvent) error
}

// EventPublisher is satisfied by *events.Bus.
type EventPublisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Mailer sends plain notification emails; nil disables email delivery.
type Mailer interface {
	SendNotificationEmail(to, subject, message string) error
}
