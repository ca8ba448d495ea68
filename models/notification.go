package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type NotificationKind string

const (
	NotificationMatchCompleted      NotificationKind = "match_completed"
	NotificationMatchDispute        NotificationKind = "match_dispute"
	NotificationLevelUp             NotificationKind = "level_up"
	NotificationAchievementUnlocked NotificationKind = "achievement_unlocked"
	NotificationStreakBroken        NotificationKind = "streak_broken"
	NotificationMatchRequest        NotificationKind = "match_request"
)

// Notification is the stored form; Data holds the JSON of the payload variant
// named by Kind.
type Notification struct {
	ID        int              `json:"id"`
	UserID    int              `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Data      json.RawMessage  `json:"data,omitempty"`
	ReadAt    *time.Time       `json:"read_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationPayload is implemented by one struct per NotificationKind.
type NotificationPayload interface {
	Kind() NotificationKind
	Title() string
	Message() string
}

// MatchCompletedPayload is addressed to one player; Won is from their side.
type MatchCompletedPayload struct {
	MatchID      int    `json:"match_id"`
	WinnerID     int    `json:"winner_id"`
	OpponentID   int    `json:"opponent_id"`
	OpponentName string `json:"opponent_name,omitempty"`
	Won          bool   `json:"won"`
}

func (MatchCompletedPayload) Kind() NotificationKind { return NotificationMatchCompleted }

func (p MatchCompletedPayload) Title() string {
	if p.Won {
		return "Victory confirmed!"
	}
	return "Match result confirmed"
}

func (p MatchCompletedPayload) Message() string {
	opponent := p.OpponentName
	if opponent == "" {
		opponent = "your opponent"
	}
	if p.Won {
		return fmt.Sprintf("Congratulations! Your win against %s has been confirmed.", opponent)
	}
	return fmt.Sprintf("Good game! Your match against %s has been recorded. Keep practicing, the next one is yours.", opponent)
}

type MatchDisputePayload struct {
	MatchID      int    `json:"match_id"`
	OpponentID   int    `json:"opponent_id"`
	OpponentName string `json:"opponent_name,omitempty"`
}

func (MatchDisputePayload) Kind() NotificationKind { return NotificationMatchDispute }
func (MatchDisputePayload) Title() string          { return "Match result disputed" }

func (p MatchDisputePayload) Message() string {
	opponent := p.OpponentName
	if opponent == "" {
		opponent = "your opponent"
	}
	return fmt.Sprintf("You and %s selected different winners. Please talk it over and resubmit the result.", opponent)
}

type LevelUpPayload struct {
	OldLevel  int `json:"old_level"`
	NewLevel  int `json:"new_level"`
	CurrentXP int `json:"current_xp"`
}

func (LevelUpPayload) Kind() NotificationKind { return NotificationLevelUp }
func (LevelUpPayload) Title() string          { return "Level up!" }

func (p LevelUpPayload) Message() string {
	return fmt.Sprintf("You advanced from level %d to level %d with %d XP.", p.OldLevel, p.NewLevel, p.CurrentXP)
}

type AchievementUnlockedPayload struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (AchievementUnlockedPayload) Kind() NotificationKind { return NotificationAchievementUnlocked }
func (AchievementUnlockedPayload) Title() string          { return "Achievement unlocked" }

func (p AchievementUnlockedPayload) Message() string {
	return fmt.Sprintf("You earned %q: %s", p.Name, p.Description)
}

type StreakBrokenPayload struct {
	PreviousStreak int `json:"previous_streak"`
}

func (StreakBrokenPayload) Kind() NotificationKind { return NotificationStreakBroken }
func (StreakBrokenPayload) Title() string          { return "Streak lost" }

func (p StreakBrokenPayload) Message() string {
	return fmt.Sprintf("Your %d-day activity streak has ended. Check in today to start a new one.", p.PreviousStreak)
}

type MatchRequestPayload struct {
	RequestID int                `json:"request_id"`
	FromID    int                `json:"from_id"`
	FromName  string             `json:"from_name,omitempty"`
	Status    MatchRequestStatus `json:"status"`
	MatchID   *int               `json:"match_id,omitempty"`
}

func (MatchRequestPayload) Kind() NotificationKind { return NotificationMatchRequest }

func (p MatchRequestPayload) Title() string {
	if p.Status == MatchRequestAccepted {
		return "Match request accepted"
	}
	return "New match request"
}

func (p MatchRequestPayload) Message() string {
	from := p.FromName
	if from == "" {
		from = "A club member"
	}
	if p.Status == MatchRequestAccepted {
		return fmt.Sprintf("%s accepted your match request.", from)
	}
	return fmt.Sprintf("%s wants to play a match with you.", from)
}
