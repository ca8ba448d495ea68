package models

import "time"

// AchievementEventType names the activity being evaluated.
type AchievementEventType string

const (
	EventMatchPlayed      AchievementEventType = "match_played"
	EventMatchWon         AchievementEventType = "match_won"
	EventCourtBooked      AchievementEventType = "court_booked"
	EventTrainingAttended AchievementEventType = "training_attended"
	EventDailyLogin       AchievementEventType = "daily_login"
)

// AchievementEvent carries typed metadata; only the fields relevant to Type
// are set.
type AchievementEvent struct {
	Type       AchievementEventType `json:"type"`
	PlayerID   int                  `json:"player_id"`
	MatchID    int                  `json:"match_id,omitempty"`
	OpponentID int                  `json:"opponent_id,omitempty"`
	StreakDays int                  `json:"streak_days,omitempty"`
}

type AchievementMetric string

const (
	MetricMatchesPlayed AchievementMetric = "matches_played"
	MetricMatchesWon    AchievementMetric = "matches_won"
	MetricLevel         AchievementMetric = "level"
	MetricStreak        AchievementMetric = "streak"
)

type Achievement struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Metric      AchievementMetric `json:"metric"`
	Threshold   int               `json:"threshold"`
}

// PlayerAchievement is a catalog entry annotated for one player.
type PlayerAchievement struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// PlayerStats holds the counters achievements are measured against.
type PlayerStats struct {
	PlayerID      int `json:"player_id"`
	MatchesPlayed int `json:"matches_played"`
	MatchesWon    int `json:"matches_won"`
}

// AchievementCatalog is the fixed set of club achievements.
var AchievementCatalog = []Achievement{
	{Code: "FIRST_MATCH", Name: "First Serve", Description: "Played your first confirmed match", Metric: MetricMatchesPlayed, Threshold: 1},
	{Code: "TEN_MATCHES", Name: "Regular", Description: "Played 10 confirmed matches", Metric: MetricMatchesPlayed, Threshold: 10},
	{Code: "FIRST_WIN", Name: "First Victory", Description: "Won your first confirmed match", Metric: MetricMatchesWon, Threshold: 1},
	{Code: "TEN_WINS", Name: "Club Champion", Description: "Won 10 confirmed matches", Metric: MetricMatchesWon, Threshold: 10},
	{Code: "LEVEL_3", Name: "Rising Star", Description: "Reached level 3", Metric: MetricLevel, Threshold: 3},
	{Code: "LEVEL_5", Name: "Club Legend", Description: "Reached level 5", Metric: MetricLevel, Threshold: 5},
	{Code: "STREAK_7", Name: "Dedicated", Description: "Checked in 7 days in a row", Metric: MetricStreak, Threshold: 7},
}
