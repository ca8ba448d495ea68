package models

import "time"

// XPReason tags every entry of the XP ledger.
type XPReason string

const (
	XPReasonMatchPlayed      XPReason = "match_played"
	XPReasonMatchWon         XPReason = "match_won"
	XPReasonCourtBooked      XPReason = "court_booked"
	XPReasonTrainingAttended XPReason = "training_attended"
	XPReasonDailyLogin       XPReason = "daily_login"
)

// PlayerExperience stores only the XP total; the level is always derived
// from it through the progression package.
type PlayerExperience struct {
	PlayerID      int        `json:"player_id"`
	TotalXP       int        `json:"total_xp"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	LastActiveOn  *time.Time `json:"last_active_on,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type XPTransaction struct {
	ID        int       `json:"id"`
	PlayerID  int       `json:"player_id"`
	Amount    int       `json:"amount"`
	Reason    XPReason  `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
