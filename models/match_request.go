package models

import "time"

type MatchRequestStatus string

const (
	MatchRequestPending  MatchRequestStatus = "pending"
	MatchRequestAccepted MatchRequestStatus = "accepted"
	MatchRequestDeclined MatchRequestStatus = "declined"
)

// MatchRequest is a partner-match proposal from one player to another.
type MatchRequest struct {
	ID          int                `json:"id"`
	RequesterID int                `json:"requester_id"`
	OpponentID  int                `json:"opponent_id"`
	Status      MatchRequestStatus `json:"status"`
	ProposedAt  *time.Time         `json:"proposed_at,omitempty"`
	Message     *string            `json:"message,omitempty"`
	MatchID     *int               `json:"match_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	RespondedAt *time.Time         `json:"responded_at,omitempty"`
}
