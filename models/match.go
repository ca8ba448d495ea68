package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match is created when a partner request is accepted. WinnerID is written
// once, by winner confirmation, and never reset.
type Match struct {
	ID              int         `json:"id"`
	RequestID       *int        `json:"request_id,omitempty"`
	Player1ID       int         `json:"player1_id"`
	Player2ID       int         `json:"player2_id"`
	WinnerID        *int        `json:"winner_id,omitempty"`
	Status          MatchStatus `json:"status"`
	ScheduledAt     *time.Time  `json:"scheduled_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	HiddenByPlayer1 bool        `json:"-"`
	HiddenByPlayer2 bool        `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
}

func (m *Match) HasParticipant(playerID int) bool {
	return playerID == m.Player1ID || playerID == m.Player2ID
}

// OpponentOf returns the other participant; ok is false for outsiders.
func (m *Match) OpponentOf(playerID int) (int, bool) {
	switch playerID {
	case m.Player1ID:
		return m.Player2ID, true
	case m.Player2ID:
		return m.Player1ID, true
	}
	return 0, false
}

func (m *Match) IsFinalized() bool {
	return m.WinnerID != nil
}

func (m *Match) HiddenFor(playerID int) bool {
	switch playerID {
	case m.Player1ID:
		return m.HiddenByPlayer1
	case m.Player2ID:
		return m.HiddenByPlayer2
	}
	return false
}

// WinnerSelection is one participant's claim about who won. At most one per
// (match, selector); resubmission overwrites it.
type WinnerSelection struct {
	ID               int       `json:"id"`
	MatchID          int       `json:"match_id"`
	SelectorID       int       `json:"selector_id"`
	SelectedWinnerID int       `json:"selected_winner_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ConfirmationState string

const (
	ConfirmationNoSelections ConfirmationState = "no_selections"
	ConfirmationOneSelection ConfirmationState = "one_selection"
	ConfirmationDisputed     ConfirmationState = "disputed"
	// оба игрока согласны, победитель еще не записан
	ConfirmationAgreed       ConfirmationState = "agreed"
	ConfirmationFinalized    ConfirmationState = "finalized"
)

// DeriveConfirmationState reports where the match is in winner confirmation.
// A finalized winner takes precedence over whatever selections are stored.
func DeriveConfirmationState(m *Match, selections []WinnerSelection) ConfirmationState {
	if m.IsFinalized() {
		return ConfirmationFinalized
	}
	status, _ := EvaluateSelections(m, selections)
	switch status {
	case SelectionCompleted:
		return ConfirmationAgreed
	case SelectionDisputed:
		return ConfirmationDisputed
	}
	if len(participantSelections(m, selections)) == 0 {
		return ConfirmationNoSelections
	}
	return ConfirmationOneSelection
}

// EvaluateSelections looks only at selections made by the match's players
// for one of the match's players. The winner is returned for SelectionCompleted.
func EvaluateSelections(m *Match, selections []WinnerSelection) (SelectionStatus, int) {
	bySelector := participantSelections(m, selections)
	if len(bySelector) < 2 {
		return SelectionPending, 0
	}
	first, second := bySelector[m.Player1ID], bySelector[m.Player2ID]
	if first == second {
		return SelectionCompleted, first
	}
	return SelectionDisputed, 0
}

func participantSelections(m *Match, selections []WinnerSelection) map[int]int {
	bySelector := make(map[int]int, 2)
	for _, sel := range selections {
		if m.HasParticipant(sel.SelectorID) && m.HasParticipant(sel.SelectedWinnerID) {
			bySelector[sel.SelectorID] = sel.SelectedWinnerID
		}
	}
	return bySelector
}

// SelectionStatus is the outcome reported to the submitting player.
type SelectionStatus string

const (
	SelectionPending   SelectionStatus = "pending"
	SelectionCompleted SelectionStatus = "completed"
	SelectionDisputed  SelectionStatus = "disputed"
)
