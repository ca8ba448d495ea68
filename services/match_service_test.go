package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tennis-club/models"
)

func newMatchServiceFixture() (MatchService, *fakeMatchRepo, *fakeSelectionRepo) {
	matches := newFakeMatchRepo(
		&models.Match{ID: matchID, Player1ID: alice, Player2ID: bob, Status: models.MatchStatusScheduled},
		&models.Match{ID: matchID + 1, Player1ID: bob, Player2ID: alice, Status: models.MatchStatusScheduled},
	)
	selections := newFakeSelectionRepo()
	users := newFakeUserRepo(
		&models.User{ID: alice, FirstName: "Alice", PasswordHash: "secret"},
		&models.User{ID: bob, FirstName: "Bob", PasswordHash: "secret"},
	)
	return NewMatchService(matches, selections, users, nil, discardLogger()), matches, selections
}

func TestGetMatchDetail(t *testing.T) {
	svc, _, selections := newMatchServiceFixture()
	ctx := context.Background()

	d, err := svc.GetMatchDetail(ctx, matchID, alice)
	if err != nil {
		t.Fatalf("GetMatchDetail: %v", err)
	}
	if d.State != models.ConfirmationNoSelections || d.MySelection != nil {
		t.Fatalf("unexpected detail %+v", d)
	}
	if d.Player1 == nil || d.Player1.FirstName != "Alice" || d.Player1.PasswordHash != "" {
		t.Fatalf("player1 not populated safely: %+v", d.Player1)
	}

	_, _ = selections.Upsert(ctx, nil, matchID, bob, alice)
	_, _ = selections.Upsert(ctx, nil, matchID, alice, bob)
	d, err = svc.GetMatchDetail(ctx, matchID, alice)
	if err != nil {
		t.Fatalf("GetMatchDetail: %v", err)
	}
	if d.State != models.ConfirmationDisputed {
		t.Fatalf("state = %s, want disputed", d.State)
	}
	if d.MySelection == nil || *d.MySelection != bob {
		t.Fatalf("my selection = %v, want %d", d.MySelection, bob)
	}
}

func TestGetMatchDetailStateIgnoresOutsiders(t *testing.T) {
	svc, _, selections := newMatchServiceFixture()
	ctx := context.Background()

	// строка постороннего могла остаться до исправления данных
	_, _ = selections.Upsert(ctx, nil, matchID, outsider, bob)
	_, _ = selections.Upsert(ctx, nil, matchID, alice, alice)

	d, err := svc.GetMatchDetail(ctx, matchID, alice)
	if err != nil {
		t.Fatalf("GetMatchDetail: %v", err)
	}
	if d.State != models.ConfirmationOneSelection {
		t.Fatalf("state = %s, want one_selection", d.State)
	}

	_, _ = selections.Upsert(ctx, nil, matchID, bob, alice)
	d, err = svc.GetMatchDetail(ctx, matchID, bob)
	if err != nil {
		t.Fatalf("GetMatchDetail: %v", err)
	}
	if d.State != models.ConfirmationAgreed {
		t.Fatalf("state = %s, want agreed while the winner is not written", d.State)
	}
}

func TestGetMatchDetailErrors(t *testing.T) {
	svc, matches, _ := newMatchServiceFixture()
	ctx := context.Background()

	if _, err := svc.GetMatchDetail(ctx, 404, alice); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("expected ErrMatchNotFound, got %v", err)
	}
	if _, err := svc.GetMatchDetail(ctx, matchID, outsider); !errors.Is(err, ErrNotAParticipant) {
		t.Fatalf("expected ErrNotAParticipant, got %v", err)
	}
	matches.failGet = errStorage
	if _, err := svc.GetMatchDetail(ctx, matchID, alice); !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
}

func TestHideAffectsOnlyTheHidingPlayer(t *testing.T) {
	svc, matches, _ := newMatchServiceFixture()
	ctx := context.Background()
	w := alice
	matches.matches[matchID].WinnerID = &w

	if err := svc.Hide(ctx, matchID, alice); err != nil {
		t.Fatalf("Hide: %v", err)
	}
	if err := svc.Hide(ctx, matchID, outsider); !errors.Is(err, ErrMatchNotFound) {
		t.Fatalf("outsider hide: expected ErrMatchNotFound, got %v", err)
	}

	mine, _ := svc.ListForPlayer(ctx, alice)
	if len(mine) != 1 || mine[0].ID != matchID+1 {
		t.Fatalf("alice should only see match %d, got %+v", matchID+1, mine)
	}
	theirs, _ := svc.ListForPlayer(ctx, bob)
	if len(theirs) != 2 {
		t.Fatalf("bob should still see both matches, got %d", len(theirs))
	}
	if got := matches.winner(matchID); got == nil || *got != alice {
		t.Fatal("hiding must not touch the winner")
	}
}
