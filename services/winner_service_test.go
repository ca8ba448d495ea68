package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dosada05/tennis-club/events"
	"github.com/Dosada05/tennis-club/models"
	"github.com/Dosada05/tennis-club/repositories"
)

const (
	alice    = 1
	bob      = 2
	outsider = 3
	matchID  = 10
)

type winnerFixture struct {
	svc        WinnerService
	matches    *fakeMatchRepo
	selections *fakeSelectionRepo
	notifier   *fakeNotifier
	evaluator  *fakeEvaluator
	publisher  *fakePublisher
}

func newWinnerFixture(t *testing.T) *winnerFixture {
	t.Helper()
	nick := "ace"
	f := &winnerFixture{
		matches: newFakeMatchRepo(&models.Match{
			ID:        matchID,
			Player1ID: alice,
			Player2ID: bob,
			Status:    models.MatchStatusScheduled,
		}),
		selections: newFakeSelectionRepo(),
		notifier:   &fakeNotifier{},
		evaluator:  &fakeEvaluator{},
		publisher:  &fakePublisher{},
	}
	users := newFakeUserRepo(
		&models.User{ID: alice, FirstName: "Alice", LastName: "Smith", Nickname: &nick},
		&models.User{ID: bob, FirstName: "Bob", LastName: "Jones"},
		&models.User{ID: outsider, FirstName: "Carl"},
	)
	f.svc = NewWinnerService(&fakeTx{}, f.matches, f.selections, users,
		f.notifier, f.evaluator, f.publisher, discardLogger())
	return f
}

func (f *winnerFixture) submit(t *testing.T, selector, winner int) *SelectionResult {
	t.Helper()
	res, err := f.svc.SubmitSelection(context.Background(), matchID, selector, winner)
	if err != nil {
		t.Fatalf("SubmitSelection(%d, %d) returned error: %v", selector, winner, err)
	}
	return res
}

func TestSubmitSelectionFirstIsPending(t *testing.T) {
	f := newWinnerFixture(t)

	res := f.submit(t, alice, alice)
	if res.Status != models.SelectionPending || res.WinnerID != nil {
		t.Fatalf("expected pending without winner, got %+v", res)
	}
	if w := f.matches.winner(matchID); w != nil {
		t.Fatalf("winner must not be set yet, got %d", *w)
	}
	if len(f.notifier.sent) != 0 || len(f.evaluator.events) != 0 {
		t.Fatalf("no side effects expected, got %d notifications, %d evaluations", len(f.notifier.sent), len(f.evaluator.events))
	}
	if f.publisher.named(events.MatchUpdated) != 0 {
		t.Fatal("pending selection must not publish a match update")
	}
}

func TestSubmitSelectionAgreementFinalizes(t *testing.T) {
	f := newWinnerFixture(t)

	f.submit(t, alice, alice)
	res := f.submit(t, bob, alice)

	if res.Status != models.SelectionCompleted || res.WinnerID == nil || *res.WinnerID != alice {
		t.Fatalf("expected completed with winner %d, got %+v", alice, res)
	}
	if w := f.matches.winner(matchID); w == nil || *w != alice {
		t.Fatalf("stored winner = %v, want %d", w, alice)
	}

	completed := f.notifier.byKind(models.NotificationMatchCompleted)
	if len(completed) != 2 {
		t.Fatalf("expected 2 match_completed notifications, got %d", len(completed))
	}
	for _, n := range completed {
		p := n.Payload.(models.MatchCompletedPayload)
		if p.Won != (n.UserID == alice) {
			t.Errorf("user %d got Won=%v", n.UserID, p.Won)
		}
		if n.UserID == bob && p.OpponentName != "ace" {
			t.Errorf("bob's opponent name = %q, want nickname", p.OpponentName)
		}
	}

	if f.evaluator.count(models.EventMatchPlayed, alice) != 1 || f.evaluator.count(models.EventMatchPlayed, bob) != 1 {
		t.Error("expected match_played evaluation for both players")
	}
	if f.evaluator.count(models.EventMatchWon, alice) != 1 || f.evaluator.count(models.EventMatchWon, bob) != 0 {
		t.Error("expected match_won evaluation for the winner only")
	}
	if f.publisher.named(events.MatchUpdated) != 1 {
		t.Errorf("expected one match.updated event, got %d", f.publisher.named(events.MatchUpdated))
	}
}

func TestSubmitSelectionDisagreementDisputes(t *testing.T) {
	f := newWinnerFixture(t)

	f.submit(t, alice, alice)
	res := f.submit(t, bob, bob)

	if res.Status != models.SelectionDisputed || res.WinnerID != nil {
		t.Fatalf("expected disputed, got %+v", res)
	}
	if w := f.matches.winner(matchID); w != nil {
		t.Fatalf("winner must stay unset in dispute, got %d", *w)
	}
	if n := f.selections.count(matchID); n != 2 {
		t.Fatalf("both selections must be retained, got %d", n)
	}
	disputes := f.notifier.byKind(models.NotificationMatchDispute)
	if len(disputes) != 2 {
		t.Fatalf("expected dispute notification to both players, got %d", len(disputes))
	}
	if len(f.evaluator.events) != 0 {
		t.Fatal("dispute must not trigger achievement evaluation")
	}
}

func TestSubmitSelectionDisputeResolvedByResubmission(t *testing.T) {
	f := newWinnerFixture(t)

	f.submit(t, alice, alice)
	f.submit(t, bob, bob)
	res := f.submit(t, bob, alice)

	if res.Status != models.SelectionCompleted || *res.WinnerID != alice {
		t.Fatalf("expected completed after correction, got %+v", res)
	}
	if got := len(f.notifier.byKind(models.NotificationMatchCompleted)); got != 2 {
		t.Fatalf("expected 2 completion notifications, got %d", got)
	}
}

func TestSubmitSelectionIdempotentResubmission(t *testing.T) {
	f := newWinnerFixture(t)

	f.submit(t, alice, alice)
	f.submit(t, bob, bob)
	res := f.submit(t, bob, bob)

	if res.Status != models.SelectionDisputed {
		t.Fatalf("expected disputed, got %+v", res)
	}
	if got := len(f.notifier.byKind(models.NotificationMatchDispute)); got != 2 {
		t.Fatalf("unchanged resubmission must not notify again, got %d dispute notifications", got)
	}
}

func TestSubmitSelectionAfterFinalization(t *testing.T) {
	f := newWinnerFixture(t)
	f.submit(t, alice, alice)
	f.submit(t, bob, alice)
	sent := len(f.notifier.sent)

	res := f.submit(t, alice, alice)
	if res.Status != models.SelectionCompleted || *res.WinnerID != alice {
		t.Fatalf("same winner resubmission should report completed, got %+v", res)
	}
	if len(f.notifier.sent) != sent {
		t.Fatal("no-op resubmission must not notify")
	}

	_, err := f.svc.SubmitSelection(context.Background(), matchID, bob, bob)
	if !errors.Is(err, ErrAlreadyFinalizedConflict) {
		t.Fatalf("expected ErrAlreadyFinalizedConflict, got %v", err)
	}
	if w := f.matches.winner(matchID); *w != alice {
		t.Fatalf("winner changed to %d", *w)
	}
}

func TestSubmitSelectionValidation(t *testing.T) {
	tests := []struct {
		name     string
		matchID  int
		selector int
		winner   int
		wantErr  error
	}{
		{"outsider selector", matchID, outsider, alice, ErrNotAParticipant},
		{"outsider as winner", matchID, alice, outsider, ErrInvalidWinnerCandidate},
		{"unknown match", 999, alice, alice, ErrMatchNotFound},
		{"outsider without a winner", matchID, outsider, 0, ErrNotAParticipant},
		{"participant without a winner", matchID, alice, 0, ErrInvalidWinnerCandidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWinnerFixture(t)
			_, err := f.svc.SubmitSelection(context.Background(), tt.matchID, tt.selector, tt.winner)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if n := f.selections.count(matchID); n != 0 {
				t.Fatalf("rejected submission stored %d selections", n)
			}
			if len(f.notifier.sent) != 0 {
				t.Fatal("rejected submission must not notify")
			}
		})
	}
}

func TestSubmitSelectionPersistenceFailure(t *testing.T) {
	f := newWinnerFixture(t)
	f.submit(t, alice, alice)
	f.selections.failUpsert = errStorage

	_, err := f.svc.SubmitSelection(context.Background(), matchID, bob, alice)
	if !errors.Is(err, ErrPersistenceFailure) || !errors.Is(err, errStorage) {
		t.Fatalf("expected persistence failure wrapping the storage error, got %v", err)
	}
	if w := f.matches.winner(matchID); w != nil {
		t.Fatal("winner must not be written after a failed upsert")
	}
	if len(f.notifier.sent) != 0 || len(f.evaluator.events) != 0 {
		t.Fatal("no side effects expected after persistence failure")
	}
}

func TestSubmitSelectionSideEffectFailureKeepsWinner(t *testing.T) {
	f := newWinnerFixture(t)
	f.notifier.err = errors.New("push gateway down")
	f.evaluator.err = errors.New("xp service down")

	f.submit(t, alice, bob)
	res := f.submit(t, bob, bob)

	if res.Status != models.SelectionCompleted {
		t.Fatalf("expected completed despite side-effect failures, got %+v", res)
	}
	if w := f.matches.winner(matchID); w == nil || *w != bob {
		t.Fatalf("winner must be persisted, got %v", w)
	}
}

func TestSubmitSelectionConcurrentAgreementFinalizesOnce(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newWinnerFixture(t)

		var wg sync.WaitGroup
		results := make([]*SelectionResult, 2)
		errs := make([]error, 2)
		for idx, selector := range []int{alice, bob} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[idx], errs[idx] = f.svc.SubmitSelection(context.Background(), matchID, selector, bob)
			}()
		}
		wg.Wait()

		for idx := range errs {
			if errs[idx] != nil {
				t.Fatalf("submission %d failed: %v", idx, errs[idx])
			}
		}
		completed := 0
		for _, r := range results {
			if r.Status == models.SelectionCompleted {
				completed++
			}
		}
		// Вторая по порядку оценка всегда видит обе отметки.
		if completed != 1 {
			t.Fatalf("expected exactly one submission to observe completion, got %d", completed)
		}
		if got := len(f.notifier.byKind(models.NotificationMatchCompleted)); got != 2 {
			t.Fatalf("expected finalization side effects once (2 notifications), got %d", got)
		}
		if f.evaluator.count(models.EventMatchWon, bob) != 1 {
			t.Fatal("match_won must be evaluated exactly once")
		}
	}
}

func TestSubmitSelectionSetWinnerFailures(t *testing.T) {
	tests := []struct {
		name    string
		failSet error
		wantErr error
	}{
		{name: "winner written concurrently", failSet: repositories.ErrMatchWinnerConflict, wantErr: ErrAlreadyFinalizedConflict},
		{name: "storage failure", failSet: errStorage, wantErr: ErrPersistenceFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWinnerFixture(t)
			f.submit(t, alice, bob)
			f.matches.failSet = tt.failSet

			res, err := f.svc.SubmitSelection(context.Background(), matchID, bob, bob)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v (result %+v)", tt.wantErr, err, res)
			}
			if len(f.notifier.sent) != 0 || len(f.evaluator.events) != 0 {
				t.Fatalf("no side effects expected, got %d notifications, %d evaluations",
					len(f.notifier.sent), len(f.evaluator.events))
			}
			if f.publisher.named(events.MatchUpdated) != 0 {
				t.Fatal("failed finalization must not publish a match update")
			}
		})
	}
}

func TestSubmitSelectionRepeatedWhilePending(t *testing.T) {
	f := newWinnerFixture(t)

	first := f.submit(t, alice, alice)
	second := f.submit(t, alice, alice)

	if first.Status != models.SelectionPending || second.Status != models.SelectionPending {
		t.Fatalf("expected pending twice, got %s and %s", first.Status, second.Status)
	}
	if n := f.selections.count(matchID); n != 1 {
		t.Fatalf("expected a single stored selection, got %d", n)
	}
	if w := f.matches.winner(matchID); w != nil {
		t.Fatalf("winner must not be set, got %d", *w)
	}
	if len(f.notifier.sent) != 0 || len(f.evaluator.events) != 0 || f.publisher.named(events.MatchUpdated) != 0 {
		t.Fatal("repeated pending selection must not cause side effects")
	}
}
