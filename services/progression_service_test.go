package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tennis-club/models"
)

func newProgressionFixture() (ProgressionService, *fakeExperienceRepo, *fakeNotifier) {
	repo := newFakeExperienceRepo()
	notifier := &fakeNotifier{}
	return NewProgressionService(&fakeTx{}, repo, notifier, discardLogger()), repo, notifier
}

func TestAwardXPCreatesRecordAndLedger(t *testing.T) {
	svc, repo, notifier := newProgressionFixture()

	res, err := svc.AwardXP(context.Background(), alice, 100, models.XPReasonMatchPlayed)
	if err != nil {
		t.Fatalf("AwardXP returned error: %v", err)
	}
	if res.PreviousXP != 0 || res.TotalXP != 100 || res.OldLevel != 1 || res.NewLevel != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.LeveledUp() {
		t.Fatal("100 xp must not level up")
	}
	if len(repo.txs) != 1 || repo.txs[0].Reason != models.XPReasonMatchPlayed || repo.txs[0].Amount != 100 {
		t.Fatalf("expected one ledger entry, got %+v", repo.txs)
	}
	if len(notifier.sent) != 0 {
		t.Fatal("no notification expected without level change")
	}
}

func TestAwardXPLevelUpNotifiesOnce(t *testing.T) {
	svc, repo, notifier := newProgressionFixture()
	repo.set(models.PlayerExperience{PlayerID: alice, TotalXP: 900})

	// 900 -> 2600 пересекает пороги уровней 2 и 3
	res, err := svc.AwardXP(context.Background(), alice, 1700, models.XPReasonMatchWon)
	if err != nil {
		t.Fatalf("AwardXP returned error: %v", err)
	}
	if res.OldLevel != 1 || res.NewLevel != 3 {
		t.Fatalf("levels = %d -> %d, want 1 -> 3", res.OldLevel, res.NewLevel)
	}

	ups := notifier.byKind(models.NotificationLevelUp)
	if len(ups) != 1 {
		t.Fatalf("expected a single level_up notification, got %d", len(ups))
	}
	p := ups[0].Payload.(models.LevelUpPayload)
	if p.OldLevel != 1 || p.NewLevel != 3 || p.CurrentXP != 2600 {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestAwardXPRejectsNonPositive(t *testing.T) {
	svc, repo, _ := newProgressionFixture()
	for _, amount := range []int{0, -5} {
		if _, err := svc.AwardXP(context.Background(), alice, amount, models.XPReasonDailyLogin); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("amount %d: expected ErrInvalidInput, got %v", amount, err)
		}
	}
	if len(repo.txs) != 0 {
		t.Fatal("rejected awards must not reach the ledger")
	}
}

func TestAwardXPPersistenceFailure(t *testing.T) {
	svc, repo, notifier := newProgressionFixture()
	repo.failAdd = errStorage

	_, err := svc.AwardXP(context.Background(), alice, 5000, models.XPReasonMatchWon)
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatal("failed award must not notify")
	}
}

func TestGetProgressDerivesLevel(t *testing.T) {
	svc, repo, _ := newProgressionFixture()

	p, err := svc.GetProgress(context.Background(), bob)
	if err != nil {
		t.Fatalf("GetProgress for new player: %v", err)
	}
	if p.CurrentLevel != 1 || p.CurrentXP != 0 || p.XPNeededForNextLevel != 1000 {
		t.Fatalf("unexpected progress for new player: %+v", p)
	}

	repo.set(models.PlayerExperience{PlayerID: bob, TotalXP: 1500, CurrentStreak: 3, LongestStreak: 9})
	p, err = svc.GetProgress(context.Background(), bob)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if p.CurrentLevel != 2 || p.LevelProgress.LevelProgress != 500 || p.ProgressPercentage != 33 {
		t.Fatalf("unexpected progress: %+v", p)
	}
	if p.CurrentStreak != 3 || p.LongestStreak != 9 {
		t.Fatalf("streak not carried: %+v", p)
	}
}
