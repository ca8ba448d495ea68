package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStreaks struct {
	checkIns []int
}

func (f *fakeStreaks) RecordCheckIn(_ context.Context, playerID int, _ time.Time) (*CheckInResult, error) {
	f.checkIns = append(f.checkIns, playerID)
	return &CheckInResult{CurrentStreak: 1, NewDay: true}, nil
}

func (f *fakeStreaks) ExpireStale(context.Context, time.Time) (int, error) { return 0, nil }

func TestRegisterAndLogin(t *testing.T) {
	streaks := &fakeStreaks{}
	svc := NewAuthService(newFakeUserRepo(), streaks, discardLogger())
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{FirstName: "Alice", Email: " Alice@Club.test ", Password: "longenough"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@club.test" || user.PasswordHash != "" || user.Role != "player" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Register(ctx, RegisterInput{FirstName: "A", Email: "alice@club.test", Password: "longenough"}); !errors.Is(err, ErrUserEmailConflict) {
		t.Fatalf("expected ErrUserEmailConflict, got %v", err)
	}

	logged, err := svc.Login(ctx, LoginInput{Email: "alice@club.test", Password: "longenough"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if logged.ID != user.ID || logged.PasswordHash != "" {
		t.Fatalf("unexpected login user %+v", logged)
	}
	if len(streaks.checkIns) != 1 || streaks.checkIns[0] != user.ID {
		t.Fatalf("login must record a check-in, got %v", streaks.checkIns)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "alice@club.test", Password: "wrong-password"}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Fatalf("expected ErrAuthInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "nobody@club.test", Password: "whatever"}); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Fatalf("unknown email must look like bad credentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nil, discardLogger())
	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"short password", RegisterInput{FirstName: "A", Email: "a@club.test", Password: "short"}, ErrPasswordTooShort},
		{"missing name", RegisterInput{Email: "a@club.test", Password: "longenough"}, ErrValidationFailed},
		{"bad email", RegisterInput{FirstName: "A", Email: "not-an-email", Password: "longenough"}, ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tt.input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
