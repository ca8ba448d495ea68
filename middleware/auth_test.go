package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/tennis-club/models"
)

const testSecret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func validClaims(userID int, role models.UserRole) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func TestAuthenticate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var gotID int
	var gotRole models.UserRole
	h := Authenticate(testSecret, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserIDFromContext(r.Context())
		gotRole, _ = GetUserRoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	expired := validClaims(7, models.RolePlayer)
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer header", "Bearer " + signed(t, validClaims(7, models.RolePlayer), jwt.SigningMethodHS256, testSecret), "", http.StatusNoContent},
		{"query token", "", signed(t, validClaims(7, models.RolePlayer), jwt.SigningMethodHS256, testSecret), http.StatusNoContent},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signed(t, validClaims(7, models.RolePlayer), jwt.SigningMethodHS256, "other"), "", http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, expired, jwt.SigningMethodHS256, testSecret), "", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotRole = 0, ""
			target := "/me"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusNoContent && (gotID != 7 || gotRole != models.RolePlayer) {
				t.Fatalf("claims not propagated: id=%d role=%q", gotID, gotRole)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		role   models.UserRole
		auth   bool
		status int
	}{
		{"admin", models.RoleAdmin, true, http.StatusOK},
		{"player", models.RolePlayer, true, http.StatusForbidden},
		{"anonymous", "", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.auth {
				req = req.WithContext(WithClaims(req.Context(), 1, tt.role))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestGetUserIDFromContextRejectsBadClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := GetUserIDFromContext(req.Context()); err == nil {
		t.Fatal("expected error without claims")
	}
	ctx := WithClaims(req.Context(), 0, models.RolePlayer)
	if _, err := GetUserIDFromContext(ctx); err == nil {
		t.Fatal("expected error for non-positive id")
	}
}
