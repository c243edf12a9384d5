package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestAuthenticator(t *testing.T, issuer string) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator("test-secret", issuer)
	if err != nil {
		t.Fatalf("NewAuthenticator() error: %v", err)
	}
	return a
}

func TestNewAuthenticator_EmptySecret(t *testing.T) {
	if _, err := NewAuthenticator("", ""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueThenValidate(t *testing.T) {
	a := newTestAuthenticator(t, "skillconnect")

	token, err := a.Issue("user-1", "Ada", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	claims, err := a.Validate("Bearer " + token)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if claims.UserID() != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID(), "user-1")
	}
	if claims.Name != "Ada" {
		t.Errorf("Name = %q, want %q", claims.Name, "Ada")
	}
}

func TestValidate_Rejections(t *testing.T) {
	a := newTestAuthenticator(t, "skillconnect")
	other := newTestAuthenticator(t, "someone-else")
	wrongKey, _ := NewAuthenticator("other-secret", "skillconnect")

	expired := newTestAuthenticator(t, "skillconnect")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _ := expired.Issue("user-1", "", time.Hour)

	foreignIssuer, _ := other.Issue("user-1", "", time.Hour)
	badSig, _ := wrongKey.Issue("user-1", "", time.Hour)
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "skillconnect",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Issuer: "skillconnect"},
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrCredentialMissing},
		{"bearer only", "Bearer ", ErrCredentialMissing},
		{"garbage", "not-a-jwt", ErrInvalidCredential},
		{"expired", expiredToken, ErrInvalidCredential},
		{"wrong issuer", foreignIssuer, ErrInvalidCredential},
		{"bad signature", badSig, ErrInvalidCredential},
		{"no subject", noSubject, ErrInvalidCredential},
		{"no expiry", noExpiry, ErrInvalidCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Validate(tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		header string
		want   string
	}{
		{"query token", "/ws?token=abc", "Bearer zzz", "abc"},
		{"query auth", "/ws?auth=def", "", "def"},
		{"header", "/ws", "Bearer ghi", "ghi"},
		{"none", "/ws", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := ExtractToken(r); got != tt.want {
				t.Errorf("ExtractToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	a := newTestAuthenticator(t, "")
	token, _ := a.Issue("user-9", "", time.Hour)

	var seen string
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if seen != "user-9" {
		t.Errorf("user id in context = %q, want %q", seen, "user-9")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
