package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

// mintToken builds a compact HS256 JWT the way the platform's auth service
// does, for use as test input.
func mintToken(t *testing.T, v *Verifier, claims TokenClaims) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}

	message := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(payload)
	return message + "." + v.sign(message)
}

func TestVerifyValidToken(t *testing.T) {
	v := NewVerifier("secret")
	token := mintToken(t, v, TokenClaims{UserID: "user-1", Exp: time.Now().Add(time.Hour).Unix()})

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	v := NewVerifier("secret")
	other := NewVerifier("different-secret")
	token := mintToken(t, other, TokenClaims{UserID: "user-1", Exp: time.Now().Add(time.Hour).Unix()})

	if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewVerifier("secret")
	token := mintToken(t, v, TokenClaims{UserID: "user-1", Exp: time.Now().Add(-time.Hour).Unix()})

	if _, err := v.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	v := NewVerifier("secret")
	for _, token := range []string{"", "a.b", "a.b.c.d", "not-a-token"} {
		if _, err := v.Verify(token); err == nil {
			t.Fatalf("expected error for token %q", token)
		}
	}
}

func TestFromHeader(t *testing.T) {
	cases := []struct {
		header    string
		want      string
		expectErr bool
	}{
		{header: "Bearer abc123", want: "abc123"},
		{header: "bearer abc123", want: "abc123"},
		{header: "", expectErr: true},
		{header: "Basic abc123", expectErr: true},
		{header: "Bearer", expectErr: true},
		{header: "Bearer ", expectErr: true},
	}

	for _, tc := range cases {
		got, err := FromHeader(tc.header)
		if tc.expectErr {
			if err == nil {
				t.Fatalf("expected error for header %q", tc.header)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for header %q: %v", tc.header, err)
		}
		if got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier("secret")
	token := mintToken(t, v, TokenClaims{UserID: "user-7", Exp: time.Now().Add(time.Hour).Unix()})

	e := echo.New()
	handler := Middleware(v)(func(c echo.Context) error {
		return c.String(http.StatusOK, UserID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "user-7" {
		t.Fatalf("expected user-7 with 200, got %d %q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}
