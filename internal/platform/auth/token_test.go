package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestIssuer(clock *fakeClock) *TokenIssuer {
	return NewTokenIssuer(testSigningKey).WithClock(clock.Now)
}

func TestTokenIssuer_ValidBeforeExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(clock)

	tok, err := issuer.Issue("reception1", 30*time.Minute)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	clock.t = clock.t.Add(29 * time.Minute)
	sub, err := issuer.Validate(tok)
	if err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if sub != "reception1" {
		t.Errorf("expected subject reception1, got %q", sub)
	}
}

func TestTokenIssuer_ExpiredAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(clock)

	tok, err := issuer.Issue("reception1", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	clock.t = clock.t.Add(31 * time.Minute)
	if _, err := issuer.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	issuer := newTestIssuer(clock)

	tok, err := issuer.Issue("nurse", 0)
	if err != nil {
		t.Fatal(err)
	}

	clock.t = clock.t.Add(14 * time.Minute)
	if _, err := issuer.Validate(tok); err != nil {
		t.Errorf("expected token valid at 14m, got %v", err)
	}
	clock.t = clock.t.Add(2 * time.Minute)
	if _, err := issuer.Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected token expired at 16m, got %v", err)
	}
}

func TestTokenIssuer_WrongKey(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tok, err := NewTokenIssuer([]byte("other-key")).WithClock(clock.Now).Issue("x", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTestIssuer(clock).Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_RejectsMalformed(t *testing.T) {
	issuer := newTestIssuer(&fakeClock{t: time.Now()})
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := issuer.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTestIssuer(&fakeClock{t: time.Now()}).Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected none-signed token to be rejected, got %v", err)
	}
}

func TestTokenIssuer_RejectsMissingSubject(t *testing.T) {
	now := time.Now()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := newTestIssuer(&fakeClock{t: now}).Validate(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	if errors.Is(ErrInvalidToken, ErrUnknownIdentity) {
		t.Error("expected distinct sentinels")
	}
	if !IsAuthError(ErrUnknownIdentity) || !IsAuthError(ErrInvalidToken) {
		t.Error("expected both sentinels to be auth errors")
	}
}
