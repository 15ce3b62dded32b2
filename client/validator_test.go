package client

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testIssuer = "https://sso.example.com/auth/realms/my-realm"

// newJWKSServer serves a single-key RSA JWKS for the given key.
func newJWKSServer(t *testing.T, kid string, key *rsa.PrivateKey) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"keys": []map[string]string{{
				"kid": kid,
				"kty": "RSA",
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString([]byte{0x01, 0x00, 0x01}),
			}},
		})
	}))
}

func signTestToken(t *testing.T, kid string, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestJWKSValidator_ValidateToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	server := newJWKSServer(t, "test-kid", key)
	defer server.Close()

	validator, err := NewJWKSValidator(server.URL, testIssuer, time.Hour, nil)
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		tokenString := signTestToken(t, "test-kid", key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testIssuer,
				Subject:   "4f5cab46-3f0a-4a4b-bf5b-0e8302d87c11",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			PreferredUsername: "alice",
			Email:             "alice@example.com",
			RealmAccess:       RoleAccess{Roles: []string{"operator"}},
			Scope:             "openid email",
		})

		info, err := validator.ValidateToken(context.Background(), tokenString)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.UserID != "4f5cab46-3f0a-4a4b-bf5b-0e8302d87c11" {
			t.Errorf("UserID = %q", info.UserID)
		}
		if info.Username != "alice" || info.Email != "alice@example.com" {
			t.Errorf("unexpected identity: %+v", info)
		}
		if !info.HasRealmRole("operator") {
			t.Error("expected operator realm role")
		}
		if !info.HasScope("email") {
			t.Error("expected email scope")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		tokenString := signTestToken(t, "test-kid", key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testIssuer,
				Subject:   "sub",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		if _, err := validator.ValidateToken(context.Background(), tokenString); err == nil {
			t.Fatal("expected error for expired token")
		}
	})

	t.Run("missing expiration", func(t *testing.T) {
		tokenString := signTestToken(t, "test-kid", key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:  testIssuer,
				Subject: "sub",
			},
		})
		if _, err := validator.ValidateToken(context.Background(), tokenString); err == nil {
			t.Fatal("expected error for token without exp claim")
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		tokenString := signTestToken(t, "test-kid", key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "https://evil.example.com/auth/realms/my-realm",
				Subject:   "sub",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		if _, err := validator.ValidateToken(context.Background(), tokenString); err == nil {
			t.Fatal("expected error for wrong issuer")
		}
	})

	t.Run("unknown kid", func(t *testing.T) {
		tokenString := signTestToken(t, "other-kid", key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		if _, err := validator.ValidateToken(context.Background(), tokenString); err == nil {
			t.Fatal("expected error for unknown kid")
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := validator.ValidateToken(context.Background(), "not-a-jwt"); err == nil {
			t.Fatal("expected error for malformed token")
		}
	})

	t.Run("tampered signature", func(t *testing.T) {
		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}
		tokenString := signTestToken(t, "test-kid", otherKey, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		if _, err := validator.ValidateToken(context.Background(), tokenString); err == nil {
			t.Fatal("expected error for signature from another key")
		}
	})
}

func TestJWKSValidator_InitialFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	if _, err := NewJWKSValidator(server.URL, testIssuer, time.Hour, nil); err == nil {
		t.Fatal("expected error when JWKS endpoint is unavailable")
	}
}

func TestParseRSAPublicKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	parsed, err := parseRSAPublicKey(
		base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
		base64.RawURLEncoding.EncodeToString([]byte{0x01, 0x00, 0x01}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.N.Cmp(key.PublicKey.N) != 0 {
		t.Error("modulus mismatch")
	}
	if parsed.E != 65537 {
		t.Errorf("exponent = %d, want 65537", parsed.E)
	}
}
