package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "pro1003-test-secret"

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func operatorClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "operator-1",
		"roles":  []string{RoleOperator},
		"scopes": []string{ScopeRead, ScopeControl, ScopeTelemetry},
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
}

func TestNewVerifierConfig(t *testing.T) {
	if _, err := NewVerifier(VerifierConfig{Algorithm: "HS256"}); err == nil {
		t.Error("HS256 without secret should fail")
	}
	if _, err := NewVerifier(VerifierConfig{Algorithm: "RS256", PublicKeyPEM: "garbage"}); err == nil {
		t.Error("RS256 with bad PEM should fail")
	}
	if _, err := NewVerifier(VerifierConfig{Algorithm: "none"}); err == nil {
		t.Error("unknown algorithm should fail")
	}
}

func TestVerifyHS256(t *testing.T) {
	v, err := NewVerifier(VerifierConfig{Algorithm: "HS256", SecretKey: testSecret})
	if err != nil {
		t.Fatal(err)
	}

	claims, err := v.VerifyToken(signHS256(t, operatorClaims()))
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if claims.Subject != "operator-1" || !claims.HasScopes(ScopeControl) {
		t.Errorf("claims = %+v", claims)
	}

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{"expired", func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }},
		{"no subject", func(c jwt.MapClaims) { delete(c, "sub") }},
		{"unknown role", func(c jwt.MapClaims) { c["roles"] = []string{"root"} }},
		{"unknown scope", func(c jwt.MapClaims) { c["scopes"] = []string{"write"} }},
		{"empty scopes", func(c jwt.MapClaims) { c["scopes"] = []string{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := operatorClaims()
			tt.mutate(c)
			if _, err := v.VerifyToken(signHS256(t, c)); err == nil {
				t.Error("VerifyToken() should fail")
			}
		})
	}

	if _, err := v.VerifyToken(""); err == nil {
		t.Error("empty token should fail")
	}
}

func TestVerifyRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	pemData := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	v, err := NewVerifier(VerifierConfig{Algorithm: "RS256", PublicKeyPEM: pemData})
	if err != nil {
		t.Fatal(err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, operatorClaims()).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.VerifyToken(token); err != nil {
		t.Errorf("VerifyToken() failed: %v", err)
	}

	// An HS256 token must not pass an RS256 verifier.
	if _, err := v.VerifyToken(signHS256(t, operatorClaims())); err == nil {
		t.Error("algorithm confusion should be rejected")
	}
}

func TestMiddleware(t *testing.T) {
	v, _ := NewVerifier(VerifierConfig{Algorithm: "HS256", SecretKey: testSecret})
	m := NewMiddleware(v)

	var subject string
	handler := m.Protect(func(w http.ResponseWriter, r *http.Request) {
		subject = Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}, ScopeControl)

	viewer := operatorClaims()
	viewer["roles"] = []string{RoleViewer}
	viewer["scopes"] = []string{ScopeRead}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"viewer", "Bearer " + signHS256(t, viewer), http.StatusForbidden},
		{"operator", "Bearer " + signHS256(t, operatorClaims()), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/settings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	if subject != "operator-1" {
		t.Errorf("Subject() = %q", subject)
	}
}

func TestSubjectAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if Subject(req.Context()) != "anonymous" {
		t.Error("Subject() without claims should be anonymous")
	}
}
