package utils

import (
	"errors"
	"testing"
	"time"

	"stillreel/models"
)

var testSecret = []byte("test-secret-key-for-jwt-signing-at-least-32-bytes-long")

func TestCreateAndVerifyAdminJWT(t *testing.T) {
	now := time.Now()
	token, err := CreateAdminJWT(&models.AdminJWT{
		Issuer:    "stillreel",
		Subject:   "operator",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
		Scopes:    []string{"runs"},
	}, testSecret)
	if err != nil {
		t.Fatalf("CreateAdminJWT: %v", err)
	}

	claims, err := VerifyAdminJWT(token, VerifyConfig{SecretKey: testSecret, ExpectedIssuer: "stillreel"})
	if err != nil {
		t.Fatalf("VerifyAdminJWT: %v", err)
	}
	if claims.Subject != "operator" || !claims.HasScope("runs") || claims.HasScope("export") {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyAdminJWTRejects(t *testing.T) {
	now := time.Now()
	expired, _ := CreateAdminJWT(&models.AdminJWT{Subject: "x", ExpiresAt: now.Add(-time.Hour).Unix()}, testSecret)
	exp := now.Add(2 * time.Hour).Unix()
	future, _ := CreateAdminJWT(&models.AdminJWT{Subject: "x", IssuedAt: now.Add(time.Hour).Unix(), ExpiresAt: exp}, testSecret)
	good, _ := CreateAdminJWT(&models.AdminJWT{Subject: "x", Issuer: "other", ExpiresAt: exp}, testSecret)
	noExpiry, _ := CreateAdminJWT(&models.AdminJWT{Subject: "x", IssuedAt: now.Unix()}, testSecret)

	cases := []struct {
		name  string
		token string
		cfg   VerifyConfig
		want  error
	}{
		{"empty", "", VerifyConfig{SecretKey: testSecret}, ErrInvalidToken},
		{"garbage", "not.a.jwt", VerifyConfig{SecretKey: testSecret}, ErrInvalidToken},
		{"expired", expired, VerifyConfig{SecretKey: testSecret}, ErrTokenExpired},
		{"future", future, VerifyConfig{SecretKey: testSecret}, ErrTokenNotYetValid},
		{"wrong key", good, VerifyConfig{SecretKey: []byte("another-secret-key-that-is-long-enough!!")}, ErrInvalidSignature},
		{"no expiry", noExpiry, VerifyConfig{SecretKey: testSecret}, ErrMissingExpiry},
		{"short secret", good, VerifyConfig{SecretKey: []byte("short")}, ErrSecretTooShort},
		{"issuer", good, VerifyConfig{SecretKey: testSecret, ExpectedIssuer: "stillreel"}, ErrInvalidIssuer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := VerifyAdminJWT(tc.token, tc.cfg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateAdminJWTNeedsLongSecret(t *testing.T) {
	claims := &models.AdminJWT{ExpiresAt: time.Now().Add(time.Hour).Unix()}
	for _, secret := range [][]byte{nil, []byte("my-admin-secret-1234"), make([]byte, MinSecretBytes-1)} {
		if _, err := CreateAdminJWT(claims, secret); !errors.Is(err, ErrSecretTooShort) {
			t.Errorf("%d-byte secret: err = %v, want ErrSecretTooShort", len(secret), err)
		}
	}
	if _, err := CreateAdminJWT(claims, make([]byte, MinSecretBytes)); err != nil {
		t.Errorf("%d-byte secret rejected: %v", MinSecretBytes, err)
	}
}

func TestGenerateRandomHex(t *testing.T) {
	a, err := GenerateRandomHex(16)
	if err != nil {
		t.Fatalf("GenerateRandomHex: %v", err)
	}
	if len(a) != 32 {
		t.Fatalf("len = %d, want 32", len(a))
	}
	b, _ := GenerateRandomHex(16)
	if a == b {
		t.Fatal("two keys should differ")
	}
}
