package utils

import (
	"errors"
	"testing"

	"vidhub-go/internal/config"
)

func setupJWT(secret string, hours int) {
	config.Set(&config.Config{
		App: config.AppConfig{Name: "vidhub-test"},
		JWT: config.JWTConfig{Secret: secret, ExpireHours: hours},
	})
}

func TestTokenRoundTrip(t *testing.T) {
	setupJWT("s3cret", 1)

	token, err := GenerateToken(42, "u1@example.com", true)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 42 || claims.Email != "u1@example.com" || !claims.IsAdmin {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	setupJWT("one", 1)
	token, _ := GenerateToken(1, "a@b.c", false)

	setupJWT("two", 1)
	if _, err := ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestParseTokenExpired(t *testing.T) {
	setupJWT("s", -1)
	token, _ := GenerateToken(1, "a@b.c", false)
	if _, err := ParseToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword("secret1", hash) || VerifyPassword("secret2", hash) {
		t.Fatal("bcrypt verification mismatch")
	}
}
