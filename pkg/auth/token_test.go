package auth

import (
	"testing"
	"time"

	"github.com/crowdspark/crowdspark-backend/pkg/config"
	"github.com/crowdspark/crowdspark-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "crowdspark",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParse(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now(), userID, enums.UserRoleAdmin)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("role = %s", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), uuid.New(), enums.UserRoleDonor)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected parse to fail with wrong secret")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-2*time.Hour), uuid.New(), enums.UserRoleStudent)
	if err != nil {
		t.Fatalf("mint error: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected parse to fail for expired token")
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), uuid.New(), enums.UserRole("superuser")); err == nil {
		t.Fatal("expected mint to reject unknown role")
	}
}
