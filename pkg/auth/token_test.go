package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/bechdu/buyback-backend/pkg/config"
	"github.com/bechdu/buyback-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "bechdu-test",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	payload := AccessTokenPayload{
		Phone:          "9876543210",
		Role:           enums.RolePartner,
		LoggedInDevice: "Mozilla/5.0 (Android)",
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Phone != payload.Phone {
		t.Fatalf("phone mismatch: %q", claims.Phone)
	}
	if claims.Role != enums.RolePartner {
		t.Fatalf("role mismatch: %q", claims.Role)
	}
	if claims.LoggedInDevice != payload.LoggedInDevice {
		t.Fatalf("device mismatch: %q", claims.LoggedInDevice)
	}
}

func TestMintRejectsBadInputs(t *testing.T) {
	cfg := testJWTConfig()
	base := AccessTokenPayload{Phone: "9876543210", Role: enums.RolePartner}

	noSecret := cfg
	noSecret.Secret = ""
	if _, err := MintAccessToken(noSecret, time.Now(), base); err == nil {
		t.Fatal("expected error for missing secret")
	}

	noIssuer := cfg
	noIssuer.Issuer = ""
	if _, err := MintAccessToken(noIssuer, time.Now(), base); err == nil {
		t.Fatal("expected error for missing issuer")
	}

	noPhone := base
	noPhone.Phone = ""
	if _, err := MintAccessToken(cfg, time.Now(), noPhone); err == nil {
		t.Fatal("expected error for missing phone")
	}

	badRole := base
	badRole.Role = "courier"
	if _, err := MintAccessToken(cfg, time.Now(), badRole); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	issued := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, issued, AccessTokenPayload{Phone: "9876543210", Role: enums.RolePickUp})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Phone: "9876543210", Role: enums.RolePartner})
	if err != nil {
		t.Fatalf("MintAccessToken: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil || !strings.Contains(err.Error(), "iss") {
		t.Fatalf("expected issuer validation failure, got %v", err)
	}
}
