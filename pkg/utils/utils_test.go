package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestSanitize(t *testing.T) {
	if got := SanitizeIdentifier("  HVAC_A\t\n"); got != "HVAC_A" {
		t.Errorf("SanitizeIdentifier = %q", got)
	}
	if got := SanitizeEmail(" Jane@Example.COM<br>"); got != "jane@example.com" {
		t.Errorf("SanitizeEmail = %q", got)
	}
	if got := SanitizeText(" Home WiFi 5G "); got != "Home WiFi 5G" {
		t.Errorf("SanitizeText = %q", got)
	}
}

func TestIsEmailShaped(t *testing.T) {
	if !IsEmailShaped("jane@example.com") {
		t.Error("email not detected")
	}
	if IsEmailShaped("HVAC_A") {
		t.Error("company id detected as email")
	}
}

func TestSecretRoundTrip(t *testing.T) {
	hash, err := HashSecretCost("supersecret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckSecret(hash, "supersecret") {
		t.Error("matching secret rejected")
	}
	if CheckSecret(hash, "SuperSecret") {
		t.Error("secret comparison must be case sensitive")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"n3wpassword": true,
		"Secret123!":  true,
		"short1":      false,
		"allletters":  false,
		"1234567890":  false,
		"":            false,
	}
	for pw, ok := range cases {
		if err := ValidatePassword(pw); (err == nil) != ok {
			t.Errorf("ValidatePassword(%q) = %v, want ok=%v", pw, err, ok)
		}
	}
}
