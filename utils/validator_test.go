package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"student@example.com",
		"first.last@university.ac.uk",
		"name+tag@mail.co",
	}
	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = false, want true", email)
		}
	}

	invalid := []string{
		"",
		"plainaddress",
		"@missinglocal.com",
		"user@",
		"user@nodot",
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ok, msg := ValidatePassword("short"); ok || msg == "" {
		t.Error("expected short password to be rejected with a message")
	}
	if ok, msg := ValidatePassword("longenough"); !ok || msg != "" {
		t.Errorf("expected 8+ character password to pass, got (%v, %q)", ok, msg)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  hello  "); got != "hello" {
		t.Errorf("SanitizeInput trim: got %q", got)
	}
	if got := SanitizeInput("a\x00b"); got != "ab" {
		t.Errorf("SanitizeInput null bytes: got %q", got)
	}
}
