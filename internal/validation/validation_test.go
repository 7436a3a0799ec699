package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Valid-Password-1!", ""},
		{"too short", "Short-1!", "at least 12 characters"},
		{"too long", "Aa1!" + strings.Repeat("x", 130), "not exceed 128"},
		{"no uppercase", "lowercase-only-123!", "uppercase"},
		{"no lowercase", "UPPERCASE-ONLY-123!", "lowercase"},
		{"no digit", "No-Digits-Here!", "digit"},
		{"no special", "NoSpecialChars123ab", "special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  string
	}{
		{"valid", "john_doe-1", ""},
		{"too short", "ab", "at least 3 characters"},
		{"too long", strings.Repeat("a", 31), "not exceed 30"},
		{"invalid chars", "john doe", "letters, numbers"},
		{"leading underscore", "_john", "cannot start or end"},
		{"trailing hyphen", "john-", "cannot start or end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.NoError(t, ValidateEmail("user.name+tag@sub.example.co"))

	for _, email := range []string{"", "no-at-sign", "user@", "@example.com", "user@nodot"} {
		assert.Error(t, ValidateEmail(email), "email %q", email)
	}
}
