package validators

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestUsernameValidator(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{"simple", "alice", nil},
		{"allowed specials", "a.b+c@d-e_f", nil},
		{"digits", "user123", nil},
		{"empty", "", ErrUsernameEmpty},
		{"too long", strings.Repeat("a", 151), ErrUsernameTooLong},
		{"max length ok", strings.Repeat("a", 150), nil},
		{"space", "ali ce", ErrUsernameInvalid},
		{"hash", "alice#1", ErrUsernameInvalid},
		{"unicode", "ålice", ErrUsernameInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, UsernameValidator(tt.username), tt.wantErr)
		})
	}
}

func TestPasswordValidator(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"long enough", "password123", nil},
		{"exactly 8", "12345678", nil},
		{"7 chars", "1234567", ErrPasswordTooShort},
		{"empty", "", ErrPasswordEmpty},
		{"too long", strings.Repeat("x", 256), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, PasswordValidator(tt.password), tt.wantErr)
		})
	}
}

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator(""))
	assert.NoError(t, EmailValidator("alice@example.com"))
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
}

func TestExtensionValidator(t *testing.T) {
	viper.Set("upload.allowed_extensions", []string{".pdf", ".docx", ".txt"})

	tests := []struct {
		name     string
		fileName string
		ok       bool
	}{
		{"pdf", "paper.pdf", true},
		{"docx", "notes.docx", true},
		{"txt", "notes.txt", true},
		{"uppercase", "PAPER.PDF", true},
		{"mixed case", "Notes.Txt", true},
		{"exe", "malware.exe", false},
		{"no extension", "README", false},
		{"empty name", "", false},
		{"double extension", "archive.txt.exe", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ExtensionValidator(tt.fileName)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestExtensionValidatorErrorNamesExtensionAndAllowSet(t *testing.T) {
	viper.Set("upload.allowed_extensions", []string{".pdf", ".docx", ".txt"})

	err := ExtensionValidator("malware.exe")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), ".exe")
	assert.Contains(t, err.Error(), ".pdf")
	assert.Contains(t, err.Error(), ".docx")
	assert.Contains(t, err.Error(), ".txt")
}
