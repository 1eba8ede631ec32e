package errors

import (
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "title", false},
		{"with dot", "a.b", false},
		{"with spaces", "hello world", false},
		{"unicode", "título", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("k", 300), true},
		{"newline", "foo\nbar", true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidKey) {
				t.Errorf("ValidateKey(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidKey)
			}
		})
	}
}

func TestValidateKeyEmptyMessage(t *testing.T) {
	err := ValidateKey("")
	if got := UserMessage(err); got != "Field name cannot be empty" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{"single", []string{"title"}, false},
		{"nested", []string{"errors", "auth", "title"}, false},

		{"root", nil, true},
		{"empty segment", []string{"a", ""}, true},
		{"control char", []string{"a\tb"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestRequirePath(t *testing.T) {
	if err := RequirePath(nil); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("RequirePath(nil) = %v, want INVALID_PATH", err)
	}
	for _, p := range [][]string{{" "}, {"b", ""}, {"line\nbreak"}} {
		if err := RequirePath(p); err != nil {
			t.Errorf("RequirePath(%q) = %v, existing names must be accepted", p, err)
		}
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "en.json", false},
		{"nested", "en/comments.json", false},
		{"dots in name", "app..en.json", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret.json", true},
		{"traversal middle", "a/../../b.json", true},
		{"backslash", "a\\b.json", true},
		{"null byte", "a\x00.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLanguage(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"en", false},
		{"pt-br", false},
		{"zh-Hant", false},
		{"sr_Latn", false},
		{"fil", false},

		{"", true},
		{"e", true},
		{"english!", true},
		{"en-", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateLanguage(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLanguage(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
