package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxKeyLength bounds a single key segment.
const maxKeyLength = 256

// ValidateKey validates one key segment of a document path.
//
// Keys are free-form JSON object member names, so the rules only reject
// what cannot be edited sensibly in a grid:
//   - No empty or whitespace-only keys
//   - No control characters
//   - Maximum length of 256 characters
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return New(ErrCodeInvalidKey, "Field name cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates every segment of a document path.
// The root path (no segments) is rejected because no operation targets it.
func ValidatePath(segments []string) error {
	if len(segments) == 0 {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	for i, seg := range segments {
		if err := ValidateKey(seg); err != nil {
			return Wrap(ErrCodeInvalidPath, err, "segment %d of %q", i, strings.Join(segments, "."))
		}
	}
	return nil
}

// RequirePath rejects only the root path. Segments of an existing path may
// be any JSON member name, including ones ValidateKey would refuse.
func RequirePath(segments []string) error {
	if len(segments) == 0 {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	return nil
}

// ValidateFilePath validates a document file path relative to the workspace.
// It prevents path traversal and absolute paths.
func ValidateFilePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// languageRegex matches BCP 47 style codes such as "en", "pt-br" or "zh-Hant".
var languageRegex = regexp.MustCompile(`^[A-Za-z]{2,3}([_-][A-Za-z0-9]{2,8})*$`)

// ValidateLanguage validates a language code.
func ValidateLanguage(code string) error {
	if code == "" {
		return New(ErrCodeInvalidLanguage, "language cannot be empty")
	}
	if !languageRegex.MatchString(code) {
		return New(ErrCodeInvalidLanguage, "invalid language code: %q", code)
	}
	return nil
}
