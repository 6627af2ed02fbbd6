package errors

import (
	"strings"
	"unicode"
)

// ValidateModuleID validates a module identifier for safety and correctness.
// Module ids end up in file paths and launch parameters, so names that could
// be used for path traversal or injection are rejected.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - No marker characters used by the launch parameter format
//   - Maximum length of 256 characters
func ValidateModuleID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "module id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "module id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "module id contains invalid control characters")
		}
	}

	if strings.ContainsAny(id, "/\\*") {
		return New(ErrCodeInvalidInput, "module id contains invalid characters: %q", id)
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidInput, "module id cannot contain path traversal sequences")
	}

	return nil
}

// ValidateGameMode validates a launch game mode token.
// The token is substituted verbatim into launch parameters, so it must be a
// single plain word.
func ValidateGameMode(mode string) error {
	if mode == "" {
		return New(ErrCodeInvalidGameMode, "game mode cannot be empty")
	}
	for _, r := range mode {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return New(ErrCodeInvalidGameMode, "invalid game mode: %q", mode)
		}
	}
	return nil
}
