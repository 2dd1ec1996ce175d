package validation

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxNameLength = 128
	maxIDLength   = 64
)

var (
	ErrNameEmpty        = errors.New("port list name cannot be empty")
	ErrNameTooLong      = errors.New("port list name too long (max 128 characters)")
	ErrNameControlChars = errors.New("port list name cannot contain control characters")

	ErrIDEmpty          = errors.New("entity id cannot be empty")
	ErrIDTooLong        = errors.New("entity id too long (max 64 characters)")
	ErrIDTraversal      = errors.New("entity id cannot contain '..'")
	ErrIDPathSeparator  = errors.New("entity id cannot contain path separators")
	ErrIDInvalidCharSet = errors.New("entity id contains invalid characters")
)

// IsValidPortListName checks a name before it is sent to the manager.
func IsValidPortListName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameEmpty
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return ErrNameControlChars
		}
	}
	return nil
}

// IsValidEntityID validates that an entity id is safe to use in file paths.
func IsValidEntityID(id string) error {
	if id == "" {
		return ErrIDEmpty
	}
	if len(id) > maxIDLength {
		return ErrIDTooLong
	}
	if strings.Contains(id, "..") {
		return ErrIDTraversal
	}
	if strings.ContainsAny(id, `/\`) {
		return ErrIDPathSeparator
	}

	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			continue
		}
		return ErrIDInvalidCharSet
	}

	return nil
}
