package domain

import "strings"

// ID names one column or task within a board. Values are opaque and compared by equality only.
type ID string

// ParseID trims raw input and rejects blank identifiers.
func ParseID(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidID
	}
	return ID(raw), nil
}

// String returns the raw identifier text.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id == ""
}
