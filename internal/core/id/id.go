// Package id generates and parses the identifiers of companies, accounts,
// parties, documents and journal entries. New identifiers are UUIDv7, so
// journal entries created in the same day sort by creation time.
package id

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type ID = uuid.UUID

// ErrNil is returned by Parse for the all-zero identifier, which never names
// a stored record.
var ErrNil = errors.New("identifier is the nil uuid")

func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse reads an identifier supplied by a client (header, path, flag or
// payload). Surrounding spaces are ignored.
func Parse(s string) (ID, error) {
	v, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, err
	}
	if v == uuid.Nil {
		return uuid.Nil, ErrNil
	}
	return v, nil
}

// ParseOptional is Parse for optional references such as a parent account:
// nil or blank input yields nil.
func ParseOptional(s *string) (*ID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v, err := Parse(*s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func Nil() ID {
	return uuid.Nil
}

func IsNil(v ID) bool {
	return v == uuid.Nil
}
