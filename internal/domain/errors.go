package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidReference = errors.New("invalid flight reference")
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid booking state")
	ErrConflict         = errors.New("concurrent update conflict")
	ErrDuplicateRefID   = errors.New("duplicate booking reference")

	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrFlightNotFound  = fmt.Errorf("flight %w", ErrNotFound)
	ErrFlightExists    = fmt.Errorf("flight already exists: %w", ErrConflict)
)
