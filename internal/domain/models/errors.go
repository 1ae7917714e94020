package models

import "errors"

var (
	// ErrInvalidWindow indicates a non-positive day count or a start after the end.
	ErrInvalidWindow = errors.New("invalid date window")
	// ErrInvalidHomeID indicates a missing or malformed home identifier.
	ErrInvalidHomeID = errors.New("invalid home id")
	// ErrStoreUnavailable wraps failures of the underlying record store.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrHomeNotFound indicates the home does not exist.
	ErrHomeNotFound = errors.New("home not found")
	// ErrDuplicateRecord indicates a record already exists for the home and day.
	ErrDuplicateRecord = errors.New("consumption record already exists for home and date")
)
