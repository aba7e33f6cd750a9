package models

import "errors"

// Sentinel errors for the service layer. Controllers map these onto HTTP
// status codes with errors.Is; services wrap them with context via fmt.Errorf
// and %w.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)
