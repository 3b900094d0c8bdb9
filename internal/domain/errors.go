package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInconsistentMatch = errors.New("inconsistent match set")
	ErrOracleUnavailable = errors.New("semantic oracle unavailable")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnauthorized      = errors.New("unauthorized")
)
