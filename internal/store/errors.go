package store

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("already exists")
	ErrNotParticipant = errors.New("sender not in conversation")
	ErrInvalid        = errors.New("invalid input")
)
