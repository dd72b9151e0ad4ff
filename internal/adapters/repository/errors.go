package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrDuplicate     = errors.New("entry already exists")
	ErrClosed        = errors.New("store is closed")
	ErrNotReady      = errors.New("store is not initialized")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrInvalidEntry  = errors.New("invalid entry")
)
