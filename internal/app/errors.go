package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotAuthorized is returned when a submission arrives while locked.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrUnknownConsultant is returned for names outside the roster.
	ErrUnknownConsultant = errors.New("unknown consultant")
	// ErrPersistence wraps a store failure during submission.
	ErrPersistence = errors.New("persistence failed")
	// ErrLoad wraps a store failure while loading entries.
	ErrLoad = errors.New("load failed")
	// ErrNotStarted is returned by operations that need Start first.
	ErrNotStarted = errors.New("service not started")
)
