package domain

import "errors"

var (
	// ErrAuth is returned when no usable credential is configured.
	ErrAuth = errors.New("AUTH")
	// ErrRemote is returned for failed or malformed API responses, including timeouts.
	ErrRemote = errors.New("REMOTE")
	// ErrIO is returned when the cache or a target file cannot be read or written.
	ErrIO = errors.New("IO")
)
