package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrNoWords      = errors.New("word list is empty")
	ErrNoSession    = errors.New("no practice session is running")
	ErrUnauthorized = errors.New("missing or rejected API token")
)
