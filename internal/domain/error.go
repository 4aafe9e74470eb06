package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrAlreadyExists     = errors.New("entity already exists")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrFreeQuotaExceeded = errors.New("free figure quota exhausted")

	// Store errors. ErrStoreUnavailable marks transient backing-store
	// failures that are safe to retry; ErrStoreFailure is terminal.
	ErrStoreUnavailable = errors.New("store temporarily unavailable")
	ErrStoreFailure     = errors.New("store failure")

	ErrInvalidExecContext = errors.New("invalid executor context")
)
