package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidMapping indicates the field mapping configuration is unusable.
	ErrInvalidMapping = errors.New("invalid field mapping")

	// ErrUnsupportedType indicates an unknown course driver or property type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// Run Errors.

	// ErrSourceUnavailable indicates the vocabulary database could not be read.
	// The run aborts before anything is applied.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrTargetStateUnavailable indicates the course state could not be read.
	// The run aborts before reconciliation so no CREATE is generated for an
	// entry that may already exist.
	ErrTargetStateUnavailable = errors.New("target state unavailable")

	// ErrPartialApply indicates at least one change-set item failed to apply.
	ErrPartialApply = errors.New("change-set partially applied")

	// ErrStampMissing indicates the course adapter did not stamp the record id
	// into the entry it created or updated.
	ErrStampMissing = errors.New("entry not stamped with record id")

	// ErrSessionClosed indicates a course session was used after Close.
	ErrSessionClosed = errors.New("course session closed")

	// Authentication Errors.

	// ErrAuthRequired indicates a credential is required but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
