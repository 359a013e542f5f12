package domain

import "errors"

// Common errors surfaced to callers. Per-source and per-recipient failures
// are swallowed locally and reflected as empty results or error strings in a
// DeliveryResult; these sentinels cover the user-visible conditions.
var (
	// ErrNotFound is returned on a lookup miss or an ownership mismatch.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrNoRecipients is returned when a send resolves an empty recipient set.
	ErrNoRecipients = errors.New("no clients to send to")

	// ErrNoActiveSources is returned when a user has no active sources.
	ErrNoActiveSources = errors.New("no active sources")

	// ErrNoContent is returned when scraping active sources yields nothing.
	ErrNoContent = errors.New("no content found from sources")

	// ErrMissingScheduleTime is returned when scheduling is requested
	// without a scheduled time.
	ErrMissingScheduleTime = errors.New("scheduled time required when not sending immediately")

	// ErrInvalidScheduleFormat is returned when a scheduled time string
	// cannot be parsed.
	ErrInvalidScheduleFormat = errors.New("invalid scheduled time format")
)
