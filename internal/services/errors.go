package services

import "errors"

// Error taxonomy shared by all services. Handlers translate these to
// HTTP statuses and flash messages; callers check with errors.Is.
var (
	// ErrValidation marks malformed or missing required input. The
	// operation is rejected before any mutation is applied.
	ErrValidation = errors.New("invalid input")

	// ErrAuthentication marks an operation that requires an identified
	// actor when none is present.
	ErrAuthentication = errors.New("authentication required")

	// ErrAuthorization marks an identified actor lacking the required
	// relationship (owner/admin) to the target entity.
	ErrAuthorization = errors.New("not allowed")

	// ErrNotFound marks a referenced entity id that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrInvalidImage marks an upload in an unsupported image format.
	ErrInvalidImage = errors.New("unsupported image format")

	// ErrDelivery marks a failed outbound notification. It is logged at
	// the dispatch boundary and never surfaced to the triggering user.
	ErrDelivery = errors.New("delivery failed")
)
