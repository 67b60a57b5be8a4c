package order

import "github.com/pkg/errors"

// Error taxonomy of the order lifecycle. Handlers select HTTP status codes
// with errors.Is against these sentinels; services wrap them with context.
var (
	// ErrValidation marks a malformed submission or transition request,
	// rejected before any side effect.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an operation against a nonexistent order.
	ErrNotFound = errors.New("order not found")

	// ErrTerminalState marks a transition on an order already confirmed or
	// rejected. Terminal states accept no further transitions.
	ErrTerminalState = errors.New("order already in a terminal state")

	// ErrPersistence marks an unreachable or failing durable store; the
	// operation is aborted with nothing partially applied.
	ErrPersistence = errors.New("order store unavailable")

	// ErrNotification marks an email failure after a committed state change.
	// The state change stands; callers get this error to log or surface.
	ErrNotification = errors.New("status notification failed")
)
