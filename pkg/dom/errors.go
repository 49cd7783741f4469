package dom

import "github.com/vango-dev/webdsl/internal/errors"

var (
	// ErrInvalidArgument matches errors for arguments the builder rejects.
	ErrInvalidArgument = errors.ErrInvalidArgument

	// ErrStackInvariantViolation matches the panic value raised when a scope is
	// closed out of order.
	ErrStackInvariantViolation = errors.ErrStackInvariantViolation

	// ErrSourceUnavailable matches errors from SourceResolver.
	ErrSourceUnavailable = errors.ErrSourceUnavailable
)
