package lab

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lab id does not match a live session.
	ErrNotFound = errors.New("lab not found")

	// ErrPortsExhausted is returned when every host port in the configured
	// range is already held by a running lab.
	ErrPortsExhausted = errors.New("no free ports available for labs")

	// ErrRuntimeUnavailable is returned when no container engine is
	// reachable; lab creation is the only capability lost.
	ErrRuntimeUnavailable = errors.New("lab environment is not available on this server")

	// ErrEmptyPath is returned by file writes with no path.
	ErrEmptyPath = errors.New("missing path")
)

// ProvisionError wraps any failure between container creation and port
// confirmation. The underlying message is preserved for diagnostics.
type ProvisionError struct {
	Err error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("failed to start lab: %v", e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

func provisionErr(format string, args ...any) error {
	return &ProvisionError{Err: fmt.Errorf(format, args...)}
}
