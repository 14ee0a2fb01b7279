package lifecycle

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTornDown is returned once Teardown has run.
	ErrTornDown = errors.New("emulator has been torn down")

	// ErrNotReady is returned when endpoints are requested without a published snapshot.
	ErrNotReady = errors.New("emulator is not ready")
)

// StartupFailedError reports an emulator that could not be brought to Ready.
type StartupFailedError struct {
	Reason string
	Cause  error
}

func (e *StartupFailedError) Error() string {
	if e.Cause == nil {
		return "emulator startup failed: " + e.Reason
	}
	return fmt.Sprintf("emulator startup failed: %s: %v", e.Reason, e.Cause)
}

func (e *StartupFailedError) Unwrap() error { return e.Cause }

// StartupTimeoutError reports that the ready marker was not seen in time.
type StartupTimeoutError struct {
	Timeout time.Duration
	Marker  string
}

func (e *StartupTimeoutError) Error() string {
	return fmt.Sprintf("emulator did not print %q within %s", e.Marker, e.Timeout)
}
