package sensorbridge

import (
	"errors"
	"fmt"

	"github.com/e7canasta/orion-care-sensor/modules/sensor-bridge/engine"
)

// Error kinds. Match with errors.Is; the concrete value is always *Error.
var (
	// ErrInit reports a failure while loading configuration, forcing
	// configuration keys or creating producer modules.
	ErrInit = errors.New("sensor-bridge: init failed")
	// ErrStart reports that the engine refused to start streaming.
	ErrStart = errors.New("sensor-bridge: start failed")
	// ErrLicense reports a license fault during Update. It is returned on
	// every Update until the license is restored; the bridge never crashes
	// on it.
	ErrLicense = errors.New("sensor-bridge: license not acquired")
	// ErrEngine reports any other engine fault during Update.
	ErrEngine = errors.New("sensor-bridge: engine error")
	// ErrNotInitialized reports a call that needs a running bridge.
	ErrNotInitialized = errors.New("sensor-bridge: not initialized")
)

// Error is the error value returned by Bridge operations.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error
	// Op is the bridge operation that failed ("init", "update", ...).
	Op string
	// Code is the engine exception type, ExceptionGeneric for failures
	// that did not come from the engine.
	Code engine.ExceptionType
	// Message is the fixed description of Code.
	Message string
	// Err is the underlying engine error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("sensor-bridge: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("sensor-bridge: %s: %s (ExceptionType: %d): %v", e.Op, e.Message, int(e.Code), e.Err)
}

// Is matches the error kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

// Unwrap exposes the engine error, so errors.As can reach *engine.Fault.
func (e *Error) Unwrap() error { return e.Err }

// newError wraps an engine failure. The message comes from the exception
// table, never from the engine's free text.
func newError(kind error, op string, err error) *Error {
	code := engine.FaultType(err)
	return &Error{Kind: kind, Op: op, Code: code, Message: code.String(), Err: err}
}

// stateError reports a call made in the wrong lifecycle state.
func stateError(kind error, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Code: engine.ExceptionGeneric, Message: msg}
}
