package engine

import (
	"errors"
	"fmt"
)

// ExceptionType is the failure code carried by every engine fault.
type ExceptionType int

const (
	ExceptionOK ExceptionType = iota
	ExceptionGeneric
	ExceptionTerminated
	ExceptionBadConfigValue
	ExceptionConfigNotFound
	ExceptionModuleNotFound
	ExceptionLicenseNotAcquired
	ExceptionModuleNotInitialized
	ExceptionModuleNotStarted
)

// exceptionMessages is indexed by ExceptionType. Tooling matches on these
// strings, so they must not change.
var exceptionMessages = [...]string{
	"OK",
	"Exception",
	"Terminated",
	"Bad configuration value",
	"Configuration not found",
	"Module not found",
	"License not acquired",
	"Module not initialized",
	"Module not started",
}

// String returns the fixed message for the code. Unknown codes map to the
// generic "Exception" message.
func (t ExceptionType) String() string {
	if t < 0 || int(t) >= len(exceptionMessages) {
		return exceptionMessages[ExceptionGeneric]
	}
	return exceptionMessages[t]
}

// Fault is the error value returned by engine operations.
type Fault struct {
	Type ExceptionType
	// Msg is optional engine detail; it never replaces the table message.
	Msg string
}

// NewFault creates a fault of the given type.
func NewFault(t ExceptionType, msg string) *Fault {
	return &Fault{Type: t, Msg: msg}
}

func (f *Fault) Error() string {
	if f.Msg == "" {
		return fmt.Sprintf("engine: %s (ExceptionType: %d)", f.Type, int(f.Type))
	}
	return fmt.Sprintf("engine: %s (ExceptionType: %d): %s", f.Type, int(f.Type), f.Msg)
}

// IsLicenseFault reports whether err carries a license failure.
func IsLicenseFault(err error) bool {
	var f *Fault
	return errors.As(err, &f) && f.Type == ExceptionLicenseNotAcquired
}

// FaultType extracts the failure code from err. Errors that are not faults
// are reported as ExceptionGeneric.
func FaultType(err error) ExceptionType {
	var f *Fault
	if errors.As(err, &f) {
		return f.Type
	}
	return ExceptionGeneric
}
