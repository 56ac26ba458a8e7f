// Package errtax implements the runtime's error taxonomy (spec §7):
// ConfigError, TransientIO, ProtocolMismatch, and Unknown. Startup errors
// (ConfigError) are meant to propagate and terminate the process; the
// other three are caught at the innermost plugin boundary and converted
// into a log record plus "no output" — they never tear down a sibling
// sensor, connector, or background task.
package errtax

import "fmt"

// ConfigError indicates a plugin name is unknown, a schema validation
// failed, or required configuration/credentials are missing. Fatal at
// startup.
type ConfigError struct {
	Component string
	Err       error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config error in %s", e.Component)
	}
	return fmt.Sprintf("config error in %s: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError constructs a ConfigError for the named component.
func NewConfigError(component string, err error) *ConfigError {
	return &ConfigError{Component: component, Err: err}
}

// TransientIO indicates a network timeout, closed socket, or unavailable
// device. The operation that produced it is skipped; the next tick or
// cadence proceeds normally.
type TransientIO struct {
	Component string
	Err       error
}

func (e *TransientIO) Error() string {
	return fmt.Sprintf("transient I/O error in %s: %v", e.Component, e.Err)
}

func (e *TransientIO) Unwrap() error { return e.Err }

// NewTransientIO constructs a TransientIO for the named component.
func NewTransientIO(component string, err error) *TransientIO {
	return &TransientIO{Component: component, Err: err}
}

// ProtocolMismatch indicates an unparseable message from a subscribed
// topic or feed. The message is dropped; the caller continues.
type ProtocolMismatch struct {
	Component string
	Err       error
}

func (e *ProtocolMismatch) Error() string {
	return fmt.Sprintf("protocol mismatch in %s: %v", e.Component, e.Err)
}

func (e *ProtocolMismatch) Unwrap() error { return e.Err }

// NewProtocolMismatch constructs a ProtocolMismatch for the named component.
func NewProtocolMismatch(component string, err error) *ProtocolMismatch {
	return &ProtocolMismatch{Component: component, Err: err}
}

// Unknown wraps any error that doesn't fit the other three categories.
// The owning task logs it and continues.
type Unknown struct {
	Component string
	Err       error
}

func (e *Unknown) Error() string {
	return fmt.Sprintf("unknown error in %s: %v", e.Component, e.Err)
}

func (e *Unknown) Unwrap() error { return e.Err }

// NewUnknown constructs an Unknown for the named component.
func NewUnknown(component string, err error) *Unknown {
	if _, ok := err.(*ConfigError); ok {
		return &Unknown{Component: component, Err: err}
	}
	return &Unknown{Component: component, Err: err}
}

// Classify buckets an arbitrary error into one of the four taxonomy types
// when it isn't already one. Unrecognized errors are wrapped as Unknown.
func Classify(component string, err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *ConfigError, *TransientIO, *ProtocolMismatch, *Unknown:
		return err
	default:
		return NewUnknown(component, err)
	}
}
