package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLength is returned when a name falls outside the 1-64 byte range.
	ErrInvalidLength = errors.New("invalid length")
	// ErrMalformedPayload is returned when raw device data cannot be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrFieldNotFound is returned when an expected field is absent from device output.
	ErrFieldNotFound = errors.New("field not found")
	// ErrDevice is matched by every DeviceError.
	ErrDevice = errors.New("device error")
	// ErrNotFound is returned when an index or name lookup has no match.
	ErrNotFound = errors.New("not found")
	// ErrInvalidParameter is returned when an operation's parameters fail validation.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupported is returned for operations not available on a platform.
	ErrUnsupported = errors.New("not available on this platform")
)

// DeviceError carries the device output line that reported a failure.
type DeviceError struct {
	Line string
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device reported: %s", e.Line)
}

// Is reports whether target is ErrDevice.
func (e *DeviceError) Is(target error) bool {
	return target == ErrDevice
}

// FieldNotFoundError names the field that could not be extracted.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found", e.Field)
}

func (e *FieldNotFoundError) Is(target error) bool {
	return target == ErrFieldNotFound
}

// InvalidParameter wraps ErrInvalidParameter with a formatted reason.
func InvalidParameter(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
