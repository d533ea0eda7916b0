// Package domain defines domain-specific errors.
// These errors represent failures of the visualiser core and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrNoFileSelected is returned when a load is requested without a file.
	ErrNoFileSelected = errors.New("no file selected")

	// ErrNoAssetLoaded is returned when a transport command needs a loaded asset.
	ErrNoAssetLoaded = errors.New("no audio asset loaded")

	// ErrLoadSuperseded is returned when a newer load started before this one finished.
	ErrLoadSuperseded = errors.New("load superseded by a newer request")

	// ErrAlreadyStarted is returned when the playback clock of a graph is started twice.
	ErrAlreadyStarted = errors.New("playback already started")

	// ErrEmptyAsset is returned when a decoded asset has no samples.
	ErrEmptyAsset = errors.New("decoded audio contains no samples")

	// ErrUnsupportedFormat is returned when a payload matches no known container.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidVolume is returned when the volume is out of valid range (0.0-1.0).
	ErrInvalidVolume = errors.New("invalid volume: must be between 0.0 and 1.0")

	// ErrInvalidSensitivity is returned when the sensitivity is not positive.
	ErrInvalidSensitivity = errors.New("invalid sensitivity: must be positive")

	// ErrInvalidBassGain is returned when the bass gain is outside the filter range.
	ErrInvalidBassGain = errors.New("invalid bass gain: must be between -40 and 40 dB")

	// ErrInvalidSeek is returned when a seek percentage is outside [0, 100].
	ErrInvalidSeek = errors.New("invalid seek position: must be between 0 and 100")

	// ErrUnknownMode is returned for an unrecognised visual mode.
	ErrUnknownMode = errors.New("unknown visual mode")

	// ErrInvalidTheme is returned for a theme other than light or dark.
	ErrInvalidTheme = errors.New("invalid theme: must be 'light' or 'dark'")

	// ErrNotInitialized is returned when an operation is attempted on an uninitialized component.
	ErrNotInitialized = errors.New("component not initialized")
)

// DecodeError reports an unreadable or unsupported audio payload.
// Size and Format give the context of the offending payload.
type DecodeError struct {
	Name   string // Display name of the payload (if known)
	Size   int    // Payload size in bytes
	Format string // Detected container, or "unknown"
	Err    error  // Underlying decoder error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("decode '%s' failed (%d bytes, format %s): %v", e.Name, e.Size, e.Format, e.Err)
	}
	return fmt.Sprintf("decode failed (%d bytes, format %s): %v", e.Size, e.Format, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(name string, size int, format string, err error) *DecodeError {
	return &DecodeError{
		Name:   name,
		Size:   size,
		Format: format,
		Err:    err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   any    // Value that failed validation
	Message string // Error message
	Err     error  // Sentinel the failure corresponds to
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, sentinel error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: sentinel.Error(),
		Err:     sentinel,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "TransportService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
