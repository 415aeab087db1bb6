package models

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameUnavailable is returned when the camera could not deliver a frame
	ErrFrameUnavailable = errors.New("frame unavailable")

	// ErrInvalidSettings is the sentinel behind every *ValidationError
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrUnknownField is returned when a patch names a key outside the whitelist
	ErrUnknownField = errors.New("unknown settings field")

	// ErrDeviceBusy is returned when camera parameters cannot be applied right now
	ErrDeviceBusy = errors.New("camera device busy")

	// ErrCoolingDown drops a burst trigger that arrived inside the cooldown window
	ErrCoolingDown = errors.New("capture cooling down")

	// ErrStorage wraps failures writing captured stills
	ErrStorage = errors.New("storage failure")

	// ErrCaptureNotFound is returned for unknown capture file names
	ErrCaptureNotFound = errors.New("capture not found")

	// ErrNotOwner is returned when releasing with a token that is not the current one
	ErrNotOwner = errors.New("not the current owner")

	// ErrAlreadyOwned is returned when claiming while another client holds the token
	ErrAlreadyOwned = errors.New("ownership already claimed")

	// ErrVersionConflict is returned when a write names a configuration version that is no longer current
	ErrVersionConflict = errors.New("configuration version conflict")

	ErrAlreadyRunning = errors.New("monitoring already running")
	ErrNotRunning     = errors.New("monitoring not running")
)

// ValidationError describes a rejected settings value
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidSettings
func (e *ValidationError) Unwrap() error {
	return ErrInvalidSettings
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
