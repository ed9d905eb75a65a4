package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrUnknownScale    = errors.New("unknown scale")
	ErrEmptyScale      = errors.New("scale has no notes")
	ErrInvalidPitch    = errors.New("invalid pitch label")
	ErrSourceTooLarge  = errors.New("source exceeds size limit")
	ErrUnknownFormat   = errors.New("unknown output format")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionStopped  = errors.New("session stopped")
)

// ScaleFileError represents a failure loading a custom scale file
type ScaleFileError struct {
	Path  string
	Scale string // empty when the whole file failed to parse
	Cause error
}

func (e *ScaleFileError) Error() string {
	if e.Scale != "" {
		return fmt.Sprintf("scale file %s: scale %q: %v", e.Path, e.Scale, e.Cause)
	}
	return fmt.Sprintf("scale file %s: %v", e.Path, e.Cause)
}

func (e *ScaleFileError) Unwrap() error {
	return e.Cause
}

// NewScaleFileError creates a ScaleFileError
func NewScaleFileError(path, scale string, cause error) *ScaleFileError {
	return &ScaleFileError{
		Path:  path,
		Scale: scale,
		Cause: cause,
	}
}

// IsClientError reports whether err was caused by bad caller input rather
// than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownScale) ||
		errors.Is(err, ErrEmptyScale) ||
		errors.Is(err, ErrInvalidPitch) ||
		errors.Is(err, ErrSourceTooLarge) ||
		errors.Is(err, ErrUnknownFormat)
}
