package domain

import (
	"errors"
	"fmt"
	"time"
)

// Error codes for the engine failure taxonomy.
const (
	// ErrSchemaMismatch marks a feature vector whose shape does not match
	// the disease's declared schema. Programming error, always fatal.
	ErrSchemaMismatch = "SCHEMA_MISMATCH"
	// ErrModelUnavailable marks an adapter whose underlying artifact failed
	// to load or predict. Recoverable: that disease is skipped.
	ErrModelUnavailable = "MODEL_UNAVAILABLE"
	// ErrInvalidCalibration marks a calibration curve that violated
	// monotonicity at load time. Same skip behavior as ErrModelUnavailable.
	ErrInvalidCalibration = "INVALID_CALIBRATION"
	// ErrStore marks a failure of the external store itself. Cross-cutting,
	// aborts the whole assessment.
	ErrStore = "STORE_ERROR"
	// ErrInvalidConfig marks configuration that failed validation at startup.
	ErrInvalidConfig = "INVALID_CONFIG"
)

// EngineError is the standardized engine error carrying a taxonomy code.
type EngineError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewEngineError creates a new EngineError with timestamp.
func NewEngineError(code, message, details string) *EngineError {
	return &EngineError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is (or wraps) an EngineError with the given code.
func IsCode(err error, code string) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}
