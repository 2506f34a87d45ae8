// Package errors provides a structured error type (DeviceError) that classifies
// failures as transient, startup-fatal or invariant violations so task loops
// can decide whether to log-and-continue or abort.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory groups errors by the subsystem they originate from.
type ErrorCategory string

const (
	CategoryConfig    ErrorCategory = "config"
	CategoryStorage   ErrorCategory = "storage"
	CategoryNetwork   ErrorCategory = "network"
	CategoryContent   ErrorCategory = "content"
	CategoryDisplay   ErrorCategory = "display"
	CategoryPlatform  ErrorCategory = "platform"
	CategoryInternal  ErrorCategory = "internal"
	CategoryInput     ErrorCategory = "input"
	CategoryTransport ErrorCategory = "transport"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // aborts process start or demands a restart
	SeverityError   ErrorSeverity = "error"   // iteration failed, task continues
	SeverityWarning ErrorSeverity = "warning" // degraded, previous state retained
)

// DeviceError is a structured error with category, severity and retryability.
type DeviceError struct {
	Category  ErrorCategory  `json:"category"`
	Severity  ErrorSeverity  `json:"severity"`
	Message   string         `json:"message"`
	Cause     error          `json:"cause,omitempty"`
	Retryable bool           `json:"retryable"`
	Context   map[string]any `json:"context,omitempty"`
}

func (e *DeviceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

func (e *DeviceError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key/value pair describing the failure.
func (e *DeviceError) WithContext(key string, value any) *DeviceError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func New(category ErrorCategory, severity ErrorSeverity, message string) *DeviceError {
	return &DeviceError{Category: category, Severity: severity, Message: message}
}

func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *DeviceError {
	return &DeviceError{Category: category, Severity: severity, Message: message, Cause: err}
}

func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *DeviceError {
	return &DeviceError{Category: category, Severity: severity, Message: message, Cause: err, Retryable: true}
}

// IsCategory reports whether any DeviceError in err's chain has the category.
func IsCategory(err error, category ErrorCategory) bool {
	var de *DeviceError
	if stderrors.As(err, &de) {
		return de.Category == category
	}
	return false
}

// IsRetryable reports whether err is a transient failure that the owning task
// will retry on its normal schedule.
func IsRetryable(err error) bool {
	var de *DeviceError
	if stderrors.As(err, &de) {
		return de.Retryable
	}
	return false
}

// IsFatal reports whether err must abort process start.
func IsFatal(err error) bool {
	var de *DeviceError
	if stderrors.As(err, &de) {
		return de.Severity == SeverityFatal
	}
	return false
}
