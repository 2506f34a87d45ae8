package errors

// Transient failures: logged, previous state retained, retried on schedule.

func SourceRefreshFailed(source string, cause error) *DeviceError {
	return WrapRetryable(cause, CategoryContent, SeverityWarning, "content refresh failed").
		WithContext("source", source)
}

func PersistFailed(key string, cause error) *DeviceError {
	return WrapRetryable(cause, CategoryStorage, SeverityWarning, "persisting value failed").
		WithContext("key", key)
}

func ConnectFailed(ssid string, cause error) *DeviceError {
	return WrapRetryable(cause, CategoryNetwork, SeverityWarning, "wifi connection failed").
		WithContext("ssid", ssid)
}

func DisplayFailed(op string, cause error) *DeviceError {
	return WrapRetryable(cause, CategoryDisplay, SeverityError, "display operation failed").
		WithContext("operation", op)
}

// Startup-fatal failures.

func PlatformInit(resource string, cause error) *DeviceError {
	return Wrap(cause, CategoryPlatform, SeverityFatal, "platform resource unavailable").
		WithContext("resource", resource)
}

func ConfigInvalid(field, reason string) *DeviceError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason)
}

// InvariantViolation marks a programming error; the process is expected to be
// restarted by its supervisor.
func InvariantViolation(message string) *DeviceError {
	return New(CategoryInternal, SeverityFatal, message)
}
