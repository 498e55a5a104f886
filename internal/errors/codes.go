package errors

// Common error codes
const (
	// System errors
	ErrInternal        ErrorCode = "internal_error"
	ErrInvalidArgument ErrorCode = "invalid_argument"
	ErrInvalidState    ErrorCode = "invalid_state"

	// Probe errors
	ErrIOUnavailable  ErrorCode = "io_unavailable"
	ErrParseFailed    ErrorCode = "parse_failed"
	ErrDeviceNotFound ErrorCode = "device_not_found"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Application errors
	ErrInitApp       ErrorCode = "init_app_failed"
	ErrReportSection ErrorCode = "report_section_failed"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInternal:        "Internal error occurred",
	ErrInvalidArgument: "Invalid argument provided",
	ErrInvalidState:    "Invalid state",
	ErrIOUnavailable:   "Pseudo-file could not be opened",
	ErrParseFailed:     "Pseudo-file did not contain the expected token shape",
	ErrDeviceNotFound:  "No matching hwmon device found",
	ErrInvalidConfig:   "Invalid configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitApp:         "Failed to initialize application",
	ErrReportSection:   "Report section failed",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}
