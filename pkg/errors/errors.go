package errors

import "fmt"

// Error codes
const (
	CodeEmbedError     = "EMBED_ERROR"
	CodeConfiguration  = "CONFIG_ERROR"
	CodeTransportError = "TRANSPORT_ERROR"
	CodeDataShape      = "DATA_SHAPE_ERROR"
	CodeSettings       = "SETTINGS_ERROR"
	CodeValidation     = "VALIDATION_ERROR"
)

type EmbedError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *EmbedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *EmbedError) Unwrap() error {
	return e.Cause
}

func (e *EmbedError) WithCause(cause error) *EmbedError {
	e.Cause = cause
	return e
}

// ConfigurationError reports missing or unusable credentials. It is raised
// before any network call is made.
type ConfigurationError struct {
	*EmbedError
	Field string
}

func NewConfigurationError(message, field string) *ConfigurationError {
	return &ConfigurationError{
		EmbedError: &EmbedError{
			Message:    message,
			Code:       CodeConfiguration,
			StatusCode: 0,
			Context: map[string]any{
				"field": field,
			},
		},
		Field: field,
	}
}

// TransportError carries the raw upstream status code and body so that debug
// output can show them verbatim. StatusCode is 0 when no response arrived.
type TransportError struct {
	*EmbedError
	URL  string
	Body string
}

func NewTransportError(message string, statusCode int, url, body string, cause error) *TransportError {
	return &TransportError{
		EmbedError: &EmbedError{
			Message:    message,
			Code:       CodeTransportError,
			StatusCode: statusCode,
			Context: map[string]any{
				"url": url,
			},
			Cause: cause,
		},
		URL:  url,
		Body: body,
	}
}

type DataShapeError struct {
	*EmbedError
	Path string
}

func NewDataShapeError(message, path string, cause error) *DataShapeError {
	return &DataShapeError{
		EmbedError: &EmbedError{
			Message: message,
			Code:    CodeDataShape,
			Context: map[string]any{
				"path": path,
			},
			Cause: cause,
		},
		Path: path,
	}
}

type SettingsError struct {
	*EmbedError
	Backend   string
	Operation string
}

func NewSettingsError(message, backend, operation string, cause error) *SettingsError {
	return &SettingsError{
		EmbedError: &EmbedError{
			Message:    message,
			Code:       CodeSettings,
			StatusCode: 500,
			Context: map[string]any{
				"backend":   backend,
				"operation": operation,
			},
			Cause: cause,
		},
		Backend:   backend,
		Operation: operation,
	}
}

// ValidationError rejects operator input before it is persisted.
type ValidationError struct {
	*EmbedError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		EmbedError: &EmbedError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}
