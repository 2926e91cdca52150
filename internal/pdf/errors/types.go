package errors

import (
	"fmt"
	"net/http"
)

// FormError is returned by the form extraction and filling pipeline. It carries
// enough context for the HTTP and MCP boundaries to pick a response.
type FormError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	FilePath string    `json:"file_path,omitempty"`
	Err      error     `json:"-"`
}

// ErrorType represents the categories of failure the service distinguishes
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeParseFailure
	ErrorTypeNoFormFields
	ErrorTypeMissingAnswers
	ErrorTypeIOFailure
	ErrorTypeNotFound
)

// Sentinels for errors.Is comparisons. Only the Type is compared.
var (
	ErrParseFailure   = &FormError{Type: ErrorTypeParseFailure, Message: "malformed PDF"}
	ErrNoFormFields   = &FormError{Type: ErrorTypeNoFormFields, Message: "no form fields found"}
	ErrMissingAnswers = &FormError{Type: ErrorTypeMissingAnswers, Message: "Missing 'answers' in request"}
	ErrIOFailure      = &FormError{Type: ErrorTypeIOFailure, Message: "i/o failure"}
	ErrNotFound       = &FormError{Type: ErrorTypeNotFound, Message: "file not found"}
)

// Error implements the error interface
func (e *FormError) Error() string {
	msg := e.Message
	if e.FilePath != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.FilePath)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *FormError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a FormError of the same type
func (e *FormError) Is(target error) bool {
	t, ok := target.(*FormError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeParseFailure:
		return "PARSE_FAILURE"
	case ErrorTypeNoFormFields:
		return "NO_FORM_FIELDS"
	case ErrorTypeMissingAnswers:
		return "MISSING_ANSWERS"
	case ErrorTypeIOFailure:
		return "IO_FAILURE"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// HTTPStatus maps an error type to the status code the API responds with
func (et ErrorType) HTTPStatus() int {
	switch et {
	case ErrorTypeMissingAnswers:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// New creates a FormError without an underlying cause
func New(errorType ErrorType, message string) *FormError {
	return &FormError{
		Type:    errorType,
		Message: message,
	}
}

// Wrap creates a FormError around err
func Wrap(errorType ErrorType, message string, err error) *FormError {
	return &FormError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// WithFile records the file the error relates to
func (e *FormError) WithFile(filePath string) *FormError {
	e.FilePath = filePath
	return e
}

// TypeOf returns the ErrorType of the first FormError in err's chain,
// or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	for err != nil {
		if fe, ok := err.(*FormError); ok {
			return fe.Type
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ErrorTypeUnknown
		}
		err = u.Unwrap()
	}
	return ErrorTypeUnknown
}
