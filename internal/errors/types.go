// Package errors provides the structured error types shared by typetour's
// loaders, configuration layer, and command line.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeContent    ErrorType = "content"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeTransport  ErrorType = "transport"
)

// Common error codes.
const (
	ErrCodeFileNotFound     = "ERR_FILE_NOT_FOUND"
	ErrCodeContentSyntax    = "ERR_CONTENT_SYNTAX"
	ErrCodeContentEmpty     = "ERR_CONTENT_EMPTY"
	ErrCodeTitleMissing     = "ERR_TITLE_MISSING"
	ErrCodeMarkdown         = "ERR_MARKDOWN"
	ErrCodeConfigInvalid    = "ERR_CONFIG_INVALID"
	ErrCodePathTraversal    = "ERR_PATH_TRAVERSAL"
	ErrCodeBadMessage       = "ERR_BAD_MESSAGE"
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// TourError is a structured error type with context.
type TourError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
	Path    string
}

// Error implements the error interface.
func (e *TourError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	if page, ok := e.Context["page"]; ok {
		parts = append(parts, fmt.Sprintf("page %v", page))
	}

	parts = append(parts, e.Message)
	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *TourError) Unwrap() error {
	return e.Cause
}

// Is matches another TourError with the same type and code.
func (e *TourError) Is(target error) bool {
	var t *TourError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *TourError) WithContext(key string, value interface{}) *TourError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the file the error refers to.
func (e *TourError) WithPath(path string) *TourError {
	e.Path = path

	return e
}

// Fields flattens the error into key/value pairs for structured logging.
func (e *TourError) Fields() []interface{} {
	fields := []interface{}{"type", string(e.Type), "code", e.Code}
	if e.Path != "" {
		fields = append(fields, "path", e.Path)
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, k, e.Context[k])
	}

	return fields
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *TourError {
	return &TourError{Type: ErrorTypeValidation, Code: code, Message: message}
}

// NewContentError creates an error about the page content file.
func NewContentError(code, message string, cause error) *TourError {
	return &TourError{Type: ErrorTypeContent, Code: code, Message: message, Cause: cause}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *TourError {
	return &TourError{Type: ErrorTypeConfig, Code: code, Message: message}
}

// NewTransportError creates an error for a malformed client message.
func NewTransportError(code, message string, cause error) *TourError {
	return &TourError{Type: ErrorTypeTransport, Code: code, Message: message, Cause: cause}
}

// Wrap wraps an error with additional context, creating a TourError if the
// input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *TourError {
	if err == nil {
		return nil
	}

	var te *TourError
	if errors.As(err, &te) {
		return &TourError{
			Type:    errType,
			Code:    code,
			Message: message,
			Cause:   te,
			Context: te.Context,
			Path:    te.Path,
		}
	}

	return &TourError{Type: errType, Code: code, Message: message, Cause: err}
}

// IsType reports whether err is a TourError of the given type.
func IsType(err error, errType ErrorType) bool {
	var te *TourError
	if errors.As(err, &te) {
		return te.Type == errType
	}

	return false
}

// GetCode returns the code of the outermost TourError in the chain.
func GetCode(err error) string {
	var te *TourError
	if errors.As(err, &te) {
		return te.Code
	}

	return ""
}
