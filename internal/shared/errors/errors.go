package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a failure in the sync pipeline
type ErrorType string

const (
	ErrorTypeConnection ErrorType = "CONNECTION_FAILURE"
	ErrorTypeFetch      ErrorType = "FETCH_FAILURE"
	ErrorTypeParse      ErrorType = "PARSE_FAILURE"
	ErrorTypeStoreWrite ErrorType = "STORE_WRITE_FAILURE"
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

// Sentinels matched with errors.Is
var (
	ErrStoreUnreachable = errors.New("document store unreachable")
	ErrPaginationCycle  = errors.New("pagination revisited a page")
	ErrPageLimit        = errors.New("pagination page limit reached")
	ErrUnparseableDate  = errors.New("unparseable date field")
	ErrPartitionEmpty   = errors.New("partition name is empty")
)

// AppError carries a failure class and the component that raised it
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates an AppError of the given class
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCause attaches the underlying error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent tags the error with the component that raised it
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a structured detail
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewConnectionError reports an unusable document store
func NewConnectionError(message string) *AppError {
	return NewAppError(ErrorTypeConnection, message, http.StatusServiceUnavailable)
}

// NewFetchError reports a transport, timeout or status failure while fetching a page
func NewFetchError(message string) *AppError {
	return NewAppError(ErrorTypeFetch, message, http.StatusBadGateway)
}

// NewParseError reports a malformed body or an unparseable field
func NewParseError(message string) *AppError {
	return NewAppError(ErrorTypeParse, message, http.StatusUnprocessableEntity)
}

// NewStoreWriteError reports a failed insert, delete or index-ensure
func NewStoreWriteError(message string) *AppError {
	return NewAppError(ErrorTypeStoreWrite, message, http.StatusInternalServerError)
}

func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// FieldError is one rejected configuration or dataset field
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors accumulates field errors so they can be reported together
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: make([]FieldError, 0)}
}

func (ve *ValidationErrors) Error() string {
	switch len(ve.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s: %s", ve.Errors[0].Field, ve.Errors[0].Message)
	default:
		return fmt.Sprintf("validation failed: %s: %s (and %d more)", ve.Errors[0].Field, ve.Errors[0].Message, len(ve.Errors)-1)
	}
}

// Add records a rejected field
func (ve *ValidationErrors) Add(field, message string, value interface{}) *ValidationErrors {
	ve.Errors = append(ve.Errors, FieldError{Field: field, Message: message, Value: value})
	return ve
}

func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError returns nil when nothing was rejected
func (ve *ValidationErrors) ToAppError() *AppError {
	if !ve.HasErrors() {
		return nil
	}
	return NewValidationError(ve.Error()).WithDetail("validation_errors", ve.Errors)
}

// HTTPStatus maps err to a response status, defaulting to 500
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

func IsConnection(err error) bool {
	return isType(err, ErrorTypeConnection) || errors.Is(err, ErrStoreUnreachable)
}

func IsFetch(err error) bool {
	return isType(err, ErrorTypeFetch)
}

func IsParse(err error) bool {
	return isType(err, ErrorTypeParse) || errors.Is(err, ErrUnparseableDate)
}

func IsStoreWrite(err error) bool {
	return isType(err, ErrorTypeStoreWrite)
}

func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}
