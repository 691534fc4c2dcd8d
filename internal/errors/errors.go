package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error codes carried by APIError. The workflow kinds are part of the
// engine contract and stay stable for API consumers.
const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUnprocessableEntity = "UNPROCESSABLE_ENTITY"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeUnknownAction       = "UNKNOWN_ACTION"
	CodeInternal            = "INTERNAL"
)

// APIError is an error with an HTTP status, a stable code and a message that
// is safe to show to the user.
type APIError struct {
	Status   int               `json:"-"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Internal error             `json:"-"`
}

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Internal
}

func New(status int, code, message string, err error) *APIError {
	return &APIError{
		Status:   status,
		Code:     code,
		Message:  message,
		Internal: err,
	}
}

func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, CodeBadRequest, message, err)
}

func Unauthorized(message string, err error) *APIError {
	return New(http.StatusUnauthorized, CodeUnauthorized, message, err)
}

func Forbidden(message string, err error) *APIError {
	return New(http.StatusForbidden, CodeForbidden, message, err)
}

func NotFound(message string, err error) *APIError {
	return New(http.StatusNotFound, CodeNotFound, message, err)
}

func Conflict(message string, err error) *APIError {
	return New(http.StatusConflict, CodeConflict, message, err)
}

func UnprocessableEntity(message string, err error) *APIError {
	return New(http.StatusUnprocessableEntity, CodeUnprocessableEntity, message, err)
}

// InvalidTransition reports an action that is not legal from the current state.
func InvalidTransition(action, state string) *APIError {
	return New(http.StatusConflict, CodeInvalidTransition,
		fmt.Sprintf("Action %s is not allowed when file is in state %s", action, state), nil)
}

func UnknownAction(action string) *APIError {
	return New(http.StatusBadRequest, CodeUnknownAction,
		fmt.Sprintf("Unknown workflow action %q", action), nil)
}

func Internal(err error) *APIError {
	return New(http.StatusInternalServerError, CodeInternal, "Internal server error", err)
}

// NewValidationError turns binding errors into a 422 with one message per field.
func NewValidationError(err error) *APIError {
	apiErr := UnprocessableEntity("Validation failed", err)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apiErr
	}

	apiErr.Fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			apiErr.Fields[field] = "is required"
		case "oneof":
			apiErr.Fields[field] = "must be one of: " + fe.Param()
		case "min":
			apiErr.Fields[field] = "must be at least " + fe.Param()
		case "max":
			apiErr.Fields[field] = "must be at most " + fe.Param()
		case "email":
			apiErr.Fields[field] = "must be a valid email"
		default:
			apiErr.Fields[field] = "is invalid"
		}
	}
	return apiErr
}

// CodeOf returns the APIError code of err, or "" when err is not an APIError.
func CodeOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
