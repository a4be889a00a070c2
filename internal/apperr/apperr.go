// Package apperr defines the domain error type returned by services and
// translated by HTTP handlers into {error_code, message, details} bodies.
package apperr

import "net/http"

// Error codes, grouped by subsystem.
const (
	CodeInvalidCredentials      = "AUTH_1001"
	CodeEmailAlreadyExists      = "AUTH_1002"
	CodeAccountInactive         = "AUTH_1003"
	CodeAccountBlocked          = "AUTH_1004"
	CodeInvalidToken            = "AUTH_1005"
	CodeInsufficientPermissions = "AUTH_1007"

	CodeUserNotFound    = "USER_2001"
	CodeProfileNotFound = "USER_2002"

	CodeConversationNotFound  = "CONV_3001"
	CodeConversationNotActive = "CONV_3002"

	CodeDiaryNotFound            = "DIARY_4001"
	CodeConversationNoMessages   = "DIARY_4002"
	CodeInsufficientConversation = "DIARY_4006"

	CodeAIServiceTimeout     = "AI_5001"
	CodeAIServiceError       = "AI_5002"
	CodeAIServiceUnavailable = "AI_5003"
	CodeAIPriorityNotFound   = "AI_5004"

	CodeInvalidRequest = "VAL_9001"
)

// Error is a domain error carrying an HTTP status, a machine-readable code
// and optional details for the client.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// New builds an Error with an explicit HTTP status.
func New(status int, code, message string, details map[string]any) *Error {
	return &Error{Status: status, Code: code, Message: message, Details: details}
}

// NotFound builds a 404 Error.
func NotFound(code, message string, details map[string]any) *Error {
	return New(http.StatusNotFound, code, message, details)
}

// BadRequest builds a 400 Error.
func BadRequest(code, message string, details map[string]any) *Error {
	return New(http.StatusBadRequest, code, message, details)
}

// Unauthorized builds a 401 Error.
func Unauthorized(code, message string) *Error {
	return New(http.StatusUnauthorized, code, message, nil)
}

// Forbidden builds a 403 Error.
func Forbidden(code, message string) *Error {
	return New(http.StatusForbidden, code, message, nil)
}

// Service builds a server-side Error; status should be 500, 503 or 504.
func Service(status int, code, message string, details map[string]any) *Error {
	return New(status, code, message, details)
}
