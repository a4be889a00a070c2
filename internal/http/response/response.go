// Package response holds the unified JSON envelopes returned by HTTP
// handlers: plain success/error responses, validation messages and the
// structured domain-error body.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/overmind-app/overmind/internal/apperr"
	"github.com/overmind-app/overmind/internal/lib/sl"
)

// Response is the standard server envelope. Status is "OK" or "Error".
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// DomainError is the structured error body for domain failures: a stable
// machine-readable code plus a human message and optional details.
type DomainError struct {
	Status    string         `json:"status"`
	ErrorCode string         `json:"error_code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

const (
	// StatusOK marks a successful response.
	StatusOK = "OK"
	// StatusError marks a failed response.
	StatusError = "Error"
)

// StatusOKWithData returns a successful Response carrying data.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error returns an error Response with the given message.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError flattens validator violations into one error Response.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has an unsupported value", err.Field()))
		case "datetime=2006-01-02":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a date in format 2006-01-02", err.Field()))
		case "len":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has a wrong length", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// RenderError writes err as JSON. Domain errors keep their HTTP status,
// code and details; anything else becomes a generic 500.
func RenderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			log.Error("service error", sl.Err(err))
		} else {
			log.Info("domain error", slog.String("code", appErr.Code))
		}
		render.Status(r, appErr.Status)
		render.JSON(w, r, DomainError{
			Status:    StatusError,
			ErrorCode: appErr.Code,
			Message:   appErr.Message,
			Details:   appErr.Details,
		})
		return
	}

	log.Error("unhandled error", sl.Err(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, Error("internal server error"))
}
