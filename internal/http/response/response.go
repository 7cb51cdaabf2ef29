// Package response holds the JSON envelope every endpoint answers with.
//
//	success: {"statusCode":200,"data":{...},"message":"...","success":true}
//	failure: {"statusCode":400,"data":null,"message":"...","success":false,"errors":[...]}
package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	Errors     any    `json:"errors,omitempty"`
}

// Result is a successful outcome.
type Result struct {
	Status  int
	Data    any
	Message string
}

func OK(data any, message string) *Result {
	return &Result{Status: http.StatusOK, Data: data, Message: message}
}

func Created(data any, message string) *Result {
	return &Result{Status: http.StatusCreated, Data: data, Message: message}
}

// Error is a failure whose Message is safe to show to clients. Err is the
// cause and is only ever logged.
type Error struct {
	Status  int
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

func UnsupportedMediaType(message string) *Error {
	return &Error{Status: http.StatusUnsupportedMediaType, Message: message}
}

func Internal(message string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: cause}
}

func Write(ctx *gin.Context, r *Result) {
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}

	ctx.JSON(status, Envelope{
		StatusCode: status,
		Data:       r.Data,
		Message:    r.Message,
		Success:    true,
	})
}

// WriteError renders err and logs the cause of server side failures. Errors
// that are not *Error never reach the client verbatim.
func WriteError(ctx *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal("something went wrong", err)
	}

	if apiErr.Status >= http.StatusInternalServerError {
		slog.Default().ErrorContext(ctx.Request.Context(), "request failed",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"status", apiErr.Status,
			"err", apiErr.Err,
		)
	}

	ctx.JSON(apiErr.Status, Envelope{
		StatusCode: apiErr.Status,
		Data:       nil,
		Message:    apiErr.Message,
		Success:    false,
		Errors:     apiErr.Details,
	})
}

// Abort is WriteError for middlewares: the rest of the chain is skipped.
func Abort(ctx *gin.Context, err error) {
	WriteError(ctx, err)
	ctx.Abort()
}
