// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform: every reply, success or
// failure, is the same envelope.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const contentType = "application/json; charset=utf-8"

// Envelope is the canonical body returned by the API.
type Envelope struct {
	Success     bool                 `json:"success"`
	Message     string               `json:"message"`
	Data        any                  `json:"data,omitempty"`
	Error       string               `json:"error,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and envelope.
// Unexpected errors never leak their text; the caller logs the original.
func MapError(err error) (int, Envelope) {
	if err == nil {
		return http.StatusOK, Envelope{Success: true, Message: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, Envelope{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}

	var ce *service.ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict, Envelope{Error: ce.Code, Message: ce.Message}
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, Envelope{Error: "unauthorized", Message: "authentication required"}
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, Envelope{Error: "forbidden", Message: "you are not allowed to do this"}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, Envelope{Error: "not_found", Message: "resource not found"}
	case errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, Envelope{Error: "already_exists", Message: "resource already exists"}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, Envelope{Error: "conflict", Message: "request conflicts with current state"}
	case errors.Is(err, service.ErrDeliveryFailed):
		return http.StatusBadGateway, Envelope{Error: "delivery_failed", Message: "email provider rejected every message"}
	default:
		return http.StatusInternalServerError, Envelope{Error: "internal_error", Message: "something went wrong"}
	}
}

// WriteError writes an error envelope and aborts the context.
// The error is attached to the context so the access log can report it.
func WriteError(c *gin.Context, err error) {
	status, env := MapError(err)
	_ = c.Error(err)
	write(c, status, env)
	c.Abort()
}

// WriteData writes a successful envelope around data.
func WriteData(c *gin.Context, status int, message string, data any) {
	write(c, status, Envelope{Success: true, Message: message, Data: data})
}

func write(c *gin.Context, status int, env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		c.Data(http.StatusInternalServerError, contentType, []byte(`{"success":false,"message":"something went wrong","error":"internal_error"}`))
		return
	}
	c.Data(status, contentType, b)
}
