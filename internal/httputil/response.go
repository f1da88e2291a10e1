// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/NotSilaev/MrStone/internal/errors"
)

// ResponseData is the response envelope shared with the store backend and the chat-bot.
type ResponseData struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// ErrorResponse wraps one or more failures in the "errors" list.
type ErrorResponse struct {
	Errors []ResponseData `json:"errors"`
}

// MakeResponseData builds a response envelope.
func MakeResponseData(status int, message string, details any) ResponseData {
	return ResponseData{
		Status:  status,
		Message: message,
		Details: details,
	}
}

// RespondGin writes a response envelope with the given status using Gin.
func RespondGin(c *gin.Context, status int, message string, details any) {
	c.JSON(status, MakeResponseData(status, message, details))
}

// HandleErrorGin maps domain errors to HTTP status codes and returns a JSON response using Gin.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	var data ResponseData

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		data = MakeResponseData(http.StatusNotFound, "Not found", nil)

	case apperrors.Is(err, apperrors.ErrConflict):
		data = MakeResponseData(http.StatusConflict, "Conflict", nil)

	case apperrors.Is(err, apperrors.ErrInvalidInput):
		data = MakeResponseData(http.StatusUnprocessableEntity, "Validation error", err.Error())

	case apperrors.Is(err, apperrors.ErrUnauthorized):
		data = MakeResponseData(http.StatusUnauthorized, "Authentication is required", nil)

	case apperrors.Is(err, apperrors.ErrForbidden):
		data = MakeResponseData(http.StatusForbidden, "Invalid auth token", nil)

	case apperrors.Is(err, apperrors.ErrTooManyRequests):
		data = MakeResponseData(http.StatusTooManyRequests, "Too many requests", nil)

	default:
		// Internal details stay in the logs.
		data = MakeResponseData(http.StatusInternalServerError, "Unexpected error", nil)
	}

	if logger != nil {
		logger.Error("request failed",
			slog.Int("status_code", data.Status),
			slog.String("message", data.Message),
			slog.Any("error", err),
		)
	}

	c.JSON(data.Status, ErrorResponse{Errors: []ResponseData{data}})
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters using Gin.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	data := MakeResponseData(http.StatusBadRequest, "Bad request", err.Error())
	c.JSON(http.StatusBadRequest, ErrorResponse{Errors: []ResponseData{data}})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors using Gin.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	data := MakeResponseData(http.StatusUnprocessableEntity, "Validation error", err.Error())
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Errors: []ResponseData{data}})
}
