package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Current string `json:"current,omitempty"`
}

// respondWithError maps a service error to its HTTP status:
// validation 400, lifecycle state 409, not found 404, anything else 500.
func respondWithError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var validationErr *apperrors.ValidationError
	var stateErr *apperrors.StateError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Validation error", slog.String("code", string(validationErr.Code)), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Code: string(validationErr.Code), Field: validationErr.Field})
	case errors.As(err, &stateErr):
		logger.Warn("State conflict", slog.String("code", string(stateErr.Code)), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, ErrorResponse{Error: stateErr.Message, Code: string(stateErr.Code), Current: stateErr.Current})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Debug("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NotFound"})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Invalid request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.As(err, &appErr) && appErr.Code == http.StatusBadRequest:
		logger.Warn("Invalid request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: appErr.Message})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}

// badRequest rejects malformed input before it reaches a service.
func badRequest(c *gin.Context, msg string, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if err != nil {
		logger.Warn(msg, slog.String("error", err.Error()))
		msg = msg + ": " + err.Error()
	} else {
		logger.Warn(msg)
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// requireUserID returns the acting user placed in the context by AuthMiddleware.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}

// parseDate parses a YYYY-MM-DD query value, falling back to def when empty.
func parseDate(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	return time.Parse(dto.DateLayout, value)
}

// today returns the current date at midnight UTC.
func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseYear reads the :year path parameter.
func parseYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1 || year > 9999 {
		badRequest(c, "Invalid fiscal year", err)
		return 0, false
	}
	return year, true
}
