package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
	"github.com/ccotek/cocoti-pool-flow/internal/flow"
)

// SuccessResponse success envelope
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse error envelope
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FlowError maps a flow/backend error to its HTTP status and responds.
// Core API errors keep their upstream status so the web client can tell
// a validation rejection from an outage.
func FlowError(c *gin.Context, err error) {
	var resend *flow.ResendTooSoonError
	var status *backend.StatusError
	var transport *backend.TransportError

	switch {
	case errors.Is(err, flow.ErrSessionNotFound):
		ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, flow.ErrInFlight),
		errors.Is(err, flow.ErrWrongStep),
		errors.Is(err, flow.ErrTerminalStep):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, flow.ErrAuthExpired):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.As(err, &resend):
		ErrorResponse(c, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &status):
		ErrorResponse(c, status.StatusCode, status.Message)
	case errors.As(err, &transport):
		ErrorResponse(c, http.StatusBadGateway, "service temporarily unavailable, please retry")
	default:
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	}
}
