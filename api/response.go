package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/tripbooking/internal/apperr"
)

// Every endpoint answers with this envelope; service errors are translated
// here and never leak raw.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, response{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), response{Success: false, Message: apperr.MessageOf(err)})
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindComputation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusServiceUnavailable
	}
}
