// Package handlers provides the HTTP handler implementations for the public
// API. This file defines the response envelopes shared by all endpoints.
//
// Success responses use {"status":"success","data":{...}} (the shape the
// category picker web app already consumes); failures use a structured
// error envelope with a stable machine-readable code and the request
// correlation id.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ofertasgt/go-deals-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// RequestID correlates server logs with client-side errors.
	RequestID string `json:"request_id,omitempty"`
	// Code is a stable, machine-readable string (see errors.go).
	Code string `json:"code"`
	// Message is a human-readable description safe to display.
	Message string `json:"message"`
}

// ok writes a success envelope with the given payload.
func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

// fail aborts the request with a structured error, logging 5xx causes with
// request context.
func fail(c *gin.Context, status int, code, message string, err error) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().Err(err).Str("code", code).Msg(message)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Message:   message,
	})
}
