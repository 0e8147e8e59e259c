package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is the body of every non-2xx response
type Error struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Message is the body of confirmations such as deletes
type Message struct {
	Message string `json:"message"`
}

// JSON writes data as-is; list and record payloads are not wrapped in an envelope
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// OK writes 200 with a confirmation message
func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Message{Message: message})
}

// ErrorResponse writes an error body and aborts the chain
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.AbortWithStatusJSON(statusCode, Error{
		Message: message,
		Code:    code,
	})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", message)
}

func TooManyRequests(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", message)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}
