package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the wire shape of every error body this API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ErrorHandler recovers panics into a 500 so one bad request never takes
// the process down.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().Error("recovered from panic",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Error:   "Internal error",
					Message: "something went wrong, try again later",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError writes the standard error body and logs it at warn. 5xx bodies
// carry the label only so internals never leak to clients.
func JSONError(c *gin.Context, status int, label, message string) {
	GetLogger().Warn(label,
		zap.Int("status", status),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path))

	resp := ErrorResponse{Error: label, Message: message}
	if status >= http.StatusInternalServerError {
		resp.Message = ""
	}
	c.JSON(status, resp)
}
