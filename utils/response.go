package utils

import "github.com/gin-gonic/gin"

// Error kinds let the dashboard tell failures apart without matching message text.
const (
	KindValidation        = "VALIDATION_ERROR"
	KindNotFound          = "NOT_FOUND"
	KindInvalidTransition = "INVALID_TRANSITION"
	KindConflict          = "CONFLICT"
	KindUnauthorized      = "UNAUTHORIZED"
	KindRateLimited       = "RATE_LIMITED"
	KindInternal          = "INTERNAL"
)

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Envelope{Success: true, Data: data})
}

func JSONError(c *gin.Context, code int, kind, message string) {
	c.JSON(code, Envelope{Success: false, Error: &ErrorBody{Kind: kind, Message: message}})
}

func JSONErrorDetails(c *gin.Context, code int, kind, message, details string) {
	c.JSON(code, Envelope{Success: false, Error: &ErrorBody{Kind: kind, Message: message, Details: details}})
}

func AbortJSONError(c *gin.Context, code int, kind, message string) {
	c.AbortWithStatusJSON(code, Envelope{Success: false, Error: &ErrorBody{Kind: kind, Message: message}})
}
