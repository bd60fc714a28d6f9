package utils

import "github.com/gin-gonic/gin"

type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse writes the error envelope the backend uses for every
// non-2xx reply.
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Success: false, Message: message})
}
