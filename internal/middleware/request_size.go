package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nexus-hvac-client/pkg/utils"
)

const DefaultMaxRequestSize = 64 << 10

// RequestSizeLimitMiddleware caps request bodies at maxSize bytes.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
