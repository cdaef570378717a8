package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerXRequestID = "X-Request-ID"
	requestIDKey     = "request_id"
)

// RequestID attaches a unique request ID to each request, reusing the
// one provided by the caller when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerXRequestID)
		if rid == "" {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header(headerXRequestID, rid)
		c.Next()
	}
}
