// Package requestid assigns a request ID to each request, honoring an
// inbound X-Request-ID header when one is present.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	Header     = "X-Request-ID"
	ContextKey = "request_id"
)

func New() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ContextKey, id)
		c.Header(Header, id)
		c.Next()
	}
}
