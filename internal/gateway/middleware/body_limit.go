package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"wavegate/internal/api/errors"
)

// BodyLimit caps request bodies at maxBytes. Reads past the cap fail inside
// the proxy, which reports the rejection through onReject and answers 413.
// Requests that declare an oversized Content-Length are refused up front.
func BodyLimit(maxBytes int64, onReject func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			if onReject != nil {
				onReject()
			}
			HandleError(c, errors.NewPayloadTooLargeError("request body exceeds upload limit"))
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
