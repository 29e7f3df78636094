package middleware

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"wavegate/internal/api/errors"
)

// ErrorHandler converts panics anywhere in the chain into APIError JSON, so
// every failure leaves the gateway in the same envelope the proxy's 502/504
// mapping uses. It is the only recovery layer in the chain.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		requestID := c.GetString("request_id")

		apiErr, ok := recovered.(*errors.APIError)
		if !ok {
			logger.Error("panic recovered",
				"recovered", fmt.Sprint(recovered),
				"request_id", requestID,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			apiErr = errors.NewInternalError("Internal server error")
		}
		apiErr.RequestID = requestID

		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError answers with the given APIError and aborts the chain. Errors of
// any other type are re-raised for ErrorHandler to translate.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if apiErr, ok := err.(*errors.APIError); ok {
		apiErr.RequestID = c.GetString("request_id")
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
		return
	}

	panic(err)
}
