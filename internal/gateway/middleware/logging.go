package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// RequestLogging emits one structured line per request the gateway serves or
// forwards. Probe traffic on /health and /metrics is skipped; liveness checks
// and scrapes would drown out the upload traffic.
func RequestLogging(logger *slog.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		if param.Path == "/health" || param.Path == "/metrics" {
			return ""
		}

		requestID, _ := param.Keys["request_id"].(string)

		logger.Info("gateway request",
			"request_id", requestID,
			"method", param.Method,
			"path", param.Path,
			"status", param.StatusCode,
			"latency_ms", param.Latency.Milliseconds(),
			"bytes", param.BodySize,
			"client_ip", param.ClientIP,
			"error", param.ErrorMessage,
		)

		return ""
	})
}
