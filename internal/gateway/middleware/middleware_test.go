package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "wavegate/internal/api/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for key, values := range header {
		req.Header[key] = values
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	valid := uuid.New().String()

	tests := []struct {
		name     string
		incoming string
		kept     bool
	}{
		{"generated when absent", "", false},
		{"valid id honored", valid, true},
		{"garbage replaced", "not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RequestID())
			router.GET("/x", func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString("request_id"))
			})

			header := http.Header{}
			if tt.incoming != "" {
				header.Set("X-Request-ID", tt.incoming)
			}
			w := perform(router, http.MethodGet, "/x", header)

			id := w.Header().Get("X-Request-ID")
			_, err := uuid.Parse(id)
			assert.NoError(t, err, "response id must be a uuid")
			assert.Equal(t, id, w.Body.String(), "context and header must agree")

			if tt.kept {
				assert.Equal(t, tt.incoming, id)
			} else if tt.incoming != "" {
				assert.NotEqual(t, tt.incoming, id)
			}
		})
	}
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogging(logger))
	for _, path := range []string{"/health", "/metrics", "/api/v1/health"} {
		router.GET(path, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	perform(router, http.MethodGet, "/health", nil)
	perform(router, http.MethodGet, "/metrics", nil)
	assert.Empty(t, buf.String(), "probe paths are not logged")

	perform(router, http.MethodGet, "/api/v1/health", nil)
	line := buf.String()
	assert.Contains(t, line, "gateway request")
	assert.Contains(t, line, "method=GET")
	assert.Contains(t, line, "path=/api/v1/health")
	assert.Contains(t, line, "status=200")
	assert.Contains(t, line, "request_id=")
}

func TestErrorHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(RequestID())
	router.Use(ErrorHandler(logger))
	router.GET("/gone", func(c *gin.Context) {
		HandleError(c, apierrors.NewBadGatewayError("backend gone"))
	})
	router.GET("/bug", func(c *gin.Context) {
		HandleError(c, errors.New("nil dereference"))
	})

	w := perform(router, http.MethodGet, "/gone", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "bad_gateway", body["kind"])
	assert.Equal(t, "backend gone", body["message"])
	assert.NotEmpty(t, body["request_id"])

	// Non-APIError values re-raised by HandleError are recovered and hidden
	// behind a generic internal error.
	w = perform(router, http.MethodGet, "/bug", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body = map[string]any{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal", body["kind"])
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, w.Body.String(), "nil dereference")
}
