package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "wavegate/internal/api/errors"
	"wavegate/internal/gateway/middleware"
)

// Proxy forwards API requests to the transcription upstream, preserving
// method, headers, and body.
type Proxy struct {
	upstreamURL string
	httpClient  *http.Client
	metrics     *Metrics
}

// NewProxy creates a proxy targeting upstreamURL. The timeout bounds the
// whole upstream exchange; transcription of large audio is slow, so callers
// pass a generous value.
func NewProxy(upstreamURL string, timeout time.Duration, metrics *Metrics) *Proxy {
	return &Proxy{
		upstreamURL: strings.TrimSuffix(upstreamURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
	}
}

// Forward relays the incoming request to the upstream at the same path and
// copies the upstream response back verbatim, minus hop-by-hop headers.
func (p *Proxy) Forward(c *gin.Context) {
	targetURL := p.upstreamURL + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		targetURL += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, c.Request.Body)
	if err != nil {
		middleware.HandleError(c, apierrors.NewInternalError("failed to create proxy request"))
		return
	}
	req.ContentLength = c.Request.ContentLength

	for key, values := range c.Request.Header {
		if isHopByHopHeader(key) {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	req.Host = c.Request.Host
	if clientIP := c.ClientIP(); clientIP != "" {
		req.Header.Set("X-Real-IP", clientIP)
		req.Header.Set("X-Forwarded-For", clientIP)
	}
	req.Header.Set("X-Forwarded-Proto", forwardedProto(c.Request))

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.handleForwardError(c, err)
		return
	}
	defer resp.Body.Close()

	if p.metrics != nil {
		p.metrics.ObserveProxied(c.Request.Method, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())
	}

	for key, values := range resp.Header {
		if isHopByHopHeader(key) {
			continue
		}
		for _, value := range values {
			c.Header(key, value)
		}
	}

	c.DataFromReader(resp.StatusCode, resp.ContentLength, resp.Header.Get("Content-Type"), resp.Body, nil)
}

func (p *Proxy) handleForwardError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		if p.metrics != nil {
			p.metrics.ObserveRejectedBody()
		}
		middleware.HandleError(c, apierrors.NewPayloadTooLargeError("request body exceeds upload limit"))
		return
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		if p.metrics != nil {
			p.metrics.ObserveUpstreamError("timeout")
		}
		middleware.HandleError(c, apierrors.NewGatewayTimeoutError("request to backend timed out"))
		return
	}

	if p.metrics != nil {
		p.metrics.ObserveUpstreamError("unreachable")
	}
	middleware.HandleError(c, apierrors.NewBadGatewayError(fmt.Sprintf("backend service unavailable: %v", err)))
}

func forwardedProto(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// isHopByHopHeader checks if a header is a hop-by-hop header that shouldn't be forwarded
func isHopByHopHeader(header string) bool {
	hopByHopHeaders := []string{
		"Connection",
		"Keep-Alive",
		"Proxy-Authenticate",
		"Proxy-Authorization",
		"Te",
		"Trailers",
		"Transfer-Encoding",
		"Upgrade",
	}

	for _, h := range hopByHopHeaders {
		if strings.EqualFold(h, header) {
			return true
		}
	}
	return false
}
