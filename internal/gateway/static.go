package gateway

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaticHandler serves the front-end assets from a document root, falling
// back to the entry document so client-side routes resolve.
type StaticHandler struct {
	docRoot string
}

// NewStaticHandler creates a static file handler rooted at docRoot.
func NewStaticHandler(docRoot string) *StaticHandler {
	return &StaticHandler{docRoot: docRoot}
}

// Serve handles every path the API routes did not claim.
func (h *StaticHandler) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.AbortWithStatus(http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(filepath.Clean(c.Request.URL.Path), "/")
	if rel == "" || rel == "." {
		rel = "index.html"
	}

	fullPath := filepath.Join(h.docRoot, rel)

	// Clean above plus the join keeps traversal inside the root.
	if !strings.HasPrefix(fullPath, filepath.Clean(h.docRoot)) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	if info, err := os.Stat(fullPath); err != nil || info.IsDir() {
		// Unknown path: hand back the entry document for client-side routing.
		rel = "index.html"
		fullPath = filepath.Join(h.docRoot, rel)
		if _, err := os.Stat(fullPath); err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
	}

	c.Header("Content-Type", contentTypeFor(rel))
	if rel != "index.html" {
		c.Header("Cache-Control", "public, max-age=3600")
	}
	http.ServeFile(c.Writer, c.Request, fullPath)
}

// contentTypeFor returns the content type for a file path
func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	case ".ico":
		return "image/x-icon"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
