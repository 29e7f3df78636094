package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

const (
	// HealthPath is probed once at startup to decide whether uploads are
	// possible at all.
	HealthPath = "/api/v1/health"

	// TranscribePath receives the multipart upload.
	TranscribePath = "/api/v1/audio/transcribe"

	// AudioFieldName is the multipart field carrying the WAV file.
	AudioFieldName = "audio"

	// AcceptedMediaType is the only media type the service transcribes.
	AcceptedMediaType = "audio/wav"
)

// TranscriptionResult is the backend's JSON response for one upload.
type TranscriptionResult struct {
	Success        bool    `json:"success"`
	Text           string  `json:"text,omitempty"`
	ProcessingTime float64 `json:"processing_time,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// ProgressFunc receives upload progress as bytes sent out of total.
type ProgressFunc func(sent, total int64)

// Client talks to the transcription API, usually through the gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL. The client sets no
// timeout of its own; the gateway bounds the upstream exchange.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// HealthCheck reports whether the service is reachable. Any 2xx counts.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+HealthPath, nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transcription service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("transcription service returned status %d", resp.StatusCode)
	}

	return nil
}

// Transcribe uploads the WAV at filePath as a multipart form and returns the
// parsed result. onProgress, if non-nil, is called as body bytes go out.
// Transport failures, non-2xx statuses, and {"success":false} bodies are all
// returned as errors.
func (c *Client) Transcribe(ctx context.Context, filePath string, onProgress ProgressFunc) (*TranscriptionResult, error) {
	body, contentType, err := buildMultipartBody(filePath)
	if err != nil {
		return nil, err
	}

	total := int64(body.Len())
	var reqBody io.Reader = bytes.NewReader(body.Bytes())
	if onProgress != nil {
		reqBody = &progressReader{r: reqBody, total: total, onProgress: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+TranscribePath, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcription response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var result TranscriptionResult
	if err := json.Unmarshal(responseData, &result); err != nil {
		return nil, fmt.Errorf("parse transcription response: %w", err)
	}

	if !result.Success {
		if result.Error == "" {
			result.Error = "transcription failed"
		}
		return nil, fmt.Errorf("transcription failed: %s", result.Error)
	}

	return &result, nil
}

// buildMultipartBody assembles the multipart form with the file under the
// audio field.
func buildMultipartBody(filePath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, AudioFieldName, filepath.Base(filePath)))
	header.Set("Content-Type", AcceptedMediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy file content: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// progressReader counts bytes as the HTTP transport drains the request body.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.onProgress(p.sent, p.total)
	}
	return n, err
}
