package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"wavegate/internal/audio"
	"wavegate/internal/config"
)

// State is the widget's explicit lifecycle state. Transitions are guarded;
// every operation checks the state it is valid in and fails otherwise.
type State int

const (
	// StateConnecting is the initial disabled state before the
	// connectivity check has run.
	StateConnecting State = iota
	// StateUnavailable means the connectivity check failed. Terminal for
	// the widget's lifetime; uploads stay disabled.
	StateUnavailable
	// StateIdle means no valid file is selected and upload is disallowed.
	StateIdle
	// StateReady means a valid file is selected and upload is allowed.
	StateReady
	// StateUploading means a request is in flight; selection and upload
	// are disallowed until it completes.
	StateUploading
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateUnavailable:
		return "unavailable"
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateUploading:
		return "uploading"
	default:
		return "unknown"
	}
}

// Status messages surfaced to the user.
const (
	StatusConnecting      = "Connecting to transcription service..."
	StatusReady           = "Ready. Select a WAV file to transcribe."
	StatusConnectionError = "Cannot connect to transcription service. Please try again later."
	StatusComplete        = "Transcription complete"
	StatusTypeError       = "Please select a WAV audio file"
	StatusUnexpected      = "An unexpected error occurred. Please try again."
)

var (
	ErrInvalidState   = errors.New("operation not allowed in current state")
	ErrInvalidType    = errors.New("file is not a WAV audio file")
	ErrFileTooLarge   = errors.New("file exceeds the maximum upload size")
	ErrNoSelection    = errors.New("no file selected")
	ErrUploadInFlight = errors.New("an upload is already in flight")
)

// Selection is the currently chosen file.
type Selection struct {
	Name string
	Path string
	Size int64
}

// Widget owns the upload lifecycle: connectivity check, file selection with
// validation, the upload itself, and the session results log. It is
// explicitly constructed and holds no ambient state.
type Widget struct {
	client       *Client
	progress     *ProgressManager
	logger       *zap.Logger
	maxFileBytes int64
	now          func() time.Time

	mu        sync.Mutex
	state     State
	status    string
	selection *Selection
	results   ResultsLog
}

// WidgetOption customizes a Widget.
type WidgetOption func(*Widget)

// WithProgress draws upload progress through the given manager.
func WithProgress(pm *ProgressManager) WidgetOption {
	return func(w *Widget) { w.progress = pm }
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) WidgetOption {
	return func(w *Widget) { w.logger = logger }
}

// WithMaxFileBytes overrides the upload size limit.
func WithMaxFileBytes(n int64) WidgetOption {
	return func(w *Widget) { w.maxFileBytes = n }
}

// withClock overrides the timestamp source in tests.
func withClock(now func() time.Time) WidgetOption {
	return func(w *Widget) { w.now = now }
}

// NewWidget creates a widget in the connecting state. Call Connect before
// selecting files.
func NewWidget(client *Client, opts ...WidgetOption) *Widget {
	w := &Widget{
		client:       client,
		logger:       zap.NewNop(),
		maxFileBytes: config.DefaultMaxBodyBytes,
		now:          time.Now,
		state:        StateConnecting,
		status:       StatusConnecting,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Connect runs the one-shot connectivity check. On success the widget moves
// to idle; on failure it becomes unavailable for its remaining lifetime and
// is never retried.
func (w *Widget) Connect(ctx context.Context) error {
	w.mu.Lock()
	if w.state != StateConnecting {
		w.mu.Unlock()
		return fmt.Errorf("%w: connect from %s", ErrInvalidState, w.state)
	}
	w.mu.Unlock()

	err := w.client.HealthCheck(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.state = StateUnavailable
		w.status = StatusConnectionError
		w.logger.Warn("connectivity check failed", zap.Error(err))
		return err
	}

	w.state = StateIdle
	w.status = StatusReady
	return nil
}

// Select validates the file at path and, if acceptable, makes it the current
// selection. Invalid selections leave the widget idle with upload disallowed
// and never touch the network.
func (w *Widget) Select(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateIdle, StateReady:
	default:
		return fmt.Errorf("%w: select from %s", ErrInvalidState, w.state)
	}

	w.selection = nil
	w.state = StateIdle

	if !strings.EqualFold(filepath.Ext(path), ".wav") || !audio.IsWAV(path) {
		w.status = StatusTypeError
		return fmt.Errorf("%w: %s", ErrInvalidType, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		w.status = StatusTypeError
		return fmt.Errorf("stat selected file: %w", err)
	}

	if info.Size() > w.maxFileBytes {
		w.status = fmt.Sprintf("File too large. Maximum size is %s.", HumanSize(w.maxFileBytes))
		return fmt.Errorf("%w: %s is %s", ErrFileTooLarge, filepath.Base(path), HumanSize(info.Size()))
	}

	w.selection = &Selection{
		Name: filepath.Base(path),
		Path: path,
		Size: info.Size(),
	}
	w.state = StateReady
	w.status = fmt.Sprintf("%s (%.2f MB)", w.selection.Name, float64(info.Size())/(1024*1024))
	return nil
}

// Upload submits the current selection. Whatever the outcome, the widget
// returns to idle with the selection cleared, so the caller must reselect
// before retrying. The returned entry is also prepended to the results log.
func (w *Widget) Upload(ctx context.Context) (ResultEntry, error) {
	w.mu.Lock()
	switch w.state {
	case StateReady:
	case StateUploading:
		w.mu.Unlock()
		return ResultEntry{}, ErrUploadInFlight
	default:
		w.mu.Unlock()
		return ResultEntry{}, ErrNoSelection
	}

	sel := *w.selection
	w.state = StateUploading
	w.status = "Uploading... 0%"
	w.mu.Unlock()

	onProgress := w.progressFunc(sel)

	result, err := w.client.Transcribe(ctx, sel.Path, onProgress)

	w.mu.Lock()
	defer w.mu.Unlock()

	entry := ResultEntry{
		Timestamp: w.now(),
		FileName:  sel.Name,
	}

	if err != nil {
		entry.Err = err
		w.status = "Error: " + err.Error()
		w.logger.Warn("upload failed", zap.String("file", sel.Name), zap.Error(err))
	} else {
		entry.Text = result.Text
		entry.ProcessingTime = result.ProcessingTime
		w.status = StatusComplete
		w.logger.Info("upload complete",
			zap.String("file", sel.Name),
			zap.Float64("processing_time", result.ProcessingTime),
		)
	}

	w.results.Prepend(entry)

	// Completion always re-enables selection and clears the file.
	w.state = StateIdle
	w.selection = nil

	return entry, err
}

func (w *Widget) progressFunc(sel Selection) ProgressFunc {
	// The bar is created on the first callback, once the multipart framing
	// overhead is known and the real body total is available.
	var bar *ProgressBar

	return func(sent, total int64) {
		if w.progress != nil && bar == nil {
			bar = w.progress.CreateByteBar(total, sel.Name)
		}
		if bar != nil {
			bar.SetCurrent(sent)
		}

		pct := 0
		if total > 0 {
			pct = int(float64(sent) / float64(total) * 100)
		}

		w.mu.Lock()
		if w.state == StateUploading {
			w.status = fmt.Sprintf("Uploading... %d%%", pct)
		}
		w.mu.Unlock()
	}
}

// State returns the current lifecycle state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Status returns the visible status line.
func (w *Widget) Status() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// UploadAllowed reports whether an upload may start right now.
func (w *Widget) UploadAllowed() bool {
	return w.State() == StateReady
}

// Selection returns the current selection, or nil.
func (w *Widget) Selection() *Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selection == nil {
		return nil
	}
	sel := *w.selection
	return &sel
}

// Results returns the session results log, newest first.
func (w *Widget) Results() []ResultEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.results.Entries()
}
