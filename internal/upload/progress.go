package upload

import (
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ProgressConfig controls whether and where upload progress is drawn.
type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
}

// ProgressManager owns the mpb container for the session's progress bars.
type ProgressManager struct {
	container *mpb.Progress
	enabled   bool
}

// NewProgressManager creates a progress manager. A disabled manager hands
// out no-op bars.
func NewProgressManager(config ProgressConfig) *ProgressManager {
	if !config.Enabled {
		return &ProgressManager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	container := mpb.New(
		mpb.WithOutput(writer),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	return &ProgressManager{
		container: container,
		enabled:   true,
	}
}

// CreateByteBar adds a byte-denominated bar for one upload.
func (pm *ProgressManager) CreateByteBar(total int64, description string) *ProgressBar {
	if !pm.enabled || pm.container == nil {
		return &ProgressBar{enabled: false}
	}

	bar := pm.container.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(description+" ", decor.WC{W: len(description) + 1, C: decor.DindentRight}),
			decor.CountersKibiByte("% .2f / % .2f", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%d", decor.WCSyncSpace),
			decor.OnComplete(decor.AverageSpeed(decor.SizeB1024(0), "% .1f", decor.WCSyncSpace), " done"),
		),
		mpb.BarRemoveOnComplete(),
	)

	return &ProgressBar{
		bar:     bar,
		enabled: true,
	}
}

// Wait blocks until all bars have rendered their final state.
func (pm *ProgressManager) Wait() {
	if pm.enabled && pm.container != nil {
		pm.container.Wait()
	}
}

// Shutdown tears the container down without waiting for completion.
func (pm *ProgressManager) Shutdown() {
	if pm.enabled && pm.container != nil {
		pm.container.Shutdown()
	}
}

// ProgressBar wraps one mpb bar; disabled bars ignore every call.
type ProgressBar struct {
	bar     *mpb.Bar
	enabled bool
}

// SetCurrent moves the bar to n bytes sent.
func (pb *ProgressBar) SetCurrent(n int64) {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetCurrent(n)
	}
}

// Complete marks the bar finished regardless of its current count.
func (pb *ProgressBar) Complete() {
	if pb.enabled && pb.bar != nil {
		pb.bar.SetTotal(pb.bar.Current(), true)
	}
}

// IsTTY reports whether the writer is a character device.
func IsTTY(writer io.Writer) bool {
	if writer == nil {
		return false
	}

	if file, ok := writer.(*os.File); ok {
		stat, err := file.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ShouldShowProgress decides whether bars make sense for this session.
func ShouldShowProgress(forced bool) bool {
	if forced {
		return true
	}

	return IsTTY(os.Stderr) || IsTTY(os.Stdout)
}
