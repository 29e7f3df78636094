package transcribe

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"wavegate/internal/audio"
	"wavegate/internal/config"
	"wavegate/internal/logging"
	"wavegate/internal/upload"
)

var (
	apiURL       string
	chunkSeconds int
	noProgress   bool
	jsonLogs     bool
)

func init() {
	Cmd.Flags().StringVarP(&apiURL, "api-url", "u", "",
		"base URL of the transcription API (default from WAVEGATE_API_URL)")
	Cmd.Flags().IntVar(&chunkSeconds, "chunk-seconds", 0,
		"split the file into chunks of this many seconds and transcribe them in order (0 uploads the whole file)")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the upload progress bar")
	Cmd.Flags().BoolVar(&jsonLogs, "json", false, "enable JSON logging")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <file.wav>",
	Short: "Upload a WAV file and print the transcription",
	Long: `Upload a WAV file to the transcription service and print the result.

The file must be WAV audio within the upload size limit; invalid selections
are rejected before any network call. A failed upload leaves no partial
state: reselect the file and try again.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger, logErr := logging.New(logging.Options{Verbose: verbose, JSON: jsonLogs})
		if logErr != nil {
			return fmt.Errorf("initialize logger: %w", logErr)
		}

		// Anything that escapes the normal error paths is surfaced as a
		// generic message instead of a stack trace.
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("unexpected failure", zap.Any("panic", recovered))
				err = fmt.Errorf("%s", upload.StatusUnexpected)
			}
		}()

		cfg := config.GetClientConfig()
		if apiURL != "" {
			cfg.BaseURL = apiURL
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		progress := upload.NewProgressManager(upload.ProgressConfig{
			Enabled: !noProgress && upload.ShouldShowProgress(false),
		})
		defer progress.Wait()

		widget := upload.NewWidget(upload.NewClient(cfg.BaseURL),
			upload.WithLogger(logger),
			upload.WithProgress(progress),
			upload.WithMaxFileBytes(cfg.MaxFileBytes),
		)

		if err := widget.Connect(cmd.Context()); err != nil {
			return fmt.Errorf("%s: %w", upload.StatusConnectionError, err)
		}

		if chunkSeconds > 0 {
			return runChunked(cmd.Context(), widget, args[0], time.Duration(chunkSeconds)*time.Second, logger, cmd.OutOrStdout())
		}

		return runSingle(cmd.Context(), widget, args[0], cmd.OutOrStdout())
	},
}

func runSingle(ctx context.Context, widget *upload.Widget, path string, out io.Writer) error {
	if err := widget.Select(path); err != nil {
		return fmt.Errorf("%s: %w", widget.Status(), err)
	}

	entry, err := widget.Upload(ctx)
	if err != nil {
		return fmt.Errorf("%s", widget.Status())
	}

	fmt.Fprintln(out, entry.Text)
	fmt.Fprintf(os.Stderr, "%s (%s in %.1fs)\n", widget.Status(), entry.FileName, entry.ProcessingTime)
	return nil
}

// runChunked splits the file into fixed-length pieces and uploads them in
// playback order, printing each piece with its time offset as soon as its
// upload finishes. Failed chunks are recorded and skipped; they are not
// retried.
func runChunked(ctx context.Context, widget *upload.Widget, path string, chunkLen time.Duration, logger *zap.Logger, out io.Writer) error {
	tempDir, err := os.MkdirTemp("", "wavegate-chunks-")
	if err != nil {
		return fmt.Errorf("create chunk directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	chunks, err := audio.SplitWAV(path, tempDir, chunkLen)
	if err != nil {
		return err
	}

	logger.Info("transcribing in chunks",
		zap.String("file", path),
		zap.Int("chunks", len(chunks)),
		zap.Duration("chunk_length", chunkLen),
	)

	var failed int
	for _, chunk := range chunks {
		if err := widget.Select(chunk.Path); err != nil {
			return fmt.Errorf("select %s: %w", chunk.ID, err)
		}

		entry, err := widget.Upload(ctx)
		if err != nil {
			failed++
			logger.Warn("chunk failed", zap.String("chunk", chunk.ID), zap.Error(err))
			continue
		}

		fmt.Fprintf(out, "[%.1fs]: %s\n", chunk.Start.Seconds(), strings.TrimSpace(entry.Text))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d chunks failed", failed, len(chunks))
	}

	fmt.Fprintf(os.Stderr, "%s (%d chunks)\n", upload.StatusComplete, len(chunks))
	return nil
}
