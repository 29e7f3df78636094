package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the CLI logger's verbosity and encoding.
type Options struct {
	Verbose bool
	JSON    bool
}

// New builds the upload client's logger. Output goes to stderr in both
// encodings so transcripts printed on stdout stay clean and pipeable.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeCaller = nil
	if opts.JSON {
		cfg = zap.NewProductionConfig()
		// A transcription run logs a handful of lines; never sample them away.
		cfg.Sampling = nil
	}

	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !opts.Verbose

	return cfg.Build()
}
