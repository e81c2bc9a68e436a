package archive

import (
	"log/slog"

	"github.com/meigma/dbpack/archive/internal/write"
)

// SkipCompressionFunc returns true when an entry should be stored
// uncompressed. It is called once per buffered entry and should be
// inexpensive.
type SkipCompressionFunc = write.SkipCompressionFunc

// DefaultSkipCompression returns a SkipCompressionFunc that skips small
// payloads and types whose source formats are already compressed.
var DefaultSkipCompression = write.DefaultSkipCompression

// writerConfig holds configuration for a Writer.
type writerConfig struct {
	compression     Compression
	skipCompression []SkipCompressionFunc
	logger          *slog.Logger
}

// WriterOption configures a Writer.
type WriterOption func(*writerConfig)

// WithCompression sets the algorithm used for entries written with
// WriteFile and WriteFunc. Streamed entries are always stored raw.
func WithCompression(c Compression) WriterOption {
	return func(cfg *writerConfig) {
		cfg.compression = c
	}
}

// WithSkipCompression adds predicates that decide to store an entry
// uncompressed. If any predicate returns true, compression is skipped.
func WithSkipCompression(fns ...SkipCompressionFunc) WriterOption {
	return func(cfg *writerConfig) {
		cfg.skipCompression = append(cfg.skipCompression, fns...)
	}
}

// WithLogger sets the logger for writer diagnostics.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) WriterOption {
	return func(cfg *writerConfig) {
		cfg.logger = logger
	}
}
