package dbpack

import (
	"log/slog"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/encoder"
	"github.com/meigma/dbpack/hashid"
	"github.com/meigma/dbpack/signature"
)

// packConfig holds configuration for a packing run.
type packConfig struct {
	registry     *hashid.Registry
	encoders     []encoder.Encoder
	encodersSet  bool
	signature    signature.Source
	debug        bool
	debugProject string
	maxFileSize  uint64
	writerOpts   []archive.WriterOption
	logger       *slog.Logger
	progress     ProgressFunc
	beforePack   []func(*Task)
	afterPack    []func(*Task)
}

// Option configures a packing run.
type Option func(*packConfig)

// WithRegistry sets the registry used to derive ids and record names.
// By default each Task uses its own registry.
func WithRegistry(r *hashid.Registry) Option {
	return func(cfg *packConfig) {
		cfg.registry = r
	}
}

// WithEncoders replaces the default encoders. Encoders are tried in the
// given order and the first to claim an item wins. Passing no encoders
// disables encoding so every item is copied verbatim.
func WithEncoders(encs ...encoder.Encoder) Option {
	return func(cfg *packConfig) {
		cfg.encoders = encs
		cfg.encodersSet = true
	}
}

// WithSignature embeds the built-in signature of the given kind.
// signature.None disables the signature.
func WithSignature(kind signature.Kind) Option {
	return func(cfg *packConfig) {
		cfg.signature = kind.Source()
	}
}

// WithSignatureSource embeds a custom signature payload.
func WithSignatureSource(src signature.Source) Option {
	return func(cfg *packConfig) {
		cfg.signature = src
	}
}

// WithDebugInfo records debug information for the verbatim files and
// writes it into the container under DebugInfoKey.
func WithDebugInfo(project string) Option {
	return func(cfg *packConfig) {
		cfg.debug = true
		cfg.debugProject = project
	}
}

// WithMaxFileSize limits the size of verbatim items.
// Set limit to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(cfg *packConfig) {
		cfg.maxFileSize = limit
	}
}

// WithWriterOptions passes options to the container writer.
func WithWriterOptions(opts ...archive.WriterOption) Option {
	return func(cfg *packConfig) {
		cfg.writerOpts = append(cfg.writerOpts, opts...)
	}
}

// WithLogger sets the logger for packing. If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *packConfig) {
		cfg.logger = logger
	}
}

// WithProgress sets a callback for progress events.
func WithProgress(fn ProgressFunc) Option {
	return func(cfg *packConfig) {
		cfg.progress = fn
	}
}

// WithBeforePack adds a hook called once the container is open, before the
// first group folder is packed.
func WithBeforePack(fn func(*Task)) Option {
	return func(cfg *packConfig) {
		cfg.beforePack = append(cfg.beforePack, fn)
	}
}

// WithAfterPack adds a hook called after the run completes and the
// container is finalized, whether the run succeeded or not. Task.Err
// reports the outcome.
func WithAfterPack(fn func(*Task)) Option {
	return func(cfg *packConfig) {
		cfg.afterPack = append(cfg.afterPack, fn)
	}
}
