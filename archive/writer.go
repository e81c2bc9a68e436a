package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/meigma/dbpack/archive/internal/fb"
	"github.com/meigma/dbpack/archive/internal/write"
	"github.com/meigma/dbpack/internal/ioutil"
	"github.com/meigma/dbpack/internal/sizing"
)

const (
	// HeaderSize is the size of the fixed container header. The data region
	// starts immediately after it.
	HeaderSize = 32

	// FormatVersion is the container format version written by this package.
	FormatVersion = 1
)

var magic = [4]byte{'D', 'B', 'P', 'K'}

// Writer builds a container file.
//
// Writer is safe for concurrent use, but entries are laid out in the order
// calls acquire the writer, so callers that need a stable layout write from
// a single goroutine.
type Writer struct {
	mu       sync.Mutex
	cfg      writerConfig
	path     string
	f        *os.File
	hasher   *blake3.Hasher
	data     *ioutil.CountingWriter
	entries  []Entry
	enc      *zstd.Encoder
	closed   bool
	closeErr error
}

// Create creates the container at path, truncating any existing file.
// Missing parent directories are created.
//
// The returned Writer must be closed; Close finalizes the container.
func Create(path string, opts ...WriterOption) (*Writer, error) {
	cfg := writerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var enc *zstd.Encoder
	if cfg.compression == CompressionZstd {
		var err error
		enc, err = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	// Reserve the header; Close overwrites it once the index location is known.
	if _, err := f.Write(make([]byte, HeaderSize)); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	hasher := blake3.New()
	w := &Writer{
		cfg:    cfg,
		path:   path,
		f:      f,
		hasher: hasher,
		data:   &ioutil.CountingWriter{W: io.MultiWriter(f, hasher)},
		enc:    enc,
	}
	w.log().Debug("container created", "path", path, "compression", cfg.compression.String())
	return w, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (w *Writer) log() *slog.Logger {
	if w.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return w.cfg.logger
}

// Path returns the path the container is written to.
func (w *Writer) Path() string {
	return w.path
}

// Offset returns the absolute file offset the next payload byte will be
// written at.
func (w *Writer) Offset() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return HeaderSize + w.data.N
}

// Len returns the number of entries added so far.
func (w *Writer) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Entries returns a copy of the entries added so far, in write order.
func (w *Writer) Entries() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.entries...)
}

// WriteFile writes data as one entry under key, compressing it when the
// writer is configured to and the result is smaller.
func (w *Writer) WriteFile(key Key, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	stored, compression, err := w.encode(key, data)
	if err != nil {
		return fmt.Errorf("compress %s: %w", key, err)
	}

	offset := HeaderSize + w.data.N
	if _, err := w.data.Write(stored); err != nil {
		return fmt.Errorf("write %s: %w", key, wrapOverflowErr(err))
	}
	w.entries = append(w.entries, Entry{
		Key:         key,
		Offset:      offset,
		Size:        uint64(len(stored)),
		MemSize:     uint64(len(data)),
		Compression: compression,
	})
	return nil
}

// WriteFunc writes the bytes produced by fn as one entry under key.
// The output is buffered so it can be compressed like WriteFile.
func (w *Writer) WriteFunc(key Key, fn func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return fmt.Errorf("produce %s: %w", key, err)
	}
	return w.WriteFile(key, buf.Bytes())
}

// Stream returns a writer that appends raw bytes to the data region without
// creating an entry. Callers record Offset before streaming and register the
// payload with AddEntry afterwards.
func (w *Writer) Stream() io.Writer {
	return streamWriter{w: w}
}

type streamWriter struct {
	w *Writer
}

func (s streamWriter) Write(p []byte) (int, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if s.w.closed {
		return 0, ErrClosed
	}
	n, err := s.w.data.Write(p)
	return n, wrapOverflowErr(err)
}

// AddEntry registers a payload previously written through Stream.
// The entry must lie entirely inside the data region written so far.
func (w *Writer) AddEntry(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	end, ok := sizing.AddUint64(e.Offset, e.Size)
	if !ok {
		return ErrSizeOverflow
	}
	if e.Offset < HeaderSize || end > HeaderSize+w.data.N {
		return fmt.Errorf("%w: %s spans [%d, %d) outside data region", ErrInvalidEntry, e.Key, e.Offset, end)
	}
	w.entries = append(w.entries, e)
	return nil
}

// Close writes the index and header and closes the file.
//
// Close is idempotent; later calls return the result of the first.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return w.closeErr
	}
	w.closed = true
	w.closeErr = w.finalize()
	return w.closeErr
}

func (w *Writer) finalize() error {
	var errs []error
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close zstd encoder: %w", err))
		}
	}

	dataSize := w.data.N
	indexData := buildIndex(w.entries, dataSize, w.hasher.Sum(nil))
	indexOffset := HeaderSize + dataSize

	if _, err := w.f.Write(indexData); err != nil {
		errs = append(errs, fmt.Errorf("write index: %w", err))
	} else if _, err := w.f.WriteAt(encodeHeader(indexOffset, uint64(len(indexData))), 0); err != nil {
		errs = append(errs, fmt.Errorf("write header: %w", err))
	}
	if err := w.f.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close container: %w", err))
	}

	w.log().Debug("container finalized",
		"path", w.path,
		"entry_count", len(w.entries),
		"data_size", dataSize,
		"index_size", len(indexData),
	)
	return errors.Join(errs...)
}

// encode applies the configured compression to data.
func (w *Writer) encode(key Key, data []byte) ([]byte, Compression, error) {
	compression := w.cfg.compression
	if compression == CompressionNone || len(data) == 0 {
		return data, CompressionNone, nil
	}
	if write.ShouldSkip(key.Type, len(data), w.cfg.skipCompression) {
		return data, CompressionNone, nil
	}

	var out []byte
	switch compression {
	case CompressionZstd:
		out = w.enc.EncodeAll(data, make([]byte, 0, len(data)))
	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, 0, err
		}
		if err := zw.Close(); err != nil {
			return nil, 0, err
		}
		out = buf.Bytes()
	default:
		return nil, 0, fmt.Errorf("unsupported compression %d", compression)
	}

	// Incompressible payloads are stored raw.
	if len(out) >= len(data) {
		return data, CompressionNone, nil
	}
	return out, compression, nil
}

func encodeHeader(indexOffset, indexSize uint64) []byte {
	h := make([]byte, HeaderSize)
	copy(h[0:4], magic[:])
	binary.LittleEndian.PutUint32(h[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(h[8:16], indexOffset)
	binary.LittleEndian.PutUint64(h[16:24], indexSize)
	return h
}

// buildIndex serializes entries to FlatBuffers format.
func buildIndex(entries []Entry, dataSize uint64, dataHash []byte) []byte {
	builder := flatbuffers.NewBuilder(1024)

	// Build entries in reverse order (FlatBuffers requirement)
	entryOffsets := make([]flatbuffers.UOffsetT, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fb.EntryStart(builder)
		fb.EntryAddGroup(builder, e.Key.Group)
		fb.EntryAddInstance(builder, e.Key.Instance)
		fb.EntryAddType(builder, e.Key.Type)
		fb.EntryAddOffset(builder, e.Offset)
		fb.EntryAddSize(builder, e.Size)
		fb.EntryAddMemSize(builder, e.MemSize)
		fb.EntryAddCompression(builder, fb.Compression(e.Compression))
		entryOffsets[i] = fb.EntryEnd(builder)
	}

	fb.IndexStartEntriesVector(builder, len(entries))
	for i := len(entryOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entryOffsets[i])
	}
	entriesOffset := builder.EndVector(len(entries))

	hashOffset := builder.CreateByteVector(dataHash)

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, FormatVersion)
	fb.IndexAddEntries(builder, entriesOffset)
	fb.IndexAddDataSize(builder, dataSize)
	fb.IndexAddDataHash(builder, hashOffset)
	indexOffset := fb.IndexEnd(builder)

	fb.FinishIndexBuffer(builder, indexOffset)
	return builder.FinishedBytes()
}

func wrapOverflowErr(err error) error {
	if errors.Is(err, ioutil.ErrOverflow) {
		return ErrSizeOverflow
	}
	return err
}
