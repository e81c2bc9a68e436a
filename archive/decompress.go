package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/meigma/dbpack/internal/sizing"
)

// ReadFile returns the logical bytes of e, decompressing stored payloads.
func (r *Reader) ReadFile(e Entry) ([]byte, error) {
	raw, err := r.ReadRaw(e)
	if err != nil {
		return nil, err
	}
	return decompress(e, raw)
}

// decompress expands data according to e.Compression and checks the result
// against e.MemSize.
func decompress(e Entry, data []byte) ([]byte, error) {
	switch e.Compression {
	case CompressionNone:
		if uint64(len(data)) != e.MemSize {
			return nil, fmt.Errorf("%w: %s size mismatch", ErrDecompression, e.Key)
		}
		return data, nil
	case CompressionZstd, CompressionLZ4:
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrDecompression, e.Compression)
	}

	var src io.Reader
	switch e.Compression {
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		defer dec.Close()
		src = dec
	default:
		src = lz4.NewReader(bytes.NewReader(data))
	}

	if e.MemSize == 0 {
		if err := ensureNoExtra(src); err != nil {
			return nil, fmt.Errorf("%w: %s", err, e.Key)
		}
		return []byte{}, nil
	}

	// The buffer grows with the decoded stream, so a corrupt MemSize cannot
	// force a huge allocation up front.
	tooLarge := fmt.Errorf("%w: %s size mismatch", ErrDecompression, e.Key)
	content, err := sizing.ReadAllWithLimit(src, e.MemSize, tooLarge)
	if err != nil {
		if errors.Is(err, ErrDecompression) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if uint64(len(content)) != e.MemSize {
		return nil, fmt.Errorf("%w: %s unexpected EOF", ErrDecompression, e.Key)
	}
	return content, nil
}

// ensureNoExtra fails if r has data left past the expected size.
func ensureNoExtra(r io.Reader) error {
	var buf [1]byte
	n, err := r.Read(buf[:])
	if n > 0 {
		return fmt.Errorf("%w: size mismatch", ErrDecompression)
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDecompression, err)
}
