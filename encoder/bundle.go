package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/pierrec/lz4/v4"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/internal/codec"
)

// Bundle packs a "name.bundle" directory as one entry typed "bundle": the
// regular files directly inside it, as a CBOR map of file name to content,
// LZ4-framed. Subdirectories are ignored.
type Bundle struct {
	h       Hasher
	pattern glob.Glob
}

// NewBundle returns a Bundle encoder.
func NewBundle(h Hasher) *Bundle {
	return &Bundle{h: h, pattern: glob.MustCompile("*.bundle")}
}

// Name implements Encoder.
func (*Bundle) Name() string { return "bundle" }

// CanEncodeDir implements Encoder.
func (b *Bundle) CanEncodeDir(path string) bool {
	if !b.pattern.Match(filepath.Base(path)) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Encode implements Encoder.
func (b *Bundle) Encode(ctx context.Context, path string, w Writer, group uint32) (bool, error) {
	if !b.CanEncodeDir(path) {
		return false, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return false, err
	}
	files := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(path, e.Name())) //nolint:gosec // path comes from the packed tree
		if err != nil {
			return false, err
		}
		files[e.Name()] = data
	}

	payload, err := codec.Marshal(files)
	if err != nil {
		return false, fmt.Errorf("encode bundle: %w", err)
	}
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return false, fmt.Errorf("compress bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return false, fmt.Errorf("compress bundle: %w", err)
	}

	base, _ := SplitName(filepath.Base(path))
	key := archive.Key{Group: group, Instance: b.h.Hash(base), Type: b.h.Hash("bundle")}
	if err := w.WriteFile(key, buf.Bytes()); err != nil {
		return false, err
	}
	return true, nil
}
