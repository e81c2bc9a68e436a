package dbpack

import (
	"context"
	"io"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/hashid"
	"github.com/meigma/dbpack/internal/ioutil"
	"github.com/meigma/dbpack/signature"
)

// signatureChunkSize is the read size used to stream signature payloads.
const signatureChunkSize = 8192

// writeNames stores the recorded names table. An empty table is not written.
func writeNames(w *archive.Writer, names map[uint32]string) error {
	if len(names) == 0 {
		return nil
	}
	return w.WriteFunc(NamesKey, func(dst io.Writer) error {
		return hashid.WriteNames(dst, names)
	})
}

// writeSignature streams the signature payload straight into the data
// region and registers it uncompressed.
func writeSignature(ctx context.Context, w *archive.Writer, reg *hashid.Registry, src signature.Source) (archive.Entry, error) {
	key := archive.Key{
		Group:    signature.Group,
		Instance: reg.Hash(src.FileName()),
		Type:     signature.Type,
	}

	rc, err := src.Open()
	if err != nil {
		return archive.Entry{}, err
	}
	defer rc.Close()

	offset := w.Offset()
	n, err := ioutil.CopyWithContext(ctx, w.Stream(), rc, make([]byte, signatureChunkSize))
	if err != nil {
		return archive.Entry{}, err
	}

	entry := archive.Entry{
		Key:         key,
		Offset:      offset,
		Size:        n,
		MemSize:     n,
		Compression: archive.CompressionNone,
	}
	if err := w.AddEntry(entry); err != nil {
		return archive.Entry{}, err
	}
	return entry, nil
}
