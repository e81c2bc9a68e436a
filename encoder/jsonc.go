package encoder

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/tidwall/jsonc"

	"github.com/meigma/dbpack/archive"
)

// JSONC strips comments and trailing commas from "name.jsonc" files and
// stores the plain JSON typed "json".
type JSONC struct {
	h       Hasher
	pattern glob.Glob
}

// NewJSONC returns a JSONC encoder.
func NewJSONC(h Hasher) *JSONC {
	return &JSONC{h: h, pattern: glob.MustCompile("*.jsonc")}
}

// Name implements Encoder.
func (*JSONC) Name() string { return "jsonc" }

// CanEncodeDir implements Encoder.
func (*JSONC) CanEncodeDir(string) bool { return false }

// Encode implements Encoder.
func (j *JSONC) Encode(ctx context.Context, path string, w Writer, group uint32) (bool, error) {
	name := filepath.Base(path)
	if !j.pattern.Match(name) || !isRegular(path) {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	src, err := os.ReadFile(path) //nolint:gosec // path comes from the packed tree
	if err != nil {
		return false, err
	}

	base, _ := SplitName(name)
	key := archive.Key{Group: group, Instance: j.h.Hash(base), Type: j.h.Hash("json")}
	if err := w.WriteFile(key, jsonc.ToJSON(src)); err != nil {
		return false, err
	}
	return true, nil
}
