package encoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/meigma/dbpack/archive"
	"github.com/meigma/dbpack/internal/codec"
)

// Prop encodes YAML property files ("name.prop.yaml") as CBOR property
// entries typed "prop".
type Prop struct {
	h       Hasher
	pattern glob.Glob
}

// NewProp returns a Prop encoder.
func NewProp(h Hasher) *Prop {
	return &Prop{h: h, pattern: glob.MustCompile("*.prop.yaml")}
}

// Name implements Encoder.
func (*Prop) Name() string { return "prop" }

// CanEncodeDir implements Encoder.
func (*Prop) CanEncodeDir(string) bool { return false }

// Encode implements Encoder.
func (p *Prop) Encode(ctx context.Context, path string, w Writer, group uint32) (bool, error) {
	name := filepath.Base(path)
	if !p.pattern.Match(name) || !isRegular(path) {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	src, err := os.ReadFile(path) //nolint:gosec // path comes from the packed tree
	if err != nil {
		return false, err
	}
	var doc any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	data, err := codec.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", name, err)
	}

	base, _ := SplitName(name)
	key := archive.Key{Group: group, Instance: p.h.Hash(base), Type: p.h.Hash("prop")}
	if err := w.WriteFile(key, data); err != nil {
		return false, err
	}
	return true, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
