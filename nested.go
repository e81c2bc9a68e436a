package dbpack

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/meigma/dbpack/encoder"
)

// item is one entry of a group folder on its way into the container.
type item struct {
	folder string // group folder name
	name   string // item name as listed in the folder
	group  uint32

	rel  string // root-relative slash path of the payload
	path string // host path of the payload
}

// resolveItem decides which path on disk an item's payload comes from.
//
// Plain files are their own payload. A directory is passed through when an
// encoder handles it as a unit; otherwise it must wrap a file with its own
// name, which becomes the payload.
func resolveItem(root *os.Root, it item, isDir bool, encs []encoder.Encoder) (item, error) {
	if !isDir {
		return it, nil
	}
	for _, enc := range encs {
		if enc.CanEncodeDir(it.path) {
			return it, nil
		}
	}

	nested := path.Join(it.rel, it.name)
	if _, err := root.Stat(nested); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return it, &MissingNestedFileError{Dir: it.path, Name: it.name}
		}
		return it, err
	}
	it.rel = nested
	it.path = filepath.Join(it.path, it.name)
	return it, nil
}
