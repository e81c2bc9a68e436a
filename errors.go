package dbpack

import (
	"errors"
	"fmt"
)

// Sentinel errors for packing.
var (
	// ErrMissingNestedFile is matched by errors from items that are
	// directories without the payload file they are expected to wrap.
	ErrMissingNestedFile = errors.New("dbpack: missing nested file")

	// ErrFileTooLarge is returned when a verbatim item exceeds the
	// configured maximum file size.
	ErrFileTooLarge = errors.New("dbpack: file too large")

	// ErrAlreadyStarted is returned when a Task is run more than once.
	ErrAlreadyStarted = errors.New("dbpack: task already started")
)

// MissingNestedFileError reports a directory item that no encoder handles
// as a unit and that does not contain a file with its own name.
type MissingNestedFileError struct {
	// Dir is the directory item.
	Dir string
	// Name is the file expected inside Dir.
	Name string
}

func (e *MissingNestedFileError) Error() string {
	return fmt.Sprintf("couldn't find file %s inside subfolder %s", e.Name, e.Dir)
}

// Is reports whether target is ErrMissingNestedFile.
func (e *MissingNestedFileError) Is(target error) bool {
	return target == ErrMissingNestedFile
}

// PackError is the terminal failure of a packing run. Path is the file
// being processed when the run failed.
type PackError struct {
	Path string
	Err  error
}

func (e *PackError) Error() string {
	if e.Path == "" {
		return "pack: " + e.Err.Error()
	}
	return fmt.Sprintf("pack %s: %v", e.Path, e.Err)
}

func (e *PackError) Unwrap() error {
	return e.Err
}
