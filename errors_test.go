package dbpack

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackErrorFormat(t *testing.T) {
	t.Parallel()

	err := &PackError{Path: "/in/grp/a.txt", Err: fs.ErrPermission}
	assert.Equal(t, "pack /in/grp/a.txt: permission denied", err.Error())
	assert.ErrorIs(t, err, fs.ErrPermission)

	bare := &PackError{Err: errors.New("boom")}
	assert.Equal(t, "pack: boom", bare.Error())
}

func TestMissingNestedFileError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", &MissingNestedFileError{Dir: "/in/grp/x.txt", Name: "x.txt"})
	assert.ErrorIs(t, err, ErrMissingNestedFile)
	assert.NotErrorIs(t, err, ErrFileTooLarge)
	assert.Contains(t, err.Error(), "couldn't find file x.txt inside subfolder /in/grp/x.txt")
}
