// Package sink provides the destinations a session writes to: the
// append-only session file and the best-effort console echo.
package sink

import (
	"os"
	"path/filepath"

	"github.com/tungetti/sessionlog/internal/constants"
	"github.com/tungetti/sessionlog/internal/errors"
)

// FileSink appends chunks to a single session file. The file is opened
// per write and closed afterwards, so no descriptor outlives a flush.
type FileSink struct {
	dir  string
	name string
}

// NewFileSink returns a sink for dir/name. Nothing is created until the
// first WriteChunk.
func NewFileSink(dir, name string) *FileSink {
	return &FileSink{dir: dir, name: name}
}

// Name returns the session file name.
func (s *FileSink) Name() string {
	return s.name
}

// Path returns the full path of the session file.
func (s *FileSink) Path() string {
	return filepath.Join(s.dir, s.name)
}

// WriteChunk appends p and a single line separator to the session file.
// Existing content is never truncated.
func (s *FileSink) WriteChunk(p []byte) error {
	f, err := os.OpenFile(s.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePerm)
	if err != nil {
		return errors.Wrap(errors.IO, "failed to open session file", err).
			WithOp("sink.WriteChunk")
	}

	chunk := make([]byte, 0, len(p)+len(constants.LineSeparator))
	chunk = append(chunk, p...)
	chunk = append(chunk, constants.LineSeparator...)

	if _, err := f.Write(chunk); err != nil {
		_ = f.Close()
		return errors.Wrap(errors.IO, "failed to write session file", err).
			WithOp("sink.WriteChunk")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(errors.IO, "failed to close session file", err).
			WithOp("sink.WriteChunk")
	}
	return nil
}

// EnsureDir creates dir and any missing parents. An existing directory
// is not an error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, constants.DirPerm); err != nil {
		code := errors.IO
		if os.IsPermission(err) {
			code = errors.Permission
		}
		return errors.Wrapf(code, err, "failed to create log directory %s", dir).
			WithOp("sink.EnsureDir")
	}
	return nil
}

// Exists reports whether name is already present in dir.
func Exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
