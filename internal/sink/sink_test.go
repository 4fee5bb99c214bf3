package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tungetti/sessionlog/internal/errors"
)

func TestFileSink_AppendsWithSeparator(t *testing.T) {
	dir := t.TempDir()
	s := NewFileSink(dir, "session.log")

	require.NoError(t, s.WriteChunk([]byte("a [1] , Info\t : one\n")))
	require.NoError(t, s.WriteChunk([]byte("a [2] , Info\t : two\n")))

	content, err := os.ReadFile(filepath.Join(dir, "session.log"))
	require.NoError(t, err)
	assert.Equal(t, "a [1] , Info\t : one\n\na [2] , Info\t : two\n\n", string(content))
}

func TestFileSink_NeverTruncates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.log")
	require.NoError(t, os.WriteFile(path, []byte("earlier\n"), 0644))

	s := NewFileSink(dir, "existing.log")
	require.NoError(t, s.WriteChunk([]byte("later")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "earlier\nlater\n", string(content))
}

func TestFileSink_PathAndName(t *testing.T) {
	s := NewFileSink("/var/log/app", "x.log")

	assert.Equal(t, "x.log", s.Name())
	assert.Equal(t, "/var/log/app/x.log", s.Path())
}

func TestFileSink_MissingDirectory(t *testing.T) {
	s := NewFileSink(filepath.Join(t.TempDir(), "missing"), "x.log")

	err := s.WriteChunk([]byte("data"))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.IO))
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := EnsureDir(filepath.Join(blocker, "logs"))

	assert.Error(t, err)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "here.log"), nil, 0644))

	assert.True(t, Exists(dir, "here.log"))
	assert.False(t, Exists(dir, "gone.log"))
}

func TestConsoleSink_Echo(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSink(&buf)

	require.NoError(t, c.Echo("line one\n"))
	require.NoError(t, c.Echo("line two\n"))

	assert.Equal(t, "line one\nline two\n", buf.String())
}

func TestConsoleSink_NilWriterDiscards(t *testing.T) {
	c := NewConsoleSink(nil)
	assert.NoError(t, c.Echo("dropped\n"))
}

func TestConsoleSink_ConcurrentLinesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSink(&buf)
	line := strings.Repeat("x", 64) + "\n"

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Echo(line)
		}()
	}
	wg.Wait()

	for _, l := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, strings.TrimSuffix(line, "\n"), l)
	}
}
