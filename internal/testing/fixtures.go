package testing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tungetti/sessionlog/internal/config"
	"github.com/tungetti/sessionlog/internal/verbosity"
)

// SessionTime is a fixed instant used by tests that check file names.
// It renders as 2026-10-19_10:00:00.
var SessionTime = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

// KeyValueConfig is a complete key-value configuration file.
const KeyValueConfig = `# sessionlog test configuration
LOG_FILE_DIR Log/
BYTES_TO_BUFFER 4096
MAX_MESSAGE_CHARS 1023
VERBOSITY_LEVEL 3
`

// YAMLConfig is the YAML equivalent of KeyValueConfig with a mask.
const YAMLConfig = `log_file_dir: Log/
bytes_to_buffer: 4096
max_message_chars: 1023
verbosity_mask: [Error, Warning]
`

// ConfigBuilder builds configurations for tests.
type ConfigBuilder struct {
	cfg *config.Config
}

// NewConfigBuilder starts from config.DefaultConfig.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: config.DefaultConfig()}
}

// WithLogDir sets the log directory.
func (b *ConfigBuilder) WithLogDir(dir string) *ConfigBuilder {
	b.cfg.LogDir = dir
	return b
}

// WithBuffer sets the flush threshold.
func (b *ConfigBuilder) WithBuffer(n int) *ConfigBuilder {
	b.cfg.BytesToBuffer = n
	return b
}

// WithMaxChars sets the line length cap.
func (b *ConfigBuilder) WithMaxChars(n int) *ConfigBuilder {
	b.cfg.MaxMessageChars = n
	return b
}

// WithThreshold echoes Error up to level.
func (b *ConfigBuilder) WithThreshold(level verbosity.Level) *ConfigBuilder {
	b.cfg.Verbosity = verbosity.Threshold(level)
	return b
}

// WithMask echoes exactly levels.
func (b *ConfigBuilder) WithMask(levels ...verbosity.Level) *ConfigBuilder {
	b.cfg.Verbosity = verbosity.NewMask(levels...)
	return b
}

// Build returns the configuration.
func (b *ConfigBuilder) Build() *config.Config {
	return b.cfg.Clone()
}

// TestConfig returns a default configuration logging into a fresh
// temporary directory.
func TestConfig(t testing.TB) *config.Config {
	t.Helper()
	return NewConfigBuilder().WithLogDir(t.TempDir()).Build()
}

// WriteFile writes content to name inside a temporary directory and
// returns the path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// LogFiles returns the names of the .log files in dir, sorted.
func LogFiles(t testing.TB, dir string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		t.Fatalf("failed to list %s: %v", dir, err)
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	return names
}
