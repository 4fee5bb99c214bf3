package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tungetti/sessionlog/internal/errors"
	"github.com/tungetti/sessionlog/internal/verbosity"
)

const validKeyValue = `LOG_FILE_DIR Log/
BYTES_TO_BUFFER 4096
MAX_MESSAGE_CHARS 1023
VERBOSITY_LEVEL 2
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestDefaultConfig tests that DefaultConfig returns valid defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "Log/", cfg.LogDir)
	assert.Equal(t, 4096, cfg.BytesToBuffer)
	assert.Equal(t, 1023, cfg.MaxMessageChars)
	assert.Equal(t, verbosity.Threshold(verbosity.Info), cfg.Verbosity)
	assert.True(t, NewValidator().IsValid(cfg))
}

// TestConfigClone tests Clone method
func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.LogDir = "elsewhere"
	clone.BytesToBuffer = 1

	assert.Equal(t, "Log/", cfg.LogDir)
	assert.Equal(t, 4096, cfg.BytesToBuffer)
}

func TestLoaderKeyValueFile(t *testing.T) {
	path := writeConfig(t, "log.config", validKeyValue)

	cfg, err := NewLoader(path).Load()

	require.NoError(t, err)
	assert.Equal(t, "Log/", cfg.LogDir)
	assert.Equal(t, 4096, cfg.BytesToBuffer)
	assert.Equal(t, 1023, cfg.MaxMessageChars)
	assert.True(t, cfg.Verbosity.Echo(verbosity.Warning))
	assert.False(t, cfg.Verbosity.Echo(verbosity.Info))
}

func TestLoaderKeyValueCommentsTabsAndSpacesInValues(t *testing.T) {
	content := "# debug logger\n\nLOG_FILE_DIR\t/tmp/my logs\nBYTES_TO_BUFFER   0\nMAX_MESSAGE_CHARS 80\nVERBOSITY_MASK Error, Info\n"
	path := writeConfig(t, "log.config", content)

	cfg, err := NewLoader(path).Load()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/my logs", cfg.LogDir)
	assert.Equal(t, 0, cfg.BytesToBuffer)
	assert.Equal(t, 80, cfg.MaxMessageChars)
	assert.True(t, cfg.Verbosity.Echo(verbosity.Error))
	assert.False(t, cfg.Verbosity.Echo(verbosity.Warning))
	assert.True(t, cfg.Verbosity.Echo(verbosity.Info))
}

func TestLoaderDuplicateKeyLastWins(t *testing.T) {
	path := writeConfig(t, "log.config", validKeyValue+"BYTES_TO_BUFFER 16\n")

	cfg, err := NewLoader(path).Load()

	require.NoError(t, err)
	assert.Equal(t, 16, cfg.BytesToBuffer)
}

func TestLoaderMissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		drop    string
		wantKey string
	}{
		{"log dir", "LOG_FILE_DIR", KeyLogDir},
		{"buffer", "BYTES_TO_BUFFER", KeyBytesToBuffer},
		{"max chars", "MAX_MESSAGE_CHARS", KeyMaxMessageChars},
		{"verbosity", "VERBOSITY_LEVEL", KeyVerbosityLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []string
			for _, l := range strings.Split(validKeyValue, "\n") {
				if !strings.HasPrefix(l, tt.drop+" ") {
					lines = append(lines, l)
				}
			}
			path := writeConfig(t, "log.config", strings.Join(lines, "\n"))

			_, err := NewLoader(path).Load()

			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.Configuration))
			assert.Contains(t, err.Error(), tt.wantKey)
			assert.Contains(t, err.Error(), "missing required key")
		})
	}
}

func TestLoaderInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"non-integer buffer", strings.Replace(validKeyValue, "4096", "lots", 1), KeyBytesToBuffer},
		{"negative buffer", strings.Replace(validKeyValue, "4096", "-1", 1), KeyBytesToBuffer},
		{"zero max chars", strings.Replace(validKeyValue, "1023", "0", 1), KeyMaxMessageChars},
		{"verbosity out of range", strings.Replace(validKeyValue, "VERBOSITY_LEVEL 2", "VERBOSITY_LEVEL 9", 1), KeyVerbosityLevel},
		{"unknown key", validKeyValue + "COLOR red\n", "COLOR"},
		{"level and mask", validKeyValue + "VERBOSITY_MASK Error\n", KeyVerbosityLevel},
		{"mask with Off", strings.Replace(validKeyValue, "VERBOSITY_LEVEL 2", "VERBOSITY_MASK Off", 1), KeyVerbosityMask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "log.config", tt.content)

			_, err := NewLoader(path).Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoaderKeyWithoutValue(t *testing.T) {
	path := writeConfig(t, "log.config", "LOG_FILE_DIR\n")

	_, err := NewLoader(path).Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoaderFileNotFound(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.config")).Load()

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.NotFound))
}

func TestLoaderYAMLFile(t *testing.T) {
	content := `
log_file_dir: logs
bytes_to_buffer: 128
max_message_chars: 256
verbosity_mask: [Error, Warning]
`
	path := writeConfig(t, "log.yaml", content)

	cfg, err := NewLoader(path).Load()

	require.NoError(t, err)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, 128, cfg.BytesToBuffer)
	assert.Equal(t, 256, cfg.MaxMessageChars)
	assert.True(t, cfg.Verbosity.Echo(verbosity.Warning))
	assert.False(t, cfg.Verbosity.Echo(verbosity.Info))
}

func TestLoaderInvalidYAML(t *testing.T) {
	path := writeConfig(t, "log.yml", "invalid: yaml: content: [")

	_, err := NewLoader(path).Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoaderEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "log.config", validKeyValue)
	t.Setenv("SESSIONLOG_BYTES_TO_BUFFER", "10")
	t.Setenv("SESSIONLOG_VERBOSITY_MASK", "Info")

	cfg, err := NewLoader(path).Load()

	require.NoError(t, err)
	assert.Equal(t, 10, cfg.BytesToBuffer)
	assert.Equal(t, "mask=Info", cfg.Verbosity.String())
}

func TestLoaderEnvironmentOnly(t *testing.T) {
	t.Setenv("MYAPP_LOG_FILE_DIR", "/tmp/x")
	t.Setenv("MYAPP_BYTES_TO_BUFFER", "1")
	t.Setenv("MYAPP_MAX_MESSAGE_CHARS", "100")
	t.Setenv("MYAPP_VERBOSITY_LEVEL", "error")

	cfg, err := NewLoaderWithPrefix("", "MYAPP_").Load()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/x", cfg.LogDir)
	assert.Equal(t, "level=Error", cfg.Verbosity.String())
}

func TestValidatorValidConfig(t *testing.T) {
	assert.Empty(t, NewValidator().Validate(DefaultConfig()))
}

func TestValidatorCollectsAllErrors(t *testing.T) {
	cfg := &Config{LogDir: " ", BytesToBuffer: -1, MaxMessageChars: 0}

	errs := NewValidator().Validate(cfg)

	assert.Len(t, errs, 4)
}

func TestValidatorValidateOrError(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateOrError(DefaultConfig()))

	cfg := DefaultConfig()
	cfg.MaxMessageChars = -3
	err := v.ValidateOrError(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyMaxMessageChars)
	assert.False(t, v.IsValid(cfg))
	assert.False(t, v.IsValid(nil))
}

func TestLoaderValidationErrorsReachable(t *testing.T) {
	path := writeConfig(t, "log.config", "LOG_FILE_DIR Log/\nBYTES_TO_BUFFER lots\nCOLOR red\n")

	_, err := NewLoader(path).Load()

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.Configuration))

	var all ValidationErrors
	require.True(t, stderrors.As(err, &all))
	fields := make([]string, 0, len(all))
	for _, e := range all {
		var ve *ValidationError
		require.True(t, stderrors.As(e, &ve))
		fields = append(fields, ve.Field)
	}
	assert.Contains(t, fields, "COLOR")
	assert.Contains(t, fields, KeyBytesToBuffer)
	assert.Contains(t, fields, KeyMaxMessageChars)

	var first *ValidationError
	require.True(t, stderrors.As(err, &first))
	assert.Equal(t, all[0], error(first))
}

func TestValidatorValidateOrErrorExposesField(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMessageChars = 0

	err := NewValidator().ValidateOrError(cfg)

	var ve *ValidationError
	require.True(t, stderrors.As(err, &ve))
	assert.Equal(t, KeyMaxMessageChars, ve.Field)
}

// TestValidationErrorString tests ValidationError.Error method
func TestValidationErrorString(t *testing.T) {
	err := &ValidationError{Field: "test_field", Message: "test message"}
	assert.Equal(t, "config validation: test_field: test message", err.Error())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		policy verbosity.Policy
	}{
		{"key-value threshold", "out/log.config", verbosity.Threshold(verbosity.Warning)},
		{"key-value mask", "log.config", verbosity.NewMask(verbosity.Error, verbosity.All)},
		{"yaml threshold", "log.yaml", verbosity.Threshold(verbosity.All)},
		{"yaml mask", "nested/log.yml", verbosity.NewMask(verbosity.Info)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LogDir = "my logs"
			cfg.BytesToBuffer = 0
			cfg.Verbosity = tt.policy
			path := filepath.Join(t.TempDir(), tt.file)

			require.NoError(t, SaveConfig(cfg, path))
			loaded, err := Load(path)

			require.NoError(t, err)
			assert.Equal(t, cfg.LogDir, loaded.LogDir)
			assert.Equal(t, cfg.BytesToBuffer, loaded.BytesToBuffer)
			assert.Equal(t, cfg.Verbosity.String(), loaded.Verbosity.String())
		})
	}
}

func TestSaveConfigKeyValueLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.config")

	require.NoError(t, SaveConfig(DefaultConfig(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LOG_FILE_DIR Log/\nBYTES_TO_BUFFER 4096\nMAX_MESSAGE_CHARS 1023\nVERBOSITY_LEVEL 3\n", string(data))
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogDir = ""

	err := SaveConfig(cfg, filepath.Join(t.TempDir(), "log.config"))

	assert.Error(t, err)
}
