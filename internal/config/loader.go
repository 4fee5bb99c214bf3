package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/tungetti/sessionlog/internal/constants"
	"github.com/tungetti/sessionlog/internal/errors"
)

// Loader handles configuration loading. Values are read from the file,
// then environment variables override individual keys.
type Loader struct {
	configPath string
	envPrefix  string
	getenv     func(string) string
}

// NewLoader creates a new configuration loader.
// If configPath is empty, every key must come from the environment.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		envPrefix:  constants.EnvPrefix,
		getenv:     os.Getenv,
	}
}

// NewLoaderWithPrefix creates a new loader with a custom environment variable prefix.
func NewLoaderWithPrefix(configPath, envPrefix string) *Loader {
	l := NewLoader(configPath)
	l.envPrefix = envPrefix
	return l
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.configPath
}

// Load reads and validates the configuration. A missing or unreadable
// file, a missing key, an unparsable integer or an unknown verbosity
// value are all errors.
func (l *Loader) Load() (*Config, error) {
	values := make(map[string]string)

	if l.configPath != "" {
		fileValues, err := l.loadFromFile()
		if err != nil {
			return nil, err
		}
		values = fileValues
	}

	l.loadFromEnv(values)

	cfg, errs := fromValues(values)
	if err := combine(errs, "config.Load"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile reads the file as YAML or as "KEY value" lines depending on
// its extension.
func (l *Loader) loadFromFile() (map[string]string, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		code := errors.Configuration
		if os.IsNotExist(err) {
			code = errors.NotFound
		}
		return nil, errors.Wrap(code, "failed to read config file", err).
			WithOp("config.loadFromFile")
	}

	var values map[string]string
	if isYAML(l.configPath) {
		values, err = parseYAML(data)
	} else {
		values, err = parseKeyValue(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errors.Wrap(errors.Configuration, "failed to parse config file", err).
			WithOp("config.loadFromFile")
	}
	return values, nil
}

// loadFromEnv overrides values with <prefix><KEY> variables. An override
// can also supply a key the file left out.
func (l *Loader) loadFromEnv(values map[string]string) {
	for _, key := range Keys {
		if v := l.getenv(l.envPrefix + key); v != "" {
			values[key] = v
		}
	}
	// A level override replaces a mask from the file and vice versa.
	if l.getenv(l.envPrefix+KeyVerbosityLevel) != "" && l.getenv(l.envPrefix+KeyVerbosityMask) == "" {
		delete(values, KeyVerbosityMask)
	}
	if l.getenv(l.envPrefix+KeyVerbosityMask) != "" && l.getenv(l.envPrefix+KeyVerbosityLevel) == "" {
		delete(values, KeyVerbosityLevel)
	}
}

// Load is a shorthand for NewLoader(path).Load().
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// SaveConfig writes cfg to path in the format implied by the extension.
// The parent directory is created if it doesn't exist.
func SaveConfig(cfg *Config, path string) error {
	if err := NewValidator().ValidateOrError(cfg); err != nil {
		return err
	}

	values, err := toValues(cfg)
	if err != nil {
		return err
	}

	var data []byte
	if isYAML(path) {
		data, err = encodeYAML(values)
		if err != nil {
			return errors.Wrap(errors.Configuration, "failed to marshal config", err).
				WithOp("config.SaveConfig")
		}
	} else {
		data = encodeKeyValue(values)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPerm); err != nil {
			return errors.Wrap(errors.Configuration, "failed to create config directory", err).
				WithOp("config.SaveConfig")
		}
	}
	if err := os.WriteFile(path, data, constants.FilePerm); err != nil {
		return errors.Wrap(errors.Configuration, "failed to write config file", err).
			WithOp("config.SaveConfig")
	}
	return nil
}
