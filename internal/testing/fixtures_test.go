package testing

import (
	"os"
	"path/filepath"
	stdtesting "testing"
	"time"

	"github.com/tungetti/sessionlog/internal/config"
	"github.com/tungetti/sessionlog/internal/verbosity"
)

func TestConfigBuilder(t *stdtesting.T) {
	cfg := NewConfigBuilder().
		WithLogDir("/tmp/logs").
		WithBuffer(10).
		WithMaxChars(64).
		WithMask(verbosity.Error).
		Build()

	if cfg.LogDir != "/tmp/logs" || cfg.BytesToBuffer != 10 || cfg.MaxMessageChars != 64 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Verbosity.String() != "mask=Error" {
		t.Errorf("expected mask=Error, got %s", cfg.Verbosity)
	}

	cfg = NewConfigBuilder().WithThreshold(verbosity.Warning).Build()
	if cfg.Verbosity.String() != "level=Warning" {
		t.Errorf("expected level=Warning, got %s", cfg.Verbosity)
	}
}

func TestTestConfigIsValid(t *stdtesting.T) {
	cfg := TestConfig(t)

	if !config.NewValidator().IsValid(cfg) {
		t.Errorf("expected valid config, got %v", config.NewValidator().Validate(cfg))
	}
	if _, err := os.Stat(cfg.LogDir); err != nil {
		t.Errorf("expected log dir to exist: %v", err)
	}
}

func TestConfigFixturesLoad(t *stdtesting.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"key-value", "log.config", KeyValueConfig, "level=Info"},
		{"yaml", "log.yaml", YAMLConfig, "mask=Error,Warning"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *stdtesting.T) {
			cfg, err := config.Load(WriteFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Verbosity.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, cfg.Verbosity)
			}
		})
	}
}

func TestReadFileAndLogFiles(t *stdtesting.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.log", "a.log", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}

	names := LogFiles(t, dir)
	if len(names) != 2 || names[0] != "a.log" || names[1] != "b.log" {
		t.Errorf("unexpected log files %v", names)
	}
	if got := ReadFile(t, filepath.Join(dir, "a.log")); got != "a.log" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestSessionTimeLayout(t *stdtesting.T) {
	if got := SessionTime.Format("2006-01-02_15:04:05"); got != "2026-10-19_10:00:00" {
		t.Errorf("unexpected rendering %s", got)
	}
}

func TestMockTime(t *stdtesting.T) {
	clock := NewMockTime(SessionTime)

	clock.Advance(time.Second)
	if !clock.Now().Equal(SessionTime.Add(time.Second)) {
		t.Errorf("unexpected time %v", clock.Now())
	}

	clock.Set(SessionTime)
	if !clock.Now().Equal(SessionTime) {
		t.Errorf("unexpected time %v", clock.Now())
	}
}

func TestWaitFor(t *stdtesting.T) {
	calls := 0
	WaitFor(t, func() bool {
		calls++
		return calls >= 3
	}, time.Second, time.Millisecond)

	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestMustParse(t *stdtesting.T) {
	level := MustParse(verbosity.ParseLevel("warning"))
	if level != verbosity.Warning {
		t.Errorf("expected Warning, got %s", level)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustParse(verbosity.ParseLevel("loud"))
}
