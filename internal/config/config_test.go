// ABOUTME: Tests for configuration loading and validation
// ABOUTME: Covers defaults, file values, env overrides and range checks
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsFromEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Audio.Backend != "malgo" {
		t.Errorf("expected malgo backend, got %s", cfg.Audio.Backend)
	}
	if cfg.Audio.PeriodMs != 20 {
		t.Errorf("expected 20ms period, got %d", cfg.Audio.PeriodMs)
	}
	if cfg.Recording.QueueChunks != 256 {
		t.Errorf("expected queue of 256, got %d", cfg.Recording.QueueChunks)
	}
	if strings.HasPrefix(cfg.Recording.Directory, "~") {
		t.Errorf("expected expanded directory, got %s", cfg.Recording.Directory)
	}
	if cfg.Remote.Codec != "opus" || cfg.Remote.Port != 8927 {
		t.Errorf("unexpected remote defaults %+v", cfg.Remote)
	}
	if cfg.File == "" {
		t.Error("expected File to record the config path")
	}
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
audio:
  backend: oto
  input_device: USB
  sample_rate: 44100
  period_ms: 10
recording:
  directory: /tmp/takes
remote:
  enabled: true
  codec: pcm
log_file: /tmp/micamp-test.log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Audio.Backend != "oto" || cfg.Audio.InputDevice != "USB" {
		t.Errorf("unexpected audio config %+v", cfg.Audio)
	}
	if cfg.Audio.SampleRate != 44100 || cfg.Audio.PeriodMs != 10 {
		t.Errorf("unexpected rate/period %+v", cfg.Audio)
	}
	if cfg.Recording.Directory != "/tmp/takes" {
		t.Errorf("unexpected directory %s", cfg.Recording.Directory)
	}
	if !cfg.Remote.Enabled || cfg.Remote.Codec != "pcm" {
		t.Errorf("unexpected remote config %+v", cfg.Remote)
	}
	if cfg.LogFile != "/tmp/micamp-test.log" {
		t.Errorf("unexpected log file %s", cfg.LogFile)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MICAMP_AUDIO_BACKEND", "oto")
	t.Setenv("MICAMP_REMOTE_PORT", "9999")

	cfg, err := Load(writeConfig(t, "audio:\n  backend: malgo\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.Backend != "oto" {
		t.Errorf("expected env override to oto, got %s", cfg.Audio.Backend)
	}
	if cfg.Remote.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Remote.Port)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Audio:     AudioConfig{Backend: "malgo", PeriodMs: 20},
			Recording: RecordingConfig{QueueChunks: 256},
			Remote:    RemoteConfig{Port: 8927, Codec: "opus"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad backend", func(c *Config) { c.Audio.Backend = "jack" }, "audio.backend"},
		{"low sample rate", func(c *Config) { c.Audio.SampleRate = 100 }, "audio.sample_rate"},
		{"device rate", func(c *Config) { c.Audio.SampleRate = 0 }, ""},
		{"zero period", func(c *Config) { c.Audio.PeriodMs = 0 }, "audio.period_ms"},
		{"empty queue", func(c *Config) { c.Recording.QueueChunks = 0 }, "recording.queue_chunks"},
		{"bad port", func(c *Config) { c.Remote.Port = 70000 }, "remote.port"},
		{"bad codec", func(c *Config) { c.Remote.Codec = "mp3" }, "remote.codec"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
