// ABOUTME: Application configuration loaded from YAML, environment and defaults
// ABOUTME: Uses viper with MICAMP_ environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MICAMP_AUDIO_BACKEND
const EnvPrefix = "MICAMP"

type AudioConfig struct {
	Backend      string `mapstructure:"backend" yaml:"backend"`
	InputDevice  string `mapstructure:"input_device" yaml:"input_device"`
	OutputDevice string `mapstructure:"output_device" yaml:"output_device"`
	SampleRate   int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	PeriodMs     int    `mapstructure:"period_ms" yaml:"period_ms"`
}

type RecordingConfig struct {
	Directory   string `mapstructure:"directory" yaml:"directory"`
	QueueChunks int    `mapstructure:"queue_chunks" yaml:"queue_chunks"`
}

type PresetConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Autosave bool   `mapstructure:"autosave" yaml:"autosave"`
}

type RemoteConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port" yaml:"port"`
	Name    string `mapstructure:"name" yaml:"name"`
	MDNS    bool   `mapstructure:"mdns" yaml:"mdns"`
	Codec   string `mapstructure:"codec" yaml:"codec"`
}

type Config struct {
	Audio     AudioConfig     `mapstructure:"audio" yaml:"audio"`
	Recording RecordingConfig `mapstructure:"recording" yaml:"recording"`
	Preset    PresetConfig    `mapstructure:"preset" yaml:"preset"`
	Remote    RemoteConfig    `mapstructure:"remote" yaml:"remote"`
	LogFile   string          `mapstructure:"log_file" yaml:"log_file"`

	// File is the config file that was read, empty when running on defaults
	File string `mapstructure:"-" yaml:"-"`
}

// DefaultDir returns the directory searched for config.yaml
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "micamp")
	}
	return "."
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("audio.backend", "malgo")
	v.SetDefault("audio.input_device", "")
	v.SetDefault("audio.output_device", "")
	v.SetDefault("audio.sample_rate", 0)
	v.SetDefault("audio.period_ms", 20)
	v.SetDefault("recording.directory", "~/Music/MicAmp")
	v.SetDefault("recording.queue_chunks", 256)
	v.SetDefault("preset.path", filepath.Join(DefaultDir(), "preset.yaml"))
	v.SetDefault("preset.autosave", true)
	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.port", 8927)
	v.SetDefault("remote.name", "MicAmp")
	v.SetDefault("remote.mdns", true)
	v.SetDefault("remote.codec", "opus")
	v.SetDefault("log_file", "micamp.log")
}

// Load reads configFile, or config.yaml from DefaultDir when empty. A
// missing default file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(expandPath(configFile))
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	cfg.Recording.Directory = expandPath(cfg.Recording.Directory)
	cfg.Preset.Path = expandPath(cfg.Preset.Path)
	cfg.LogFile = expandPath(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	switch c.Audio.Backend {
	case "malgo", "oto":
	default:
		return fmt.Errorf("audio.backend must be malgo or oto, got %q", c.Audio.Backend)
	}
	if c.Audio.SampleRate != 0 && (c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000) {
		return fmt.Errorf("audio.sample_rate %d out of range (8000-192000, or 0 for the device rate)", c.Audio.SampleRate)
	}
	if c.Audio.PeriodMs < 1 || c.Audio.PeriodMs > 1000 {
		return fmt.Errorf("audio.period_ms %d out of range (1-1000)", c.Audio.PeriodMs)
	}
	if c.Recording.QueueChunks < 1 {
		return fmt.Errorf("recording.queue_chunks must be positive, got %d", c.Recording.QueueChunks)
	}
	if c.Remote.Port < 1 || c.Remote.Port > 65535 {
		return fmt.Errorf("remote.port %d out of range", c.Remote.Port)
	}
	switch c.Remote.Codec {
	case "pcm", "opus":
	default:
		return fmt.Errorf("remote.codec must be pcm or opus, got %q", c.Remote.Codec)
	}
	return nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
