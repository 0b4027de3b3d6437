// ABOUTME: Named effect presets persisted as YAML
// ABOUTME: Converts between preset files and effect chain snapshots
package preset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/micamp/micamp-go/pkg/effects"
	"gopkg.in/yaml.v3"
)

const (
	// MaxVolume is the highest master gain a preset may carry
	MaxVolume = 5.0

	// VolumeStep is the gain increment used by interactive controls
	VolumeStep = 0.5
)

// EffectSettings is the stored state of one effect
type EffectSettings struct {
	Enabled bool               `yaml:"enabled"`
	Params  map[string]float32 `yaml:"params,omitempty"`
}

// Preset is a complete, named chain configuration
type Preset struct {
	Name    string                    `yaml:"name"`
	Volume  float32                   `yaml:"volume"`
	Order   []string                  `yaml:"order"`
	Effects map[string]EffectSettings `yaml:"effects"`
}

// Default returns the factory preset
func Default() *Preset {
	return FromSnapshot("default", effects.DefaultSnapshot())
}

// FromSnapshot captures s as a preset
func FromSnapshot(name string, s effects.Snapshot) *Preset {
	p := &Preset{
		Name:    name,
		Volume:  s.Volume,
		Order:   make([]string, 0, effects.NumKinds),
		Effects: make(map[string]EffectSettings, effects.NumKinds),
	}
	for _, k := range s.Order {
		p.Order = append(p.Order, k.String())
	}
	for _, k := range effects.AllKinds() {
		names := effects.ParamNames(k)
		params := make(map[string]float32, len(names))
		for i, n := range names {
			params[n] = s.Params[k][i]
		}
		p.Effects[k.String()] = EffectSettings{Enabled: s.Enabled[k], Params: params}
	}
	return p
}

// Snapshot resolves the preset against the defaults. Unknown effects or
// parameters are errors, missing ones keep their default.
func (p *Preset) Snapshot() (effects.Snapshot, error) {
	s := effects.DefaultSnapshot()

	if p.Volume < 0 || p.Volume > MaxVolume {
		return s, fmt.Errorf("volume %.2f out of range (0-%.0f)", p.Volume, MaxVolume)
	}
	s.Volume = p.Volume

	order := make([]effects.Kind, 0, len(p.Order))
	for _, name := range p.Order {
		k, err := effects.ParseKind(name)
		if err != nil {
			return s, fmt.Errorf("invalid order entry: %w", err)
		}
		order = append(order, k)
	}
	s.Order = effects.NormalizeOrder(order)

	for name, settings := range p.Effects {
		k, err := effects.ParseKind(name)
		if err != nil {
			return s, err
		}
		s.Enabled[k] = settings.Enabled
		for param, value := range settings.Params {
			i, err := effects.ParamIndex(k, param)
			if err != nil {
				return s, err
			}
			s.Params[k][i] = value
		}
	}
	return s, nil
}

// Load reads and validates a preset file
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset: %w", err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", path, err)
	}
	if _, err := p.Snapshot(); err != nil {
		return nil, fmt.Errorf("invalid preset %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = stem(path)
	}
	return &p, nil
}

// Save writes the preset, creating parent directories
func (p *Preset) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create preset directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preset: %w", err)
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
