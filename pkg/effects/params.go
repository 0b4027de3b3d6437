// ABOUTME: Effect parameter vectors and per-chunk snapshots
// ABOUTME: Names, defaults and padding rules for each effect's parameters
package effects

import "fmt"

// MaxParams is the widest parameter vector of any effect (the equalizer)
const MaxParams = 6

// Params holds one effect's parameters in index order
type Params [MaxParams]float32

// EqFrequencies are the equalizer band centers in Hz
var EqFrequencies = [MaxParams]float32{60, 230, 910, 3000, 14000, 20000}

var paramNames = [NumKinds][]string{
	NoiseGate:  {"threshold"},
	Compressor: {"threshold", "ratio", "makeup"},
	AutoWah:    {"depth", "rate", "mix", "resonance"},
	Bitcrusher: {"depth", "rate", "mix"},
	Eq:         {"60hz", "230hz", "910hz", "3khz", "14khz", "20khz"},
	Distortion: {"amount"},
	Phaser:     {"rate", "depth", "mix", "feedback"},
	Flanger:    {"rate", "depth", "mix", "feedback"},
	Tremolo:    {"depth", "rate"},
	Chorus:     {"rate", "depth", "mix"},
	Delay:      {"time", "feedback", "mix"},
	Reverb:     {"mix", "size"},
	Limiter:    {"threshold"},
}

var defaultParams = [NumKinds]Params{
	NoiseGate:  {0.05},
	Compressor: {0.5, 4, 1},
	AutoWah:    {0.5, 0.5, 0.5, 0.5},
	Bitcrusher: {0.5, 0.1, 1},
	Eq:         {0, 0, 0, 0, 0, 0},
	Distortion: {0},
	Phaser:     {1, 0.5, 0.5, 0.5},
	Flanger:    {0.5, 2, 0.5, 0.5},
	Tremolo:    {0.5, 5},
	Chorus:     {1, 2, 0.5},
	Delay:      {0.3, 0.4, 0.3},
	Reverb:     {0.3, 0.5},
	Limiter:    {0.95},
}

// ParamNames returns the parameter names of k in index order
func ParamNames(k Kind) []string {
	if !k.Valid() {
		return nil
	}
	return paramNames[k]
}

// ParamCount returns how many parameters k uses
func ParamCount(k Kind) int {
	return len(ParamNames(k))
}

// ParamIndex resolves a parameter name for k
func ParamIndex(k Kind, name string) (int, error) {
	for i, n := range ParamNames(k) {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("effect %s has no parameter %q", k, name)
}

// DefaultParams returns the default parameter vector for k
func DefaultParams(k Kind) Params {
	if !k.Valid() {
		return Params{}
	}
	return defaultParams[k]
}

// FillParams copies src into a vector for k, taking defaults for missing
// trailing values. Extra values are ignored.
func FillParams(k Kind, src []float32) Params {
	p := DefaultParams(k)
	n := ParamCount(k)
	if len(src) < n {
		n = len(src)
	}
	copy(p[:n], src)
	return p
}

// Snapshot is the complete control state read once per chunk
type Snapshot struct {
	Volume  float32
	Order   [NumKinds]Kind
	Enabled [NumKinds]bool
	Params  [NumKinds]Params
}

// DefaultSnapshot returns unity volume, default order, every effect
// disabled except the equalizer, and default parameters
func DefaultSnapshot() Snapshot {
	s := Snapshot{
		Volume: 1,
		Order:  DefaultOrder(),
	}
	for i := 0; i < NumKinds; i++ {
		s.Params[i] = defaultParams[i]
	}
	s.Enabled[Eq] = true
	return s
}
