// ABOUTME: Effect identities and ordering
// ABOUTME: Defines the thirteen effect kinds and normalizes caller-supplied orders
package effects

import (
	"fmt"
	"strings"
)

// Kind identifies one effect processor in the chain
type Kind int

const (
	NoiseGate Kind = iota
	Compressor
	AutoWah
	Bitcrusher
	Eq
	Distortion
	Phaser
	Flanger
	Tremolo
	Chorus
	Delay
	Reverb
	Limiter

	// NumKinds is the number of effect kinds
	NumKinds = int(Limiter) + 1
)

var kindNames = [NumKinds]string{
	"noise_gate",
	"compressor",
	"auto_wah",
	"bitcrusher",
	"eq",
	"distortion",
	"phaser",
	"flanger",
	"tremolo",
	"chorus",
	"delay",
	"reverb",
	"limiter",
}

var kindLabels = [NumKinds]string{
	"Noise Gate",
	"Compressor",
	"Auto-Wah",
	"Bitcrusher",
	"Equalizer",
	"Distortion",
	"Phaser",
	"Flanger",
	"Tremolo",
	"Chorus",
	"Delay",
	"Reverb",
	"Limiter",
}

// Valid reports whether k names a known effect
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < NumKinds
}

// String returns the config key for the kind
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Label returns a display name
func (k Kind) Label() string {
	if !k.Valid() {
		return k.String()
	}
	return kindLabels[k]
}

// ParseKind resolves a config key (case-insensitive, '-' and ' ' accepted as '_')
func ParseKind(s string) (Kind, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	for i, name := range kindNames {
		if name == key || strings.ReplaceAll(name, "_", "") == key {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown effect: %q", s)
}

// AllKinds returns every kind in declaration order
func AllKinds() []Kind {
	kinds := make([]Kind, NumKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// DefaultOrder is the chain order used when none is configured
func DefaultOrder() [NumKinds]Kind {
	var order [NumKinds]Kind
	for i := range order {
		order[i] = Kind(i)
	}
	return order
}

// NormalizeOrder turns an arbitrary list into a permutation of all kinds.
// Invalid and duplicate entries are dropped; missing kinds are appended in
// default order.
func NormalizeOrder(src []Kind) [NumKinds]Kind {
	var order [NumKinds]Kind
	var seen [NumKinds]bool
	n := 0

	for _, k := range src {
		if !k.Valid() || seen[k] {
			continue
		}
		seen[k] = true
		order[n] = k
		n++
	}
	for i := 0; i < NumKinds; i++ {
		if !seen[i] {
			order[n] = Kind(i)
			n++
		}
	}
	return order
}
