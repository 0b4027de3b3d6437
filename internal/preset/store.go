// ABOUTME: Concurrency-safe live control state shared by the UI, remote and engine
// ABOUTME: Exposes engine.Controls accessors backed by a locked snapshot
package preset

import (
	"fmt"
	"sync"

	"github.com/micamp/micamp-go/pkg/effects"
	"github.com/micamp/micamp-go/pkg/engine"
)

// Store holds the live chain configuration
type Store struct {
	mu       sync.RWMutex
	name     string
	snap     effects.Snapshot
	onChange []func(effects.Snapshot)
}

// NewStore creates a store seeded from p
func NewStore(p *Preset) (*Store, error) {
	s := &Store{}
	if err := s.Apply(p); err != nil {
		return nil, err
	}
	return s, nil
}

// OnChange registers fn to run after every mutation, outside the lock
func (s *Store) OnChange(fn func(effects.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// update applies fn under the write lock and notifies listeners
func (s *Store) update(fn func(snap *effects.Snapshot) error) error {
	s.mu.Lock()
	if err := fn(&s.snap); err != nil {
		s.mu.Unlock()
		return err
	}
	snap := s.snap
	listeners := s.onChange
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
	return nil
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() effects.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Name returns the name of the applied preset
func (s *Store) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Apply replaces the whole state with p
func (s *Store) Apply(p *Preset) error {
	snap, err := p.Snapshot()
	if err != nil {
		return err
	}
	return s.update(func(cur *effects.Snapshot) error {
		*cur = snap
		s.name = p.Name
		return nil
	})
}

// Preset captures the current state
func (s *Store) Preset() *Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FromSnapshot(s.name, s.snap)
}

// SetVolume sets the master gain, clamped to [0, MaxVolume]
func (s *Store) SetVolume(v float32) {
	if v < 0 {
		v = 0
	}
	if v > MaxVolume {
		v = MaxVolume
	}
	s.update(func(snap *effects.Snapshot) error {
		snap.Volume = v
		return nil
	})
}

// AdjustVolume adds delta to the master gain and returns the new value
func (s *Store) AdjustVolume(delta float32) float32 {
	s.SetVolume(s.Snapshot().Volume + delta)
	return s.Snapshot().Volume
}

// SetEnabled turns an effect on or off
func (s *Store) SetEnabled(k effects.Kind, on bool) error {
	if !k.Valid() {
		return fmt.Errorf("unknown effect %s", k)
	}
	return s.update(func(snap *effects.Snapshot) error {
		snap.Enabled[k] = on
		return nil
	})
}

// Toggle flips an effect and returns its new state
func (s *Store) Toggle(k effects.Kind) (bool, error) {
	if !k.Valid() {
		return false, fmt.Errorf("unknown effect %s", k)
	}
	var on bool
	err := s.update(func(snap *effects.Snapshot) error {
		snap.Enabled[k] = !snap.Enabled[k]
		on = snap.Enabled[k]
		return nil
	})
	return on, err
}

// SetParam sets one named parameter
func (s *Store) SetParam(k effects.Kind, name string, value float32) error {
	i, err := effects.ParamIndex(k, name)
	if err != nil {
		return err
	}
	return s.update(func(snap *effects.Snapshot) error {
		snap.Params[k][i] = value
		return nil
	})
}

// SetParams replaces an effect's parameter vector, defaulting missing values
func (s *Store) SetParams(k effects.Kind, values []float32) error {
	if !k.Valid() {
		return fmt.Errorf("unknown effect %s", k)
	}
	params := effects.FillParams(k, values)
	return s.update(func(snap *effects.Snapshot) error {
		snap.Params[k] = params
		return nil
	})
}

// Move shifts an effect delta positions within the order, stopping at the ends
func (s *Store) Move(k effects.Kind, delta int) error {
	if !k.Valid() {
		return fmt.Errorf("unknown effect %s", k)
	}
	return s.update(func(snap *effects.Snapshot) error {
		pos := -1
		for i, o := range snap.Order {
			if o == k {
				pos = i
				break
			}
		}
		target := pos + delta
		if target < 0 {
			target = 0
		}
		if target > effects.NumKinds-1 {
			target = effects.NumKinds - 1
		}
		for pos < target {
			snap.Order[pos], snap.Order[pos+1] = snap.Order[pos+1], snap.Order[pos]
			pos++
		}
		for pos > target {
			snap.Order[pos], snap.Order[pos-1] = snap.Order[pos-1], snap.Order[pos]
			pos--
		}
		return nil
	})
}

// SetOrder replaces the order, repairing it into a full permutation
func (s *Store) SetOrder(order []effects.Kind) {
	normalized := effects.NormalizeOrder(order)
	s.update(func(snap *effects.Snapshot) error {
		snap.Order = normalized
		return nil
	})
}

// Controls returns engine accessors reading this store. Each accessor
// reuses its own buffer, so results are valid until the next call.
func (s *Store) Controls() engine.Controls {
	var order [effects.NumKinds]effects.Kind
	c := engine.Controls{
		Volume: func() float32 {
			s.mu.RLock()
			defer s.mu.RUnlock()
			return s.snap.Volume
		},
		Order: func() []effects.Kind {
			s.mu.RLock()
			order = s.snap.Order
			s.mu.RUnlock()
			return order[:]
		},
	}

	for i := range c.Effects {
		k := effects.Kind(i)
		params := new(effects.Params)
		c.Effects[i] = engine.EffectControl{
			Params: func() []float32 {
				s.mu.RLock()
				*params = s.snap.Params[k]
				s.mu.RUnlock()
				return params[:]
			},
			Enabled: func() bool {
				s.mu.RLock()
				defer s.mu.RUnlock()
				return s.snap.Enabled[k]
			},
		}
	}
	return c
}
