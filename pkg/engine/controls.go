// ABOUTME: Accessor closures the engine reads once per chunk
// ABOUTME: Converts live control state into an effects.Snapshot
package engine

import "github.com/micamp/micamp-go/pkg/effects"

// EffectControl supplies one effect's parameters and enabled flag
type EffectControl struct {
	Params  func() []float32
	Enabled func() bool
}

// Controls supplies every tunable value. Nil accessors fall back to
// unity volume, the default order, disabled effects and default params.
type Controls struct {
	Volume  func() float32
	Order   func() []effects.Kind
	Effects [effects.NumKinds]EffectControl
}

// StaticControls returns controls that always report s
func StaticControls(s effects.Snapshot) Controls {
	c := Controls{
		Volume: func() float32 { return s.Volume },
		Order:  func() []effects.Kind { return s.Order[:] },
	}
	for i := range c.Effects {
		enabled := s.Enabled[i]
		params := s.Params[i]
		c.Effects[i] = EffectControl{
			Params:  func() []float32 { return params[:] },
			Enabled: func() bool { return enabled },
		}
	}
	return c
}

// read fills s from the accessors
func (c *Controls) read(s *effects.Snapshot) {
	s.Volume = 1
	if c.Volume != nil {
		s.Volume = c.Volume()
	}

	var order []effects.Kind
	if c.Order != nil {
		order = c.Order()
	}
	s.Order = effects.NormalizeOrder(order)

	for i := range c.Effects {
		kind := effects.Kind(i)
		ec := &c.Effects[i]
		s.Enabled[i] = ec.Enabled != nil && ec.Enabled()
		if ec.Params != nil {
			s.Params[i] = effects.FillParams(kind, ec.Params())
		} else {
			s.Params[i] = effects.DefaultParams(kind)
		}
	}
}
