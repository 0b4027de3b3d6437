// ABOUTME: Effect processor package
// ABOUTME: Thirteen mono effects and the chain that orders them
// Package effects implements the guitar/voice effect processors and the
// reorderable chain that runs them.
//
// A Chain owns one processor per Kind. Each chunk the caller builds a
// Snapshot (volume, order, enabled flags, parameters), calls Prepare once
// and then Process for every sample:
//
//	chain := effects.NewChain(48000)
//	snap := effects.DefaultSnapshot()
//	snap.Enabled[effects.Delay] = true
//	chain.ProcessBlock(samples, &snap)
//
// Disabled processors are skipped, except Delay which keeps writing its
// line so that enabling it later echoes recent audio rather than stale data.
package effects
