// ABOUTME: Engine package running the live audio processing loop
// ABOUTME: Ties devices, the effect chain, recording and the visualizer together
// Package engine runs capture → effect chain → playback on a dedicated
// goroutine, with a recording goroutine writing WAV files and a dispatcher
// delivering callbacks off the audio path.
//
// Example:
//
//	e := engine.New(engine.Config{
//		Input:    capture,
//		Output:   playback,
//		Controls: store.Controls(),
//		OnVisualizerFrame: func(frame []float32) { ... },
//	})
//	err := e.Start()
//	e.SetRecording(true)
//	e.Stop()
package engine
