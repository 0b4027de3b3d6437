// ABOUTME: Audio device package for capture and playback
// ABOUTME: Provides Capture/Playback interfaces with malgo, oto and file backends
// Package device provides mono 16-bit capture and playback devices.
//
// Live audio goes through malgo (miniaudio) or oto. FileCapture and
// WAVPlayback stand in for hardware when rendering files offline.
//
// Example:
//
//	ctx, err := device.NewContext()
//	in := device.NewMalgoCapture(ctx, nil, 20)
//	out := device.NewMalgoPlayback(ctx, nil, 20)
//	err = in.Open(48000, 1920)
//	n, err := in.Read(samples)
package device
