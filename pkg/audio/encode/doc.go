// ABOUTME: Audio encoder package for encoding PCM to various formats
// ABOUTME: Provides Encoder interface, PCM and Opus encoders and a WAV writer
// Package encode provides audio encoders for the engine's mono 16-bit stream.
//
// Supports: PCM (16-bit little-endian), Opus, WAV files
//
// The WAV writer wraps go-audio/wav, streams into any io.WriteSeeker and
// patches the header sizes when finalized:
//
//	f, _ := os.Create("take.wav")
//	w, err := encode.NewWAVWriter(f, 48000)
//	err = w.WriteSamples(chunk)
//	err = w.Close()
package encode
