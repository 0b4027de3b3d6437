// ABOUTME: Audio decoder package for file playback into the engine
// ABOUTME: Provides the Source interface and MP3, FLAC and WAV decoders
// Package decode turns audio files into mono int16 sample streams.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac), PCM WAV (go-audio/wav)
//
// Multi-channel input is averaged to mono and every bit depth is scaled to
// 16 bits. Sources report their native sample rate; resampling is left to
// the caller.
//
// Example:
//
//	src, err := decode.Open("riff.flac")
//	n, err := src.Read(samples)
package decode
