// ABOUTME: Unit tests for the WAV writer
// ABOUTME: Verifies header fields, size patching and file length of encoder output
package encode

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWAVHeaderFields(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		samples    int
	}{
		{"empty 48k", 48000, 0},
		{"44.1k one second", 44100, 44100},
		{"odd length", 22050, 617},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "header.wav")
			f, err := os.Create(path)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			w, err := NewWAVWriter(f, tt.sampleRate)
			if err != nil {
				t.Fatalf("NewWAVWriter: %v", err)
			}
			if tt.samples > 0 {
				if err := w.WriteSamples(make([]int16, tt.samples)); err != nil {
					t.Fatalf("WriteSamples: %v", err)
				}
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			h, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read back: %v", err)
			}
			dataLen := uint32(tt.samples * 2)
			if len(h) != WAVHeaderSize+int(dataLen) {
				t.Fatalf("expected file size %d, got %d", WAVHeaderSize+int(dataLen), len(h))
			}
			if string(h[0:4]) != "RIFF" || string(h[8:12]) != "WAVE" ||
				string(h[12:16]) != "fmt " || string(h[36:40]) != "data" {
				t.Fatalf("bad chunk ids: %q", h[:WAVHeaderSize])
			}
			checks := []struct {
				field string
				got   uint32
				want  uint32
			}{
				{"riff size", binary.LittleEndian.Uint32(h[4:]), dataLen + 36},
				{"fmt size", binary.LittleEndian.Uint32(h[16:]), 16},
				{"format", uint32(binary.LittleEndian.Uint16(h[20:])), 1},
				{"channels", uint32(binary.LittleEndian.Uint16(h[22:])), 1},
				{"sample rate", binary.LittleEndian.Uint32(h[24:]), uint32(tt.sampleRate)},
				{"byte rate", binary.LittleEndian.Uint32(h[28:]), uint32(tt.sampleRate * 2)},
				{"block align", uint32(binary.LittleEndian.Uint16(h[32:])), 2},
				{"bits", uint32(binary.LittleEndian.Uint16(h[34:])), 16},
				{"data size", binary.LittleEndian.Uint32(h[40:]), dataLen},
			}
			for _, c := range checks {
				if c.got != c.want {
					t.Errorf("%s: expected %d, got %d", c.field, c.want, c.got)
				}
			}
		})
	}
}

func TestWAVWriterPatchesSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w, err := NewWAVWriter(f, 48000)
	if err != nil {
		t.Fatalf("NewWAVWriter: %v", err)
	}

	chunk := make([]int16, 512)
	for i := range chunk {
		chunk[i] = int16(i - 256)
	}
	const chunks = 10
	for i := 0; i < chunks; i++ {
		if err := w.WriteSamples(chunk); err != nil {
			t.Fatalf("WriteSamples: %v", err)
		}
	}
	if w.PayloadBytes() != chunks*512*2 {
		t.Errorf("expected %d payload bytes, got %d", chunks*512*2, w.PayloadBytes())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	wantLen := WAVHeaderSize + chunks*512*2
	if len(data) != wantLen {
		t.Fatalf("expected file size %d, got %d", wantLen, len(data))
	}
	if got := binary.LittleEndian.Uint32(data[4:]); got != uint32(len(data)-8) {
		t.Errorf("riff size: expected %d, got %d", len(data)-8, got)
	}
	if got := binary.LittleEndian.Uint32(data[40:]); got != uint32(len(data)-44) {
		t.Errorf("data size: expected %d, got %d", len(data)-44, got)
	}

	samples := make([]int16, 512)
	DecodePCM16(samples, data[44:])
	for i := range samples {
		if samples[i] != chunk[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, chunk[i], samples[i])
		}
	}
}

func TestWAVWriterRejectsWritesAfterClose(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "closed.wav"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w, err := NewWAVWriter(f, 44100)
	if err != nil {
		t.Fatalf("NewWAVWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := w.WriteSamples([]int16{1}); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("expected ErrWriterClosed, got %v", err)
	}
	if err := w.Finalize(); err != nil {
		t.Errorf("second finalize should be a no-op, got %v", err)
	}
}

func TestWAVWriterSeconds(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "secs.wav"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	w, err := NewWAVWriter(f, 1000)
	if err != nil {
		t.Fatalf("NewWAVWriter: %v", err)
	}
	if err := w.WriteSamples(make([]int16, 2500)); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if w.Seconds() != 2 {
		t.Errorf("expected 2 whole seconds, got %d", w.Seconds())
	}
}
