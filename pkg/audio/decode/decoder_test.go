// ABOUTME: Tests for file decoders
// ABOUTME: Tests extension dispatch, WAV round trips and bit depth scaling
package decode

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/micamp/micamp-go/pkg/audio/encode"
)

func writeTestWAV(t *testing.T, samples []int16, rate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w, err := encode.NewWAVWriter(f, rate)
	if err != nil {
		t.Fatalf("NewWAVWriter: %v", err)
	}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatalf("WriteSamples: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func TestOpenWAVRoundTrip(t *testing.T) {
	want := make([]int16, 3000)
	for i := range want {
		want[i] = int16((i * 37) % 20000)
	}
	path := writeTestWAV(t, want, 22050)

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 22050 {
		t.Errorf("expected 22050Hz, got %d", src.SampleRate())
	}

	got, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	if n, err := src.Read(make([]int16, 10)); n != 0 || err != io.EOF {
		t.Errorf("expected EOF after drain, got n=%d err=%v", n, err)
	}
}

func TestOpenUnsupportedExtension(t *testing.T) {
	_, err := Open("song.ogg")
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if !strings.Contains(err.Error(), "unsupported audio format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.flac"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewWAVRejectsGarbage(t *testing.T) {
	_, err := NewWAV(bytes.NewReader([]byte("definitely not a wav file at all")))
	if err == nil {
		t.Fatal("expected error for invalid wav")
	}
}

func TestNewMP3RejectsGarbage(t *testing.T) {
	_, err := NewMP3(bytes.NewReader(nil))
	if err == nil {
		t.Fatal("expected error for empty mp3")
	}
}

func TestNewFLACRejectsGarbage(t *testing.T) {
	_, err := NewFLAC(bytes.NewReader([]byte("RIFF0000WAVE")))
	if err == nil {
		t.Fatal("expected error for invalid flac")
	}
}

func TestScaleTo16(t *testing.T) {
	tests := []struct {
		name string
		in   int
		bits int
		want int16
	}{
		{"16 bit unchanged", -1234, 16, -1234},
		{"24 bit shifted", 0x7fff00, 24, 0x7fff},
		{"8 bit widened", 100, 8, 25600},
		{"clamped", 40000, 16, 32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scaleTo16(tt.in, tt.bits); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
