// ABOUTME: Tests for application orchestration
// ABOUTME: Runs the headless pipeline from a WAV file into a WAV file and checks TUI shutdown paths
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/micamp/micamp-go/internal/config"
	"github.com/micamp/micamp-go/internal/preset"
	"github.com/micamp/micamp-go/pkg/audio/device"
	"github.com/micamp/micamp-go/pkg/audio/encode"
)

func testSettings(dir string) *config.Config {
	return &config.Config{
		Audio: config.AudioConfig{Backend: "malgo", PeriodMs: 20},
		Recording: config.RecordingConfig{
			Directory:   filepath.Join(dir, "recordings"),
			QueueChunks: 16,
		},
		Preset: config.PresetConfig{
			Path:     filepath.Join(dir, "preset.yaml"),
			Autosave: true,
		},
		Remote: config.RemoteConfig{Port: 8927, Name: "Test", Codec: "pcm"},
	}
}

func writeSource(t *testing.T, dir string, n, rate int) string {
	t.Helper()
	path := filepath.Join(dir, "source.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := encode.NewWAVWriter(f, rate)
	if err != nil {
		t.Fatal(err)
	}
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i % 100)
	}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewRequiresSettings(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without settings")
	}
}

func TestNewFallsBackToDefaultPreset(t *testing.T) {
	a, err := New(Config{Settings: testSettings(t.TempDir())})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Store().Name() != preset.Default().Name {
		t.Errorf("expected default preset, got %s", a.Store().Name())
	}
}

func TestNewRejectsBrokenPreset(t *testing.T) {
	settings := testSettings(t.TempDir())
	if err := os.WriteFile(settings.Preset.Path, []byte("volume: [nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Settings: settings}); err == nil {
		t.Error("expected error for malformed preset")
	}
}

func TestRunFileToFile(t *testing.T) {
	dir := t.TempDir()
	settings := testSettings(dir)
	outPath := filepath.Join(dir, "out.wav")

	a, err := New(Config{
		Settings:  settings,
		InputFile: writeSource(t, dir, 1500, 48000),
		Output:    device.NewWAVPlayback(outPath, 48000),
	})
	if err != nil {
		t.Fatal(err)
	}
	a.Store().SetVolume(2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Run returned by timeout instead of end of input")
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if want := int64(encode.WAVHeaderSize + 1500*2); info.Size() != want {
		t.Errorf("expected output size %d, got %d", want, info.Size())
	}

	saved, err := preset.Load(settings.Preset.Path)
	if err != nil {
		t.Fatalf("autosaved preset: %v", err)
	}
	if saved.Volume != 2 {
		t.Errorf("expected autosaved volume 2, got %v", saved.Volume)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	settings := testSettings(dir)
	settings.Preset.Autosave = false

	a, err := New(Config{
		Settings:  settings,
		InputFile: writeSource(t, dir, 48000*30, 48000),
		Realtime:  true,
		Output:    device.NewWAVPlayback(filepath.Join(dir, "out.wav"), 48000),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if _, err := os.Stat(settings.Preset.Path); !os.IsNotExist(err) {
		t.Error("preset must not be written when autosave is off")
	}
}

// fakeSession blocks in Wait until Quit is called
type fakeSession struct {
	quit chan struct{}
	once sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{quit: make(chan struct{})}
}

func (f *fakeSession) Wait() error {
	<-f.quit
	return nil
}

func (f *fakeSession) Quit() {
	f.once.Do(func() { close(f.quit) })
}

func runTUIAsync(a *App, ctx context.Context, s session) <-chan error {
	done := make(chan error, 1)
	go func() { done <- a.runTUI(ctx, s) }()
	return done
}

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("TUI run did not return")
	}
	return nil
}

func TestRunTUIEndsOnCancel(t *testing.T) {
	a := &App{stopped: make(chan error, 1)}
	s := newFakeSession()

	ctx, cancel := context.WithCancel(context.Background())
	done := runTUIAsync(a, ctx, s)
	cancel()

	if err := waitRun(t, done); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	select {
	case <-s.quit:
	default:
		t.Error("expected the TUI to be told to quit")
	}
}

func TestRunTUIEndsWhenEngineStops(t *testing.T) {
	a := &App{stopped: make(chan error, 1)}
	s := newFakeSession()

	done := runTUIAsync(a, context.Background(), s)
	a.stopped <- errors.New("capture device lost")

	err := waitRun(t, done)
	if err == nil || err.Error() != "capture device lost" {
		t.Errorf("expected engine error to surface, got %v", err)
	}
}

func TestRunTUIUserQuit(t *testing.T) {
	a := &App{stopped: make(chan error, 1)}
	s := newFakeSession()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runTUIAsync(a, ctx, s)
	s.Quit()

	if err := waitRun(t, done); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if ctx.Err() != nil {
		t.Error("context must stay live when the user quits")
	}
}
