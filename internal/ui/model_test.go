// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests key handling against a live store and engine event messages
package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/micamp/micamp-go/internal/preset"
	"github.com/micamp/micamp-go/pkg/effects"
)

type fakeRecorder struct {
	on bool
}

func (f *fakeRecorder) SetRecording(on bool) { f.on = on }
func (f *fakeRecorder) Recording() bool      { return f.on }

func newTestModel(t *testing.T) (Model, *preset.Store, *fakeRecorder) {
	t.Helper()
	store, err := preset.NewStore(preset.Default())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	rec := &fakeRecorder{}
	return NewModel(store, rec), store, rec
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestNewModel(t *testing.T) {
	model, _, _ := newTestModel(t)

	if model.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", model.cursor)
	}
	if model.recording {
		t.Error("expected recording to be false initially")
	}
	if model.stopped {
		t.Error("expected stopped to be false initially")
	}
}

func TestCursorBounds(t *testing.T) {
	model, _, _ := newTestModel(t)

	model = press(model, "up")
	if model.cursor != 0 {
		t.Errorf("cursor moved above the first effect: %d", model.cursor)
	}

	for i := 0; i < effects.NumKinds+3; i++ {
		model = press(model, "down")
	}
	if model.cursor != effects.NumKinds-1 {
		t.Errorf("expected cursor at last effect, got %d", model.cursor)
	}
}

func TestSpaceTogglesSelectedEffect(t *testing.T) {
	model, store, _ := newTestModel(t)

	first := store.Snapshot().Order[0]
	before := store.Snapshot().Enabled[first]

	press(model, " ")
	if store.Snapshot().Enabled[first] == before {
		t.Errorf("expected %s to toggle", first)
	}
}

func TestMoveKeysReorderChain(t *testing.T) {
	model, store, _ := newTestModel(t)

	first := store.Snapshot().Order[0]
	model = press(model, "J")
	if model.cursor != 1 {
		t.Errorf("expected cursor to follow the effect, got %d", model.cursor)
	}
	if got := store.Snapshot().Order[1]; got != first {
		t.Errorf("expected %s at position 1, got %s", first, got)
	}

	model = press(model, "K")
	if model.cursor != 0 || store.Snapshot().Order[0] != first {
		t.Error("expected K to move the effect back")
	}

	// K at the top is a no-op
	press(model, "K")
	if store.Snapshot().Order[0] != first {
		t.Error("K at the top must not reorder")
	}
}

func TestVolumeKeys(t *testing.T) {
	model, store, _ := newTestModel(t)

	press(model, "+")
	if got := store.Snapshot().Volume; got != 1.5 {
		t.Errorf("expected volume 1.5, got %v", got)
	}

	for i := 0; i < 5; i++ {
		press(model, "-")
	}
	if got := store.Snapshot().Volume; got != 0 {
		t.Errorf("expected volume clamped to 0, got %v", got)
	}
}

func TestRecordKey(t *testing.T) {
	model, _, rec := newTestModel(t)

	model = press(model, "r")
	if !rec.on || !model.recording {
		t.Fatal("expected recording armed")
	}

	next, _ := model.Update(ProgressMsg(65))
	model = next.(Model)
	if !strings.Contains(model.View(), "REC 01:05") {
		t.Error("expected elapsed time in view")
	}

	model = press(model, "r")
	if rec.on || model.recording {
		t.Error("expected recording disarmed")
	}
}

func TestRecordKeyIgnoredWhenStopped(t *testing.T) {
	model, _, rec := newTestModel(t)

	next, _ := model.Update(StoppedMsg{Err: errors.New("device lost")})
	model = next.(Model)
	model = press(model, "r")

	if rec.on {
		t.Error("record must not arm after the engine stopped")
	}
	if model.lastErr != "device lost" {
		t.Errorf("expected stop error shown, got %q", model.lastErr)
	}
}

func TestRecordingEvents(t *testing.T) {
	model, _, _ := newTestModel(t)
	model = press(model, "r")

	next, _ := model.Update(SavedMsg("/tmp/MicAmp_20240301_123045.wav"))
	model = next.(Model)
	if model.recording {
		t.Error("expected recording cleared after save")
	}
	if !strings.Contains(model.View(), "MicAmp_20240301_123045.wav") {
		t.Error("expected saved file name in view")
	}

	model = press(model, "r")
	next, _ = model.Update(RecordingErrorMsg{Err: errors.New("disk full")})
	model = next.(Model)
	if model.recording || model.lastErr != "disk full" {
		t.Errorf("unexpected state after error: recording=%v err=%q", model.recording, model.lastErr)
	}
}

func TestVisualizerFrameRendered(t *testing.T) {
	model, _, _ := newTestModel(t)

	frame := make([]float32, 100)
	frame[0] = 1
	next, _ := model.Update(VisualizerMsg(frame))
	model = next.(Model)

	if len(model.points) != 100 {
		t.Fatalf("expected 100 points, got %d", len(model.points))
	}
	if !strings.Contains(model.renderWave(), "█") {
		t.Error("expected full-scale column in waveform")
	}
}

func TestStatusMsg(t *testing.T) {
	model, _, _ := newTestModel(t)

	model.applyStatus(StatusMsg{Device: "USB Mic", SampleRate: 44100, Monitor: "ws://host:8927/monitor"})
	model.applyStatus(StatusMsg{})

	if model.device != "USB Mic" || model.sampleRate != 44100 || model.monitor == "" {
		t.Errorf("unexpected status: %s %d %s", model.device, model.sampleRate, model.monitor)
	}
}

func TestQuitKey(t *testing.T) {
	model, _, _ := newTestModel(t)

	next, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(Model).quitting {
		t.Error("expected quitting state")
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		want              string
	}{
		{0, 10, 4, "░░░░"},
		{5, 10, 4, "██░░"},
		{10, 10, 4, "████"},
		{20, 10, 4, "████"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, tt.max, tt.width); got != tt.want {
			t.Errorf("renderBar(%d, %d, %d) = %q, want %q", tt.value, tt.max, tt.width, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(3725); got != "62:05" {
		t.Errorf("expected 62:05, got %s", got)
	}
}
