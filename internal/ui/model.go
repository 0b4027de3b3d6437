// ABOUTME: Bubbletea model for the MicAmp TUI
// ABOUTME: Renders the waveform, chain and recording state and maps keys to controls
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/micamp/micamp-go/internal/preset"
	"github.com/micamp/micamp-go/pkg/effects"
)

// waveLevels are the glyphs for a column's amplitude, quietest first
var waveLevels = []rune(" ▁▂▃▄▅▆▇█")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	waveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	enabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	recStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Faint(true)
)

// Recorder is the engine surface the TUI drives
type Recorder interface {
	SetRecording(on bool)
	Recording() bool
}

// Model represents the TUI state
type Model struct {
	store    *preset.Store
	recorder Recorder

	// Audio
	device     string
	sampleRate int
	points     []float32

	// Chain cursor, an index into the current order
	cursor int

	// Recording
	recording  bool
	recSeconds int64
	lastSaved  string
	lastErr    string

	// Status
	monitor  string
	stopped  bool
	quitting bool

	// Dimensions
	width  int
	height int
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case VisualizerMsg:
		m.points = msg
	case ProgressMsg:
		m.recSeconds = int64(msg)
	case SavedMsg:
		m.recording = false
		m.recSeconds = 0
		m.lastSaved = string(msg)
		m.lastErr = ""
	case RecordingErrorMsg:
		m.recording = false
		m.recSeconds = 0
		m.lastErr = msg.Err.Error()
	case StoppedMsg:
		m.stopped = true
		m.recording = false
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
		}
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderWave())
	b.WriteString(m.renderVolume())
	b.WriteString(m.renderChain())
	b.WriteString(m.renderRecording())
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MicAmp"))
	if m.store != nil {
		b.WriteString(valueStyle.Render("  preset: " + m.store.Name()))
	}
	b.WriteString("\n")

	status := "running"
	if m.stopped {
		status = "stopped"
	}
	b.WriteString(headerStyle.Render("Audio: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%s %dHz mono (%s)", m.device, m.sampleRate, status)))
	b.WriteString("\n")

	if m.monitor != "" {
		b.WriteString(headerStyle.Render("Monitor: "))
		b.WriteString(valueStyle.Render(m.monitor))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// renderWave draws one column per visualizer point
func (m Model) renderWave() string {
	if len(m.points) == 0 {
		return valueStyle.Render("(no signal)") + "\n\n"
	}

	width := len(m.points)
	if m.width > 0 && m.width < width {
		width = m.width
	}

	cols := make([]rune, width)
	for i := range cols {
		v := m.points[i*len(m.points)/width]
		if v < 0 {
			v = -v
		}
		if v > 1 {
			v = 1
		}
		cols[i] = waveLevels[int(v*float32(len(waveLevels)-1)+0.5)]
	}
	return waveStyle.Render(string(cols)) + "\n\n"
}

func (m Model) renderVolume() string {
	var vol float32
	if m.store != nil {
		vol = m.store.Snapshot().Volume
	}
	steps := int(preset.MaxVolume / preset.VolumeStep)
	bar := renderBar(int(vol/preset.VolumeStep+0.5), steps, steps*2)
	return headerStyle.Render("Volume: ") +
		valueStyle.Render(fmt.Sprintf("[%s] %.1fx", bar, vol)) + "\n\n"
}

func (m Model) renderChain() string {
	if m.store == nil {
		return ""
	}
	snap := m.store.Snapshot()

	var b strings.Builder
	b.WriteString(headerStyle.Render("Chain"))
	b.WriteString("\n")
	for i, k := range snap.Order {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}

		box := "[ ]"
		style := disabledStyle
		if snap.Enabled[k] {
			box = "[x]"
			style = enabledStyle
		}

		b.WriteString(marker)
		b.WriteString(style.Render(fmt.Sprintf("%2d %s %-11s", i+1, box, k.Label())))
		b.WriteString(valueStyle.Render(" " + formatParams(k, snap.Params[k])))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderRecording() string {
	var b strings.Builder
	if m.recording {
		b.WriteString(recStyle.Render(fmt.Sprintf("● REC %s", formatDuration(m.recSeconds))))
		b.WriteString("\n")
	}
	if m.lastSaved != "" {
		b.WriteString(valueStyle.Render("Saved " + filepath.Base(m.lastSaved)))
		b.WriteString("\n")
	}
	if m.lastErr != "" {
		b.WriteString(errStyle.Render("Error: " + m.lastErr))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓:Select  space:Toggle  K/J:Move  +/-:Volume  r:Record  q:Quit") + "\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < effects.NumKinds-1 {
			m.cursor++
		}
	case " ", "space":
		if m.store != nil {
			m.store.Toggle(m.selected())
		}
	case "K":
		if m.store != nil && m.cursor > 0 {
			m.store.Move(m.selected(), -1)
			m.cursor--
		}
	case "J":
		if m.store != nil && m.cursor < effects.NumKinds-1 {
			m.store.Move(m.selected(), 1)
			m.cursor++
		}
	case "+", "=":
		if m.store != nil {
			m.store.AdjustVolume(preset.VolumeStep)
		}
	case "-", "_":
		if m.store != nil {
			m.store.AdjustVolume(-preset.VolumeStep)
		}
	case "r":
		if m.recorder != nil && !m.stopped {
			m.recording = !m.recorder.Recording()
			m.recorder.SetRecording(m.recording)
			if m.recording {
				m.recSeconds = 0
				m.lastErr = ""
			}
		}
	}

	return m, nil
}

// selected returns the effect under the cursor
func (m Model) selected() effects.Kind {
	return m.store.Snapshot().Order[m.cursor]
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Device != "" {
		m.device = msg.Device
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
	}
	if msg.Monitor != "" {
		m.monitor = msg.Monitor
	}
}

// StatusMsg updates the header
type StatusMsg struct {
	Device     string
	SampleRate int
	Monitor    string
}

// VisualizerMsg carries one waveform frame
type VisualizerMsg []float32

// ProgressMsg carries elapsed recording seconds
type ProgressMsg int64

// SavedMsg carries the path of a finished recording
type SavedMsg string

// RecordingErrorMsg reports a failed recording
type RecordingErrorMsg struct{ Err error }

// StoppedMsg reports that the engine stopped
type StoppedMsg struct{ Err error }

// Utility functions
func renderBar(value, max, width int) string {
	if value > max {
		value = max
	}
	if value < 0 {
		value = 0
	}
	filled := (value * width) / max
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func formatParams(k effects.Kind, p effects.Params) string {
	names := effects.ParamNames(k)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.2f", name, p[i])
	}
	return strings.Join(parts, " ")
}

func formatDuration(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
