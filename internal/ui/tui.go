// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and forwards engine events into it
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/micamp/micamp-go/internal/preset"
)

// NewModel creates a new TUI model
func NewModel(store *preset.Store, recorder Recorder) Model {
	return Model{
		store:    store,
		recorder: recorder,
		device:   "default",
	}
}

// TUI owns the running program
type TUI struct {
	program *tea.Program
}

// Run creates the program; call Wait to drive it
func Run(store *preset.Store, recorder Recorder) (*TUI, error) {
	p := tea.NewProgram(NewModel(store, recorder), tea.WithAltScreen())
	return &TUI{program: p}, nil
}

// Wait runs the program until the user quits
func (t *TUI) Wait() error {
	_, err := t.program.Run()
	return err
}

// Send delivers msg to the model. Safe from any goroutine.
func (t *TUI) Send(msg tea.Msg) {
	t.program.Send(msg)
}

// Quit asks the program to exit
func (t *TUI) Quit() {
	t.program.Quit()
}
