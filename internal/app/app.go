// ABOUTME: Main application orchestration
// ABOUTME: Wires devices, the engine, presets, the remote monitor and the TUI together
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/micamp/micamp-go/internal/config"
	"github.com/micamp/micamp-go/internal/preset"
	"github.com/micamp/micamp-go/internal/remote"
	"github.com/micamp/micamp-go/internal/ui"
	"github.com/micamp/micamp-go/pkg/audio/device"
	"github.com/micamp/micamp-go/pkg/engine"
)

// Config holds application configuration
type Config struct {
	Settings *config.Config

	// InputFile replaces the microphone with a decoded file
	InputFile string

	// Realtime paces file input at the playback rate
	Realtime bool

	// Record arms recording as soon as the engine starts
	Record bool

	UseTUI bool
	Debug  bool

	// Input and Output override the configured devices when set
	Input  device.Capture
	Output device.Playback
}

// App is a running MicAmp instance
type App struct {
	config Config
	store  *preset.Store
	engine *engine.Engine
	remote *remote.Server
	tui    *ui.TUI

	malgoCtx  *device.Context
	inputName string
	stopped   chan error
}

// New loads the preset and prepares the store. Devices open in Run.
func New(cfg Config) (*App, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("app needs settings")
	}

	p, err := loadPreset(cfg.Settings.Preset.Path)
	if err != nil {
		return nil, err
	}
	store, err := preset.NewStore(p)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", cfg.Settings.Preset.Path, err)
	}

	return &App{
		config:  cfg,
		store:   store,
		stopped: make(chan error, 1),
	}, nil
}

// loadPreset reads path, falling back to the factory preset when it does not exist
func loadPreset(path string) (*preset.Preset, error) {
	if path == "" {
		return preset.Default(), nil
	}
	p, err := preset.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("No preset at %s, using defaults", path)
		return preset.Default(), nil
	}
	return p, err
}

// Store exposes the live control state
func (a *App) Store() *preset.Store {
	return a.store
}

// Run starts everything and blocks until the user quits, ctx is
// cancelled or the input ends
func (a *App) Run(ctx context.Context) error {
	if err := a.openDevices(); err != nil {
		a.closeBackend()
		return err
	}
	defer a.closeBackend()

	settings := a.config.Settings

	a.engine = engine.New(engine.Config{
		Input:               a.config.Input,
		Output:              a.config.Output,
		Controls:            a.store.Controls(),
		SampleRate:          settings.Audio.SampleRate,
		RecordDir:           settings.Recording.Directory,
		QueueDepth:          settings.Recording.QueueChunks,
		Debug:               a.config.Debug,
		OnVisualizerFrame:   a.onVisualizerFrame,
		OnRecordingProgress: a.onRecordingProgress,
		OnRecordingSaved:    a.onRecordingSaved,
		OnRecordingError:    a.onRecordingError,
		OnStopped:           a.onStopped,
		Tap:                 a.tap,
	})

	// Everything the callbacks touch exists before the engine starts
	if settings.Remote.Enabled {
		a.remote = remote.New(remote.Config{
			Port:       settings.Remote.Port,
			Name:       settings.Remote.Name,
			EnableMDNS: settings.Remote.MDNS,
			Codec:      settings.Remote.Codec,
			Debug:      a.config.Debug,
		}, a.store, a.engine)
	}
	if a.config.UseTUI {
		tui, err := ui.Run(a.store, a.engine)
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		a.tui = tui
	}

	if err := a.engine.Start(); err != nil {
		return err
	}
	defer a.engine.Stop()

	if a.config.Record {
		a.engine.SetRecording(true)
	}

	monitor := ""
	if a.remote != nil {
		if err := a.remote.Start(a.engine.SampleRate()); err != nil {
			log.Printf("Remote monitor disabled: %v", err)
		} else {
			defer a.remote.Stop()
			monitor = fmt.Sprintf("port %d", settings.Remote.Port)
		}
	}

	var runErr error
	if a.tui != nil {
		go a.tui.Send(ui.StatusMsg{
			Device:     a.inputName,
			SampleRate: a.engine.SampleRate(),
			Monitor:    monitor,
		})
		runErr = a.runTUI(ctx, a.tui)
	} else {
		select {
		case <-ctx.Done():
		case runErr = <-a.stopped:
		}
	}

	if settings.Preset.Autosave && settings.Preset.Path != "" {
		if err := a.store.Preset().Save(settings.Preset.Path); err != nil {
			log.Printf("Failed to save preset: %v", err)
		}
	}
	return runErr
}

// session is the interactive front end Run blocks in
type session interface {
	Wait() error
	Quit()
}

// runTUI blocks in the TUI until the user quits, ctx is cancelled or the
// engine stops on its own
func (a *App) runTUI(ctx context.Context, t session) error {
	userQuit := make(chan struct{})
	reason := make(chan error, 1)

	go func() {
		select {
		case <-ctx.Done():
			reason <- nil
		case err := <-a.stopped:
			reason <- err
		case <-userQuit:
			reason <- nil
			return
		}
		t.Quit()
	}()

	err := t.Wait()
	close(userQuit)
	if stopErr := <-reason; err == nil {
		err = stopErr
	}
	return err
}

// openDevices builds the configured backends for any device not supplied
func (a *App) openDevices() error {
	audioCfg := a.config.Settings.Audio

	if a.config.Input == nil && a.config.InputFile != "" {
		a.config.Input = device.NewFileCapture(a.config.InputFile, a.config.Realtime)
		a.inputName = filepath.Base(a.config.InputFile)
	}

	needMalgo := a.config.Input == nil || (a.config.Output == nil && audioCfg.Backend == "malgo")
	if needMalgo {
		ctx, err := device.NewContext()
		if err != nil {
			return err
		}
		a.malgoCtx = ctx
	}

	if a.config.Input == nil {
		info, err := a.malgoCtx.FindDevice(device.DirCapture, audioCfg.InputDevice)
		if err != nil {
			return err
		}
		a.config.Input = device.NewMalgoCapture(a.malgoCtx, info, audioCfg.PeriodMs)
		a.inputName = "default"
		if info != nil {
			a.inputName = info.Name
		}
	}

	if a.config.Output == nil {
		switch audioCfg.Backend {
		case "oto":
			a.config.Output = device.NewOtoPlayback(audioCfg.PeriodMs)
		default:
			info, err := a.malgoCtx.FindDevice(device.DirPlayback, audioCfg.OutputDevice)
			if err != nil {
				return err
			}
			a.config.Output = device.NewMalgoPlayback(a.malgoCtx, info, audioCfg.PeriodMs)
		}
	}

	if a.inputName == "" {
		a.inputName = "input"
	}
	return nil
}

func (a *App) closeBackend() {
	if a.malgoCtx != nil {
		a.malgoCtx.Close()
		a.malgoCtx = nil
	}
}

func (a *App) tap(samples []int16) {
	if a.remote != nil {
		a.remote.Tap(samples)
	}
}

func (a *App) send(msg interface{}) {
	if a.tui != nil {
		a.tui.Send(msg)
	}
}

func (a *App) onVisualizerFrame(frame []float32) {
	a.send(ui.VisualizerMsg(frame))
	if a.remote != nil {
		a.remote.PublishVisualizer(frame)
	}
}

func (a *App) onRecordingProgress(seconds int64) {
	a.send(ui.ProgressMsg(seconds))
	if a.remote != nil {
		a.remote.PublishProgress(seconds)
	}
}

func (a *App) onRecordingSaved(path string) {
	log.Printf("Recording saved: %s", path)
	a.send(ui.SavedMsg(path))
	if a.remote != nil {
		a.remote.PublishSaved(path)
	}
}

func (a *App) onRecordingError(err error) {
	log.Printf("Recording failed: %v", err)
	a.send(ui.RecordingErrorMsg{Err: err})
	if a.remote != nil {
		a.remote.PublishError(err)
	}
}

func (a *App) onStopped(err error) {
	if err != nil {
		log.Printf("Engine stopped: %v", err)
	}
	a.send(ui.StoppedMsg{Err: err})
	if a.remote != nil {
		a.remote.PublishState()
	}
	select {
	case a.stopped <- err:
	default:
	}
}
