// ABOUTME: Malgo-based capture and playback devices
// ABOUTME: Uses miniaudio via malgo with ring buffers between callbacks and the engine
package device

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gen2brain/malgo"
)

// Direction selects capture or playback devices
type Direction int

const (
	DirCapture Direction = iota
	DirPlayback
)

func (d Direction) String() string {
	if d == DirCapture {
		return "capture"
	}
	return "playback"
}

func (d Direction) malgoType() malgo.DeviceType {
	if d == DirCapture {
		return malgo.Capture
	}
	return malgo.Playback
}

// Info describes a device reported by the platform
type Info struct {
	Name    string
	Default bool
	id      malgo.DeviceID
}

// Context owns the malgo context shared by every malgo device
type Context struct {
	malgoCtx *malgo.AllocatedContext
	mu       sync.Mutex
}

// NewContext initializes the audio backend
func NewContext() (*Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	return &Context{malgoCtx: ctx}, nil
}

// Devices lists the devices for a direction
func (c *Context) Devices(dir Direction) ([]Info, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.malgoCtx == nil {
		return nil, ErrClosed
	}

	infos, err := c.malgoCtx.Devices(dir.malgoType())
	if err != nil {
		return nil, fmt.Errorf("failed to list %s devices: %w", dir, err)
	}

	devices := make([]Info, 0, len(infos))
	for i := range infos {
		devices = append(devices, Info{
			Name:    infos[i].Name(),
			Default: infos[i].IsDefault != 0,
			id:      infos[i].ID,
		})
	}
	return devices, nil
}

// FindDevice returns the first device whose name contains name (case-insensitive).
// An empty name selects the platform default and returns nil.
func (c *Context) FindDevice(dir Direction, name string) (*Info, error) {
	if name == "" {
		return nil, nil
	}

	devices, err := c.Devices(dir)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	for i := range devices {
		if strings.Contains(strings.ToLower(devices[i].Name), needle) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("no %s device matching %q", dir, name)
}

// Close releases the malgo context
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.malgoCtx == nil {
		return nil
	}
	if err := c.malgoCtx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	c.malgoCtx.Free()
	c.malgoCtx = nil
	return nil
}

func (c *Context) initDevice(cfg malgo.DeviceConfig, callbacks malgo.DeviceCallbacks) (*malgo.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.malgoCtx == nil {
		return nil, ErrClosed
	}
	return malgo.InitDevice(c.malgoCtx.Context, cfg, callbacks)
}

// malgoDevice holds the parts shared by malgo capture and playback
type malgoDevice struct {
	ctx      *Context
	info     *Info
	periodMs int
	device   *malgo.Device
	ring     *RingBuffer
	mu       sync.Mutex
}

func (m *malgoDevice) config(dir Direction, sampleRate, bufferBytes int) malgo.DeviceConfig {
	cfg := malgo.DefaultDeviceConfig(dir.malgoType())
	if dir == DirCapture {
		cfg.Capture.Format = malgo.FormatS16
		cfg.Capture.Channels = 1
		if m.info != nil {
			cfg.Capture.DeviceID = m.info.id.Pointer()
		}
	} else {
		cfg.Playback.Format = malgo.FormatS16
		cfg.Playback.Channels = 1
		if m.info != nil {
			cfg.Playback.DeviceID = m.info.id.Pointer()
		}
	}
	cfg.SampleRate = uint32(sampleRate)
	cfg.PeriodSizeInFrames = uint32(bufferBytes / 2)
	cfg.Alsa.NoMMap = 1
	return cfg
}

// start initializes and starts the device, must hold m.mu
func (m *malgoDevice) start(dir Direction, sampleRate, bufferBytes int, data malgo.DataProc) error {
	if m.device != nil {
		return fmt.Errorf("%s device already open", dir)
	}

	// Ring holds 500ms or four periods, whichever is larger
	capacity := sampleRate / 2
	if c := bufferBytes * 2; c > capacity {
		capacity = c
	}
	m.ring = NewRingBuffer(capacity)

	device, err := m.ctx.initDevice(m.config(dir, sampleRate, bufferBytes), malgo.DeviceCallbacks{Data: data})
	if err != nil {
		return fmt.Errorf("failed to initialize %s device: %w", dir, err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("failed to start %s device: %w", dir, err)
	}

	m.device = device
	log.Printf("Audio %s initialized: %dHz mono, %d byte periods (malgo)", dir, sampleRate, bufferBytes)
	return nil
}

func (m *malgoDevice) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ring != nil {
		m.ring.Close()
	}
	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
	}
	return nil
}

func (m *malgoDevice) buffer() *RingBuffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ring
}

// MalgoCapture records from a malgo capture device
type MalgoCapture struct {
	malgoDevice
	scratch []int16
}

// NewMalgoCapture creates a capture device. info may be nil for the default device.
func NewMalgoCapture(ctx *Context, info *Info, periodMs int) *MalgoCapture {
	return &MalgoCapture{malgoDevice: malgoDevice{ctx: ctx, info: info, periodMs: periodMs}}
}

// Open starts capturing
func (c *MalgoCapture) Open(sampleRate, bufferBytes int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start(DirCapture, sampleRate, bufferBytes, c.dataCallback)
}

// dataCallback is called by malgo with captured frames
func (c *MalgoCapture) dataCallback(_, pInput []byte, frameCount uint32) {
	n := int(frameCount)
	if n*2 > len(pInput) {
		n = len(pInput) / 2
	}
	if cap(c.scratch) < n {
		c.scratch = make([]int16, n)
	}
	samples := c.scratch[:n]
	for i := range samples {
		samples[i] = int16(uint16(pInput[i*2]) | uint16(pInput[i*2+1])<<8)
	}

	// Overruns drop the newest samples
	c.ring.Write(samples)
}

// Read blocks until captured samples are available
func (c *MalgoCapture) Read(samples []int16) (int, error) {
	ring := c.buffer()
	if ring == nil {
		return 0, ErrNotOpen
	}
	return ring.ReadBlocking(samples)
}

// MinBufferBytes returns the configured period size in bytes
func (c *MalgoCapture) MinBufferBytes(sampleRate int) int {
	return periodBytes(sampleRate, c.periodMs)
}

// Close stops the device
func (c *MalgoCapture) Close() error {
	return c.close()
}

// MalgoPlayback plays through a malgo playback device
type MalgoPlayback struct {
	malgoDevice
	scratch []int16
}

// NewMalgoPlayback creates a playback device. info may be nil for the default device.
func NewMalgoPlayback(ctx *Context, info *Info, periodMs int) *MalgoPlayback {
	return &MalgoPlayback{malgoDevice: malgoDevice{ctx: ctx, info: info, periodMs: periodMs}}
}

// Open starts playback
func (p *MalgoPlayback) Open(sampleRate, bufferBytes int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.start(DirPlayback, sampleRate, bufferBytes, p.dataCallback)
}

// dataCallback is called by malgo to fill the audio output buffer
func (p *MalgoPlayback) dataCallback(pOutput, _ []byte, frameCount uint32) {
	n := int(frameCount)
	if n*2 > len(pOutput) {
		n = len(pOutput) / 2
	}
	if cap(p.scratch) < n {
		p.scratch = make([]int16, n)
	}
	samples := p.scratch[:n]
	p.ring.Read(samples)

	for i, s := range samples {
		pOutput[i*2] = byte(s)
		pOutput[i*2+1] = byte(uint16(s) >> 8)
	}
}

// Write queues samples, blocking while the ring buffer is full
func (p *MalgoPlayback) Write(samples []int16) (int, error) {
	ring := p.buffer()
	if ring == nil {
		return 0, ErrNotOpen
	}
	return ring.WriteBlocking(samples)
}

// MinBufferBytes returns the configured period size in bytes
func (p *MalgoPlayback) MinBufferBytes(sampleRate int) int {
	return periodBytes(sampleRate, p.periodMs)
}

// NativeSampleRate probes the device with the rate left to the platform
func (p *MalgoPlayback) NativeSampleRate() int {
	cfg := p.config(DirPlayback, 0, 0)
	cfg.PeriodSizeInFrames = 0

	probe, err := p.ctx.initDevice(cfg, malgo.DeviceCallbacks{})
	if err != nil {
		log.Printf("Warning: could not probe playback sample rate: %v", err)
		return 0
	}
	defer probe.Uninit()
	return int(probe.SampleRate())
}

// Close stops the device
func (p *MalgoPlayback) Close() error {
	return p.close()
}
