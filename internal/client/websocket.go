// ABOUTME: WebSocket client for a remote MicAmp monitor
// ABOUTME: Handles connection, the server hello and message routing
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/micamp/micamp-go/internal/protocol"
)

// Config holds client configuration
type Config struct {
	// URL of the monitor endpoint, e.g. ws://host:8927/monitor
	URL   string
	Debug bool
}

// Client represents a monitor connection
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Hello is the server greeting received by Connect
	Hello protocol.ServerHello

	// Message channels
	AudioChunks chan AudioChunk
	States      chan protocol.State
	Events      chan Event

	// State
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// AudioChunk represents a timestamped audio frame
type AudioChunk struct {
	Timestamp int64  // Microseconds from stream start
	Data      []byte // Encoded audio
}

// Event is a visualizer, recording or error notification
type Event struct {
	Type       string
	Visualizer []float32
	Seconds    int64
	Path       string
	Error      string
}

// NewClient creates a new monitor client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:      config,
		AudioChunks: make(chan AudioChunk, 100),
		States:      make(chan protocol.State, 10),
		Events:      make(chan Event, 100),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Connect dials the monitor and waits for server/hello
func (c *Client) Connect() error {
	log.Printf("Connecting to %s", c.config.URL)

	conn, _, err := websocket.DefaultDialer.Dial(c.config.URL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()
	return nil
}

// handshake reads the server greeting
func (c *Client) handshake() error {
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read server/hello: %w", err)
	}
	c.conn.SetReadDeadline(time.Time{})

	var msg struct {
		Type    string               `json:"type"`
		Payload protocol.ServerHello `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("failed to parse server/hello: %w", err)
	}
	if msg.Type != protocol.TypeServerHello {
		return fmt.Errorf("expected %s, got %s", protocol.TypeServerHello, msg.Type)
	}
	if msg.Payload.Version != protocol.Version {
		return fmt.Errorf("unsupported protocol version %d", msg.Payload.Version)
	}

	c.Hello = msg.Payload
	log.Printf("Connected to %s (%s, %s %dHz)", c.Hello.Name, c.Hello.Software,
		c.Hello.Format.Codec, c.Hello.Format.SampleRate)
	return nil
}

// SendControl sends a control/set message
func (c *Client) SendControl(ctl protocol.ControlSet) error {
	return c.sendJSON(protocol.Message{
		Type:    protocol.TypeControlSet,
		Payload: ctl,
	})
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.IsConnected() {
				log.Printf("Read error: %v", err)
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			c.handleBinaryMessage(data)
		case websocket.TextMessage:
			c.handleJSONMessage(data)
		}
	}
}

// handleBinaryMessage handles audio chunks, dropping them when the
// consumer falls behind
func (c *Client) handleBinaryMessage(data []byte) {
	ts, payload, ok := protocol.ParseAudioChunk(data)
	if !ok {
		log.Printf("Invalid binary message of %d bytes", len(data))
		return
	}

	select {
	case c.AudioChunks <- AudioChunk{Timestamp: ts, Data: payload}:
	default:
		if c.config.Debug {
			log.Printf("[DEBUG] Dropped audio chunk at %dus", ts)
		}
	}
}

// handleJSONMessage routes JSON messages
func (c *Client) handleJSONMessage(data []byte) {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Failed to parse JSON message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeState:
		var state protocol.State
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			log.Printf("Bad state message: %v", err)
			return
		}
		select {
		case c.States <- state:
		case <-c.ctx.Done():
		}

	case protocol.TypeVisualizer:
		var v protocol.Visualizer
		json.Unmarshal(msg.Payload, &v)
		c.emit(Event{Type: msg.Type, Visualizer: v.Points}, true)

	case protocol.TypeRecordingProgress:
		var p protocol.RecordingProgress
		json.Unmarshal(msg.Payload, &p)
		c.emit(Event{Type: msg.Type, Seconds: p.Seconds}, true)

	case protocol.TypeRecordingSaved:
		var s protocol.RecordingSaved
		json.Unmarshal(msg.Payload, &s)
		c.emit(Event{Type: msg.Type, Path: s.Path}, false)

	case protocol.TypeRecordingError:
		var e protocol.RecordingError
		json.Unmarshal(msg.Payload, &e)
		c.emit(Event{Type: msg.Type, Error: e.Error}, false)

	case protocol.TypeServerError:
		var e protocol.ServerError
		json.Unmarshal(msg.Payload, &e)
		c.emit(Event{Type: msg.Type, Error: e.Message}, false)

	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// emit delivers an event. Droppable events never block the reader.
func (c *Client) emit(ev Event, droppable bool) {
	if droppable {
		select {
		case c.Events <- ev:
		default:
		}
		return
	}
	select {
	case c.Events <- ev:
	case <-c.ctx.Done():
	}
}

// Done is closed when the connection ends
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
