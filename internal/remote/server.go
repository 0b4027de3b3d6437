// ABOUTME: WebSocket monitor and control server
// ABOUTME: Streams engine audio and state to clients and applies their control messages
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/micamp/micamp-go/internal/discovery"
	"github.com/micamp/micamp-go/internal/preset"
	"github.com/micamp/micamp-go/internal/protocol"
	"github.com/micamp/micamp-go/internal/version"
	"github.com/micamp/micamp-go/pkg/effects"
)

const (
	sendBufferSize = 100
	tapBufferSize  = 32
	writeDeadline  = 10 * time.Second
	pingInterval   = 30 * time.Second
)

// Controller is the part of the engine the server drives
type Controller interface {
	SetRecording(on bool)
	Recording() bool
	Running() bool
}

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
	Codec      string // "pcm" or "opus"
	Debug      bool
}

// Server is the remote monitor
type Server struct {
	config   Config
	serverID string
	store    *preset.Store
	ctrl     Controller

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server
	mux        *http.ServeMux
	listener   net.Listener

	// Client management
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// Audio streaming
	format  protocol.AudioFormat
	stream  *stream
	tapChan chan []int16

	// mDNS discovery
	mdnsManager *discovery.Manager

	// Control
	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client represents a connected monitor
type Client struct {
	ID         string
	RemoteAddr string
	Conn       *websocket.Conn

	// Output channel for messages
	sendChan chan interface{}
}

// New creates a monitor server for store and ctrl
func New(config Config, store *preset.Store, ctrl Controller) *Server {
	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		store:    store,
		ctrl:     ctrl,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local network tool, accept any origin but make it visible
				origin := r.Header.Get("Origin")
				if origin != "" && origin != "http://localhost" && origin != "http://127.0.0.1" {
					log.Printf("Warning: accepting WebSocket from origin: %s", origin)
				}
				return true
			},
		},
		clients:  make(map[string]*Client),
		tapChan:  make(chan []int16, tapBufferSize),
		stopChan: make(chan struct{}),
	}
	s.mux.HandleFunc(discovery.MonitorPath, s.handleWebSocket)

	store.OnChange(func(effects.Snapshot) { s.PublishState() })
	return s
}

// Handler exposes the HTTP routes
func (s *Server) Handler() http.Handler {
	return s.mux
}

// StartStream prepares the audio encoder for the engine's sample rate
func (s *Server) StartStream(sampleRate int) error {
	st, err := newStream(s.config.Codec, sampleRate)
	if err != nil {
		return err
	}
	s.stream = st
	s.format = st.format

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.encodeLoop()
	}()
	return nil
}

// Start begins streaming, listening and advertising. It does not block.
func (s *Server) Start(sampleRate int) error {
	if err := s.StartStream(sampleRate); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.Stop()
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{Handler: s.mux}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
		}
	}()
	log.Printf("Monitor listening on %s%s (%s)", ln.Addr(), discovery.MonitorPath, s.format.Codec)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Codec:       s.format.Codec,
		})
		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		}
	}
	return nil
}

// Addr returns the listening address, empty before Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts everything down and waits for goroutines
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.shutdownMu.Lock()
		s.isShutdown = true
		s.shutdownMu.Unlock()

		close(s.stopChan)

		if s.mdnsManager != nil {
			s.mdnsManager.Stop()
		}

		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
			}
		}

		// Hijacked connections are not closed by Shutdown
		s.clientsMu.RLock()
		for _, c := range s.clients {
			c.Conn.Close()
		}
		s.clientsMu.RUnlock()

		s.wg.Wait()
		if s.stream != nil {
			s.stream.close()
		}
		log.Printf("Monitor stopped")
	})
}

// ClientCount returns the number of connected monitors
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Tap receives processed engine audio. It never blocks; chunks are
// dropped when the encoder falls behind.
func (s *Server) Tap(samples []int16) {
	// Clients only connect after the stream is set up
	if s.ClientCount() == 0 || s.stream == nil {
		return
	}
	chunk := append([]int16(nil), samples...)
	select {
	case s.tapChan <- chunk:
	default:
	}
}

// encodeLoop turns tapped chunks into binary frames for every client
func (s *Server) encodeLoop() {
	for {
		select {
		case <-s.stopChan:
			return
		case chunk := <-s.tapChan:
			s.stream.push(chunk, s.broadcastBinary)
		}
	}
}

// PublishVisualizer sends a waveform frame to every client
func (s *Server) PublishVisualizer(frame []float32) {
	s.broadcast(protocol.TypeVisualizer, protocol.Visualizer{Points: frame})
}

// PublishProgress sends recording progress
func (s *Server) PublishProgress(seconds int64) {
	s.broadcast(protocol.TypeRecordingProgress, protocol.RecordingProgress{Seconds: seconds})
}

// PublishSaved announces a finished recording
func (s *Server) PublishSaved(path string) {
	s.broadcast(protocol.TypeRecordingSaved, protocol.RecordingSaved{Path: path})
	s.PublishState()
}

// PublishError announces a failed recording
func (s *Server) PublishError(err error) {
	s.broadcast(protocol.TypeRecordingError, protocol.RecordingError{Error: err.Error()})
	s.PublishState()
}

// PublishState sends the full live state to every client
func (s *Server) PublishState() {
	s.broadcast(protocol.TypeState, s.state())
}

func (s *Server) state() protocol.State {
	p := s.store.Preset()
	st := protocol.State{
		Preset:  p.Name,
		Volume:  p.Volume,
		Order:   p.Order,
		Effects: make(map[string]protocol.EffectState, len(p.Effects)),
	}
	if s.ctrl != nil {
		st.Running = s.ctrl.Running()
		st.Recording = s.ctrl.Recording()
	}
	for name, e := range p.Effects {
		st.Effects[name] = protocol.EffectState{Enabled: e.Enabled, Params: e.Params}
	}
	return st
}

func (s *Server) broadcast(msgType string, payload interface{}) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if err := s.sendMessage(c, msgType, payload); err != nil && s.config.Debug {
			log.Printf("[DEBUG] Dropped %s for %s: %v", msgType, c.ID, err)
		}
	}
}

func (s *Server) broadcastBinary(data []byte) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if err := s.sendBinary(c, data); err != nil && s.config.Debug {
			log.Printf("[DEBUG] Dropped audio for %s: %v", c.ID, err)
		}
	}
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New monitor connection from %s", r.RemoteAddr)
	s.handleConnection(conn, r.RemoteAddr)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn, remoteAddr string) {
	defer conn.Close()

	client := &Client{
		ID:         uuid.New().String(),
		RemoteAddr: remoteAddr,
		Conn:       conn,
		sendChan:   make(chan interface{}, sendBufferSize),
	}

	// Register unless shutting down
	s.shutdownMu.RLock()
	if s.isShutdown {
		s.shutdownMu.RUnlock()
		log.Printf("Rejecting connection during shutdown")
		return
	}
	s.clientsMu.Lock()
	s.clients[client.ID] = client
	s.clientsMu.Unlock()
	s.wg.Add(1)
	s.shutdownMu.RUnlock()

	writerDone := make(chan struct{})
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		close(client.sendChan)
		s.clientsMu.Unlock()
		<-writerDone
		s.wg.Done()
		log.Printf("Monitor disconnected: %s", client.ID)
	}()

	hello := protocol.ServerHello{
		ServerID: s.serverID,
		ClientID: client.ID,
		Name:     s.config.Name,
		Software: version.String(),
		Version:  protocol.Version,
		Format:   s.format,
	}
	s.sendMessage(client, protocol.TypeServerHello, hello)
	s.sendMessage(client, protocol.TypeState, s.state())

	go func() {
		defer close(writerDone)
		s.clientWriter(client)
	}()

	// Read messages from client
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		s.handleClientMessage(client, data)
	}
}

// clientWriter sends messages to the client
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			switch v := msg.(type) {
			case []byte:
				client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := client.Conn.WriteMessage(websocket.BinaryMessage, v); err != nil {
					log.Printf("Error writing binary message: %v", err)
					client.Conn.Close()
					drain(client.sendChan)
					return
				}
			default:
				data, err := json.Marshal(v)
				if err != nil {
					log.Printf("Error marshaling message: %v", err)
					continue
				}
				client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Printf("Error writing text message: %v", err)
					client.Conn.Close()
					drain(client.sendChan)
					return
				}
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				client.Conn.Close()
				drain(client.sendChan)
				return
			}
		}
	}
}

// drain discards queued messages until the channel is closed
func drain(ch <-chan interface{}) {
	for range ch {
	}
}

// handleClientMessage processes messages from clients
func (s *Server) handleClientMessage(client *Client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeControlSet:
		if err := s.handleControlSet(msg.Payload); err != nil {
			log.Printf("Rejected control from %s: %v", client.ID, err)
			s.sendMessage(client, protocol.TypeServerError, protocol.ServerError{
				Error:   "invalid_control",
				Message: err.Error(),
			})
		}
	default:
		log.Printf("Unknown message type: %s", msg.Type)
	}
}

// handleControlSet applies a control/set payload to the store and engine
func (s *Server) handleControlSet(payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	var ctl protocol.ControlSet
	if err := json.Unmarshal(raw, &ctl); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	if (ctl.Enabled != nil || len(ctl.Params) > 0) && ctl.Effect == "" {
		return fmt.Errorf("enabled and params need an effect")
	}

	if ctl.Effect != "" {
		k, err := effects.ParseKind(ctl.Effect)
		if err != nil {
			return err
		}
		for name := range ctl.Params {
			if _, err := effects.ParamIndex(k, name); err != nil {
				return err
			}
		}
		if ctl.Enabled != nil {
			if err := s.store.SetEnabled(k, *ctl.Enabled); err != nil {
				return err
			}
		}
		for name, v := range ctl.Params {
			if err := s.store.SetParam(k, name, v); err != nil {
				return err
			}
		}
	}

	if ctl.Order != nil {
		order := make([]effects.Kind, 0, len(ctl.Order))
		for _, name := range ctl.Order {
			k, err := effects.ParseKind(name)
			if err != nil {
				return err
			}
			order = append(order, k)
		}
		s.store.SetOrder(order)
	}

	if ctl.Volume != nil {
		s.store.SetVolume(*ctl.Volume)
	}

	if ctl.Recording != nil && s.ctrl != nil {
		s.ctrl.SetRecording(*ctl.Recording)
		s.PublishState()
	}
	return nil
}

// sendMessage sends a JSON message to a client
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	select {
	case client.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

// sendBinary sends binary data to a client
func (s *Server) sendBinary(client *Client, data []byte) error {
	select {
	case client.sendChan <- data:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}
