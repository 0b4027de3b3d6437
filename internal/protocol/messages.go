// ABOUTME: Remote monitor message type definitions
// ABOUTME: Defines the JSON envelopes and binary audio framing used over WebSocket
package protocol

import "encoding/binary"

const (
	// Version of the monitor protocol
	Version = 1

	// AudioChunkMessageType tags binary audio frames
	AudioChunkMessageType = 1

	// AudioChunkHeaderSize is the type byte plus the big-endian timestamp
	AudioChunkHeaderSize = 9
)

// Message types
const (
	TypeServerHello       = "server/hello"
	TypeServerError       = "server/error"
	TypeState             = "state"
	TypeVisualizer        = "visualizer"
	TypeRecordingProgress = "recording/progress"
	TypeRecordingSaved    = "recording/saved"
	TypeRecordingError    = "recording/error"
	TypeControlSet        = "control/set"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// AudioFormat describes the binary audio stream
type AudioFormat struct {
	Codec      string `json:"codec"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bit_depth"`
	FrameMs    int    `json:"frame_ms"`
}

// ServerHello is sent to every client on connect
type ServerHello struct {
	ServerID string      `json:"server_id"`
	ClientID string      `json:"client_id"`
	Name     string      `json:"name"`
	Software string      `json:"software"`
	Version  int         `json:"version"`
	Format   AudioFormat `json:"format"`
}

// ServerError reports a rejected request
type ServerError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// EffectState is one effect as reported in State
type EffectState struct {
	Enabled bool               `json:"enabled"`
	Params  map[string]float32 `json:"params"`
}

// State is the full live configuration
type State struct {
	Preset    string                 `json:"preset"`
	Volume    float32                `json:"volume"`
	Running   bool                   `json:"running"`
	Recording bool                   `json:"recording"`
	Order     []string               `json:"order"`
	Effects   map[string]EffectState `json:"effects"`
}

// Visualizer carries one waveform frame
type Visualizer struct {
	Points []float32 `json:"points"`
}

// RecordingProgress reports elapsed recording time
type RecordingProgress struct {
	Seconds int64 `json:"seconds"`
}

// RecordingSaved reports a finished recording
type RecordingSaved struct {
	Path string `json:"path"`
}

// RecordingError reports a failed recording
type RecordingError struct {
	Error string `json:"error"`
}

// ControlSet changes live settings. Only present fields are applied;
// Enabled and Params apply to Effect.
type ControlSet struct {
	Volume    *float32           `json:"volume,omitempty"`
	Effect    string             `json:"effect,omitempty"`
	Enabled   *bool              `json:"enabled,omitempty"`
	Params    map[string]float32 `json:"params,omitempty"`
	Order     []string           `json:"order,omitempty"`
	Recording *bool              `json:"recording,omitempty"`
}

// CreateAudioChunk creates a binary audio chunk message
func CreateAudioChunk(timestamp int64, audioData []byte) []byte {
	// Binary format: [message_type:1][timestamp:8][audio_data:N]
	chunk := make([]byte, AudioChunkHeaderSize+len(audioData))
	chunk[0] = AudioChunkMessageType
	binary.BigEndian.PutUint64(chunk[1:9], uint64(timestamp))
	copy(chunk[AudioChunkHeaderSize:], audioData)
	return chunk
}

// ParseAudioChunk splits a binary audio chunk into timestamp and payload
func ParseAudioChunk(data []byte) (int64, []byte, bool) {
	if len(data) < AudioChunkHeaderSize || data[0] != AudioChunkMessageType {
		return 0, nil, false
	}
	return int64(binary.BigEndian.Uint64(data[1:9])), data[AudioChunkHeaderSize:], true
}
