// ABOUTME: Tests for monitor protocol framing
// ABOUTME: Verifies binary audio chunk layout
package protocol

import "testing"

func TestAudioChunkLayout(t *testing.T) {
	chunk := CreateAudioChunk(0x0102030405060708, []byte{0xaa, 0xbb})

	if len(chunk) != AudioChunkHeaderSize+2 {
		t.Fatalf("expected %d bytes, got %d", AudioChunkHeaderSize+2, len(chunk))
	}
	if chunk[0] != AudioChunkMessageType {
		t.Errorf("expected type byte %d, got %d", AudioChunkMessageType, chunk[0])
	}
	if chunk[1] != 0x01 || chunk[8] != 0x08 {
		t.Errorf("expected big-endian timestamp, got % x", chunk[1:9])
	}

	ts, payload, ok := ParseAudioChunk(chunk)
	if !ok || ts != 0x0102030405060708 || len(payload) != 2 || payload[1] != 0xbb {
		t.Errorf("parse mismatch: ts=%x payload=%v ok=%v", ts, payload, ok)
	}
}

func TestParseAudioChunkRejectsShortOrForeign(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{AudioChunkMessageType, 0, 0}},
		{"wrong type", append([]byte{9}, make([]byte, 8)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := ParseAudioChunk(tt.data); ok {
				t.Error("expected rejection")
			}
		})
	}
}
