// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager setup, TXT records and entry conversion
package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	mgr := NewManager(Config{
		ServiceName: "Test Amp",
		Port:        8927,
	})
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	mgr.Stop()
}

func TestTXTRecords(t *testing.T) {
	tests := []struct {
		name  string
		codec string
		want  []string
	}{
		{"path only", "", []string{"path=/monitor"}},
		{"with codec", "opus", []string{"path=/monitor", "codec=opus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewManager(Config{Codec: tt.codec}).txtRecords()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("record %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestToInstance(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "Studio._micamp._tcp.local.",
		Host:       "studio.local.",
		AddrV4:     net.IPv4(192, 168, 1, 20),
		Port:       8927,
		InfoFields: []string{"path=/monitor"},
	}

	inst := toInstance(entry)
	if inst.Host != "192.168.1.20" {
		t.Errorf("expected IPv4 host, got %s", inst.Host)
	}
	if inst.URL() != "ws://192.168.1.20:8927/monitor" {
		t.Errorf("unexpected URL %s", inst.URL())
	}

	entry.AddrV4 = nil
	if got := toInstance(entry).Host; got != "studio.local." {
		t.Errorf("expected hostname fallback, got %s", got)
	}
}
