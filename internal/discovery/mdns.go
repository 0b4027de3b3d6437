// ABOUTME: mDNS service discovery for the MicAmp remote monitor
// ABOUTME: Advertises the monitor endpoint and browses for other instances
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hashicorp/mdns"
)

const (
	// ServiceType is the advertised DNS-SD service
	ServiceType = "_micamp._tcp"

	// MonitorPath is the WebSocket endpoint announced in the TXT record
	MonitorPath = "/monitor"
)

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Codec       string
}

// Manager handles mDNS operations
type Manager struct {
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	instances chan *Instance
}

// Instance describes a discovered monitor
type Instance struct {
	Name string
	Host string
	Port int
	Info []string
}

// URL returns the monitor WebSocket URL
func (i *Instance) URL() string {
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(i.Host, fmt.Sprint(i.Port)), MonitorPath)
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		instances: make(chan *Instance, 10),
	}
}

// txtRecords describes the monitor to browsers
func (m *Manager) txtRecords() []string {
	txt := []string{"path=" + MonitorPath}
	if m.config.Codec != "" {
		txt = append(txt, "codec="+m.config.Codec)
	}
	return txt
}

// Advertise advertises the monitor via mDNS
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse continuously searches for monitors until Stop
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop repeats a three second query
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for entry := range entries {
				inst := toInstance(entry)
				log.Printf("Discovered monitor: %s at %s:%d", inst.Name, inst.Host, inst.Port)

				select {
				case m.instances <- inst:
				case <-m.ctx.Done():
				}
			}
		}()

		query(entries, 3*time.Second)
		close(entries)
		<-done
	}
}

// Instances returns the channel of discovered monitors
func (m *Manager) Instances() <-chan *Instance {
	return m.instances
}

// Stop stops advertising and browsing
func (m *Manager) Stop() {
	m.cancel()
}

// Discover runs a single query and returns what answered within timeout
func Discover(timeout time.Duration) ([]*Instance, error) {
	entries := make(chan *mdns.ServiceEntry, 32)
	var found []*Instance
	done := make(chan struct{})

	go func() {
		defer close(done)
		seen := make(map[string]bool)
		for entry := range entries {
			if seen[entry.Name] {
				continue
			}
			seen[entry.Name] = true
			found = append(found, toInstance(entry))
		}
	}()

	err := query(entries, timeout)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mdns query failed: %w", err)
	}
	return found, nil
}

func query(entries chan *mdns.ServiceEntry, timeout time.Duration) error {
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	return mdns.Query(params)
}

func toInstance(entry *mdns.ServiceEntry) *Instance {
	host := entry.Host
	if entry.AddrV4 != nil {
		host = entry.AddrV4.String()
	}
	return &Instance{
		Name: entry.Name,
		Host: host,
		Port: entry.Port,
		Info: entry.InfoFields,
	}
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
