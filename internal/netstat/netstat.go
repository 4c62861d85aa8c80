// Package netstat reports the network connection state of the host.
//
// Provisioning of network credentials is done by the operating system, through a hotspot on an
// access point interface; this package only observes it.
package netstat

import (
	"fmt"
	"net"
)

// Messages returned by [Monitor.ConnectivityMessage].
const (
	MessageNoInterface = "NO NET"
	MessageNoAddress   = "NO IP"
)

// InterfaceSource lists the network interfaces of the host.
type InterfaceSource func() ([]Interface, error)

// Interface is the part of a network interface the monitor looks at.
type Interface struct {
	Name     string
	Up       bool
	Loopback bool
	Addrs    int
}

// Monitor observes the network interfaces.
type Monitor struct {
	// Name restricts the monitor to one interface, such as wlan0.
	Name string

	// AccessPoint is the hotspot interface, such as uap0, that is up while network
	// credentials are being provisioned. It never counts as a connection.
	AccessPoint string

	interfaces InterfaceSource
}

// New returns a monitor of the named interface, or of all interfaces if name is empty.
func New(name string) *Monitor {
	return &Monitor{Name: name, interfaces: hostInterfaces}
}

func hostInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("netstat: %s: %w", iface.Name, err)
		}
		out = append(out, Interface{
			Name:     iface.Name,
			Up:       iface.Flags&net.FlagUp != 0,
			Loopback: iface.Flags&net.FlagLoopback != 0,
			Addrs:    len(addrs),
		})
	}
	return out, nil
}

func (m *Monitor) state() (up, addressed bool) {
	ifaces, err := m.interfaces()
	if err != nil {
		return false, false
	}
	for _, iface := range ifaces {
		if iface.Loopback || iface.Name == m.AccessPoint || (m.Name != "" && iface.Name != m.Name) {
			continue
		}
		if iface.Up {
			up = true
			if iface.Addrs > 0 {
				addressed = true
			}
		}
	}
	return
}

// IsConnected reports if an interface is up and has an address.
func (m *Monitor) IsConnected() bool {
	_, addressed := m.state()
	return addressed
}

// IsProvisioning reports if the access point interface is up.
func (m *Monitor) IsProvisioning() bool {
	if m.AccessPoint == "" {
		return false
	}
	ifaces, err := m.interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Name == m.AccessPoint {
			return iface.Up
		}
	}
	return false
}

// ConnectivityMessage is a short text describing why the network is not connected.
func (m *Monitor) ConnectivityMessage() (string, bool) {
	up, addressed := m.state()
	switch {
	case addressed:
		return "", false
	case up:
		return MessageNoAddress, true
	default:
		return MessageNoInterface, true
	}
}
