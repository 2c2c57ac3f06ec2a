package model

import "fmt"

// Tunnel is a public endpoint exposing a port of a sandboxed process.
type Tunnel struct {
	Host            string
	Port            int
	UnencryptedHost string
	UnencryptedPort int
}

// URL returns the public HTTPS URL of the tunnel.
func (t Tunnel) URL() string {
	if t.Port == 443 {
		return fmt.Sprintf("https://%s", t.Host)
	}
	return fmt.Sprintf("https://%s:%d", t.Host, t.Port)
}

// TLSSocket returns the public TLS host and port.
func (t Tunnel) TLSSocket() (string, int) {
	return t.Host, t.Port
}

// TCPSocket returns the public unencrypted host and port.
func (t Tunnel) TCPSocket() (string, int, error) {
	if t.UnencryptedHost == "" {
		return "", 0, fmt.Errorf("tunnel is not configured for unencrypted TCP, use unencrypted ports: %w", ErrNotValid)
	}
	return t.UnencryptedHost, t.UnencryptedPort, nil
}
