package anki

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	DefaultHost    = "localhost"
	DefaultPort    = 8765
	DefaultVersion = 6
)

// Connection identifies one reachable automation endpoint. Immutable once
// constructed.
type Connection struct {
	Host    string
	Port    int
	Version int
}

// NewConnection fills empty fields with the endpoint's stock defaults.
func NewConnection(host string, port, version int) Connection {
	if strings.TrimSpace(host) == "" {
		host = DefaultHost
	}
	if port <= 0 {
		port = DefaultPort
	}
	if version <= 0 {
		version = DefaultVersion
	}
	return Connection{Host: host, Port: port, Version: version}
}

func (c Connection) Endpoint() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// The process-wide default descriptor. Reads and the check-and-set in
// Connect/TryConnect are serialized by defaultMu; the probe round trip
// itself runs outside the lock so a slow endpoint never blocks readers.
var (
	defaultMu   sync.RWMutex
	defaultConn *Connection
)

// Connect probes the candidate endpoint with one version round trip and, on
// success, installs it as the process-wide default. On failure the existing
// default is left untouched.
func Connect(ctx context.Context, host string, port, version int) error {
	conn := NewConnection(host, port, version)
	if err := probe(ctx, conn); err != nil {
		return fmt.Errorf("anki: connect %s: %w", conn.Endpoint(), err)
	}
	defaultMu.Lock()
	defaultConn = &conn
	defaultMu.Unlock()
	return nil
}

// TryConnect is Connect without the error: it reports false on any failure,
// logging the cause at debug level only. Meant for best-effort auto-connect
// at startup.
func TryConnect(ctx context.Context, host string, port, version int) bool {
	conn := NewConnection(host, port, version)
	if err := probe(ctx, conn); err != nil {
		log.Debug().Str("endpoint", conn.Endpoint()).Err(err).Msg("anki_try_connect_failed")
		return false
	}
	defaultMu.Lock()
	defaultConn = &conn
	defaultMu.Unlock()
	return true
}

// Current returns the active default descriptor, or ErrNotConnected when no
// Connect/TryConnect has succeeded yet.
func Current() (Connection, error) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if defaultConn == nil {
		return Connection{}, ErrNotConnected
	}
	return *defaultConn, nil
}

// Disconnect clears the process-wide default descriptor.
func Disconnect() {
	defaultMu.Lock()
	defaultConn = nil
	defaultMu.Unlock()
}

// probe performs one version round trip against the candidate descriptor and
// rejects endpoints that speak an older protocol than requested.
func probe(ctx context.Context, conn Connection) error {
	reported, err := New(conn).Version(ctx)
	if err != nil {
		return err
	}
	if reported < conn.Version {
		return fmt.Errorf("endpoint speaks protocol version %d, need %d", reported, conn.Version)
	}
	return nil
}
