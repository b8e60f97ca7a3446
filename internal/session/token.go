// Package session owns the client's authentication state: the current access
// token, change notifications for everything that depends on it, and the
// liveness ping loop that keeps the server-side presence tracker informed.
package session

import (
	"sync"
	"time"

	"github.com/wrenchat/wren/internal/periodic"
	"github.com/wrenchat/wren/pkg/logger"
)

// Pinger announces a token to the server-side presence tracker.
type Pinger interface {
	PingUser(token string) error
}

// Manager holds the current access token.
//
// The manager is a two-state machine: Unauthenticated (empty token) and
// Authenticated (non-empty token). Every transition fires the registered
// change listeners exactly once; setting the same value again is a no-op.
//
// While authenticated the manager keeps exactly one liveness loop running.
// The loop is identified by reference, not by token value, so an old loop is
// always the one cancelled even if the same token string reappears.
type Manager struct {
	pinger   Pinger
	interval time.Duration

	mu        sync.Mutex
	token     string
	listeners []func(token string)
	loop      *periodic.Task
}

// NewManager creates a token manager that pings through the given pinger at
// the given interval while authenticated.
func NewManager(pinger Pinger, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Manager{pinger: pinger, interval: interval}
}

// OnChange registers a listener invoked on every state transition with the
// new token value (empty when unauthenticated). Listeners are invoked
// synchronously from the goroutine driving the transition.
func (m *Manager) OnChange(fn func(token string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Token returns the current token, or the empty string when unauthenticated.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Authenticated reports whether a token is currently held.
func (m *Manager) Authenticated() bool { return m.Token() != "" }

// SetToken transitions to the given token. An empty token means
// Unauthenticated. Setting the current value again does nothing, so repeated
// clears from concurrent 401s notify at most once.
func (m *Manager) SetToken(token string) {
	m.mu.Lock()
	if token == m.token {
		m.mu.Unlock()
		return
	}
	m.token = token

	oldLoop := m.loop
	m.loop = nil
	if token != "" {
		m.loop = m.startLiveness(token)
	}
	listeners := make([]func(string), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	if oldLoop != nil {
		oldLoop.Stop()
	}
	if token != "" {
		// First ping goes out immediately; the loop covers the rest.
		m.ping(token)
	}
	for _, fn := range listeners {
		fn(token)
	}
}

// Clear transitions to Unauthenticated.
func (m *Manager) Clear() { m.SetToken("") }

// Close stops the liveness loop without firing a state transition.
func (m *Manager) Close() {
	m.mu.Lock()
	loop := m.loop
	m.loop = nil
	m.mu.Unlock()
	if loop != nil {
		loop.Stop()
	}
}

func (m *Manager) startLiveness(token string) *periodic.Task {
	return periodic.Start(m.interval, func() { m.ping(token) })
}

func (m *Manager) ping(token string) {
	if m.pinger == nil {
		return
	}
	if err := m.pinger.PingUser(token); err != nil {
		logger.Warnf("liveness ping failed: %v", err)
	}
}

// livenessActive reports whether a liveness loop is currently running.
func (m *Manager) livenessActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loop != nil
}
