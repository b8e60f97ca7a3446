// Package realtime wraps the Socket.IO connection to the chat server: the
// inbound updated_model push stream and the outbound post_message and
// ping_user events.
package realtime

import (
	"fmt"
	"sync"
	"time"

	socket "github.com/zishang520/socket.io/clients/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/wrenchat/wren/pkg/logger"
)

const (
	// EventUpdatedModel is pushed by the server whenever a user or message
	// changes. Payload: {class: "User"|"Message", model: {...}}.
	EventUpdatedModel = "updated_model"
	// EventPostMessage is emitted by the client to post a message. Payload:
	// {source} plus the access token as a second argument.
	EventPostMessage = "post_message"
	// EventPingUser is emitted periodically with the access token to keep
	// the user marked online.
	EventPingUser = "ping_user"
)

// Client is the Socket.IO client connection.
type Client struct {
	serverURL string
	debug     bool

	mu        sync.RWMutex
	socket    *socket.Socket
	onUpdate  func(map[string]any)
	connected bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewClient creates a push channel client for the given server URL.
func NewClient(serverURL string, debug bool) *Client {
	return &Client{
		serverURL: serverURL,
		debug:     debug,
		done:      make(chan struct{}),
	}
}

// OnUpdatedModel registers the handler for updated_model pushes. The handler
// is invoked from the socket's event loop and must return quickly; the
// expected implementation just enqueues onto the app dispatcher.
func (c *Client) OnUpdatedModel(handler func(map[string]any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = handler
}

// Connect establishes the Socket.IO connection.
func (c *Client) Connect() error {
	if c.debug {
		logger.Debugf("connecting to Socket.IO at %s", c.serverURL)
	}

	opts := socket.DefaultOptions()
	opts.SetTransports(types.NewSet(socket.Polling, socket.WebSocket))

	sock, err := socket.Connect(c.serverURL, opts)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.mu.Lock()
	c.socket = sock
	c.mu.Unlock()

	sock.On(types.EventName("connect"), func(args ...any) {
		c.mu.Lock()
		c.connected = true
		c.mu.Unlock()
		if c.debug {
			logger.Debugf("Socket.IO connected, id=%s", sock.Id())
		}
	})

	sock.On(types.EventName("disconnect"), func(args ...any) {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		reason := ""
		if len(args) > 0 {
			if r, ok := args[0].(string); ok {
				reason = r
			}
		}
		if c.debug {
			logger.Debugf("Socket.IO disconnected: %s", reason)
		}
	})

	sock.On(types.EventName("connect_error"), func(args ...any) {
		if len(args) > 0 {
			logger.Warnf("Socket.IO connection error: %v", args[0])
		}
	})

	sock.On(types.EventName(EventUpdatedModel), func(args ...any) {
		var data map[string]any
		if len(args) > 0 {
			if m, ok := args[0].(map[string]any); ok {
				data = m
			}
		}

		c.mu.RLock()
		handler := c.onUpdate
		c.mu.RUnlock()

		if handler != nil {
			handler(data)
		}
	})

	return nil
}

// WaitForConnect waits for the socket to report connected or times out.
func (c *Client) WaitForConnect(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.IsConnected() {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return c.IsConnected()
}

// PostMessage sends a new message over the push channel. The server persists
// it and broadcasts the resulting updated_model to all clients, including
// this one; nothing is applied locally here.
func (c *Client) PostMessage(source, token string) error {
	return c.emit(EventPostMessage, map[string]any{"source": source}, token)
}

// PingUser announces the token to the server-side presence tracker. It
// implements the session package's Pinger.
func (c *Client) PingUser(token string) error {
	return c.emit(EventPingUser, token)
}

func (c *Client) emit(event string, args ...any) error {
	c.mu.RLock()
	sock := c.socket
	c.mu.RUnlock()

	if sock == nil {
		return fmt.Errorf("not connected")
	}
	if c.debug {
		logger.Tracef("emitting %s", event)
	}
	sock.Emit(event, args...)
	return nil
}

// IsConnected reports whether the client is connected.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	sock := c.socket
	connected := c.connected
	c.mu.RUnlock()

	if connected {
		return true
	}
	if sock != nil && sock.Connected() {
		c.mu.Lock()
		c.connected = true
		c.mu.Unlock()
		return true
	}
	return false
}

// Close shuts down the Socket.IO connection.
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.socket != nil {
		c.socket.Disconnect()
		c.socket = nil
	}
	c.connected = false
	return nil
}
