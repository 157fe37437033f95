package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sockbridge/sockbridge-go/pkg/interfaces"
	"github.com/sockbridge/sockbridge-go/protocols/websocket"
	"github.com/sockbridge/sockbridge-go/utils"
)

// DefaultReconnectDelay is how long the adapter waits before retrying
// a failed connection attempt.
const DefaultReconnectDelay = 3000 * time.Millisecond

// TransportFactory builds a transport handle from the effective URL and
// the opaque option map.
type TransportFactory func(url string, options map[string]any) interfaces.Transport

// Client owns one logical connection to a remote messaging endpoint.
// It bridges the transport's lifecycle notifications to registered
// callbacks, appends token auth to the connection URL and retries
// failed connection attempts. At most one live transport handle exists
// per client.
type Client struct {
	mu             sync.Mutex
	id             string
	config         Config
	token          string
	factory        TransportFactory
	transport      interfaces.Transport
	registry       *callbackRegistry
	strategy       utils.ReconnectStrategy
	reconnectTimer *time.Timer
	ctx            context.Context
	cancelFunc     context.CancelFunc
	logger         *slog.Logger
}

type Option func(*Client)

// WithTransportFactory replaces the default websocket transport.
func WithTransportFactory(f TransportFactory) Option {
	return func(c *Client) {
		c.factory = f
	}
}

// WithReconnectStrategy replaces the default fixed-delay retry timing.
func WithReconnectStrategy(s utils.ReconnectStrategy) Option {
	return func(c *Client) {
		c.strategy = s
	}
}

// NewClient creates a connection adapter for the configured endpoint.
func NewClient(cfg Config, log *slog.Logger, opts ...Option) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}
	cfg.applyDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		id:         uuid.NewString(),
		config:     cfg,
		token:      cfg.Server.Token,
		factory:    defaultTransportFactory,
		registry:   newCallbackRegistry(),
		strategy:   utils.NewFixedDelay(DefaultReconnectDelay),
		ctx:        ctx,
		cancelFunc: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.With("client_id", c.id)
	return c, nil
}

func defaultTransportFactory(rawURL string, options map[string]any) interfaces.Transport {
	return websocket.New(rawURL, options)
}

// ID returns the adapter instance identifier.
func (c *Client) ID() string {
	return c.id
}

// Connect opens the underlying connection, storing token for later
// reconnects when non-empty. A previous handle is released before the
// new one is acquired. Failures are not returned to the caller; they
// surface through the transport's connect_error notification and the
// reconnect cycle.
func (c *Client) Connect(token string) {
	c.mu.Lock()
	if token != "" {
		c.token = token
	}
	old := c.transport
	c.transport = nil
	c.mu.Unlock()

	if old != nil {
		if err := old.Disconnect(); err != nil {
			c.logger.Warn("Failed to close previous connection", "error", err)
		}
	}

	c.mu.Lock()
	target := appendToken(c.config.Server.URL, c.token)
	transport := c.factory(target, c.config.Server.Options)
	transport.On(interfaces.EventConnect, c.handleConnect)
	transport.On(interfaces.EventDisconnect, c.handleDisconnect)
	transport.On(interfaces.EventError, c.handleError)
	transport.On(interfaces.EventConnectError, c.handleConnectError)
	c.transport = transport
	ctx := c.ctx
	endpoint := c.config.Server.URL
	c.mu.Unlock()

	c.logger.Info("Connecting to server", "url", endpoint)
	if err := transport.Connect(ctx); err != nil {
		c.logger.Error("Failed to connect to server", "error", err)
	}
}

// Disconnect closes the connection, resets every lifecycle callback
// sequence and cancels a pending reconnect. No-op without a handle.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	if c.transport == nil {
		c.mu.Unlock()
		return
	}
	transport := c.transport
	c.transport = nil
	c.registry.clear()
	c.mu.Unlock()

	c.logger.Info("Disconnecting from server")
	if err := transport.Disconnect(); err != nil {
		c.logger.Error("Failed to close connection", "error", err)
	}
}

// Send forwards an application event to the server. Dropped silently
// when no connection handle exists.
func (c *Client) Send(event string, payload any) {
	c.mu.Lock()
	transport := c.transport
	c.mu.Unlock()

	if transport == nil {
		c.logger.Debug("Dropping outgoing event, not connected", "event", event)
		return
	}
	if err := transport.Emit(event, payload); err != nil {
		c.logger.Error("Failed to emit event", "event", event, "error", err)
	}
}

// Receive registers handler directly with the underlying transport for
// an application-defined event. No-op when no connection handle exists.
func (c *Client) Receive(event string, handler interfaces.EventHandler) {
	c.mu.Lock()
	transport := c.transport
	c.mu.Unlock()

	if transport == nil {
		c.logger.Debug("Dropping receive registration, not connected", "event", event)
		return
	}
	transport.On(event, handler)
}

// On appends cb to the callback sequence for a lifecycle event.
// Unrecognized event names are ignored.
func (c *Client) On(event LifecycleEvent, cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.add(event, cb)
}

// Off removes every registration of cb for a lifecycle event.
func (c *Client) Off(event LifecycleEvent, cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.remove(event, cb)
}

// SetOptions merges opts into the stored option map, new keys winning.
// When connected, the current handle is cycled so the merged options
// take effect on the next connection. Lifecycle callbacks survive the
// cycle.
func (c *Client) SetOptions(opts map[string]any) {
	c.mu.Lock()
	if c.config.Server.Options == nil {
		c.config.Server.Options = make(map[string]any, len(opts))
	}
	for key, value := range opts {
		c.config.Server.Options[key] = value
	}
	connected := c.transport != nil
	token := c.token
	c.mu.Unlock()

	if !connected {
		return
	}
	c.logger.Info("Options changed, cycling connection")
	c.Connect(token)
}

// IsConnected reports whether a connection handle exists.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport != nil
}

// Close permanently shuts the adapter down; no reconnect will be
// attempted afterwards.
func (c *Client) Close() error {
	c.cancelFunc()
	c.Disconnect()
	return nil
}

func (c *Client) handleConnect(_ any) {
	c.logger.Info("Connected to server")
	c.mu.Lock()
	c.strategy.Reset()
	callbacks := c.registry.snapshot(EventConnect)
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb(nil)
	}
}

func (c *Client) handleDisconnect(payload any) {
	c.logger.Info("Disconnected from server", "reason", payload)
	c.mu.Lock()
	callbacks := c.registry.snapshot(EventDisconnect)
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb(nil)
	}
}

func (c *Client) handleError(payload any) {
	err := asError(payload)
	c.logger.Error("Connection error", "error", err)
	c.mu.Lock()
	callbacks := c.registry.snapshot(EventError)
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb(err)
	}
}

func (c *Client) handleConnectError(payload any) {
	c.logger.Error("Connection attempt failed", "error", payload)
	c.scheduleReconnect()
}

// scheduleReconnect arms a single retry using the stored token. An
// already pending timer wins, so repeated connect failures never stack
// attempts.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reconnectTimer != nil {
		return
	}
	select {
	case <-c.ctx.Done():
		return
	default:
	}

	delay := c.strategy.NextDelay()
	c.logger.Info("Scheduling reconnect", "delay", delay)
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		token := c.token
		c.mu.Unlock()
		c.Connect(token)
	})
}

// appendToken adds the auth token as a query parameter, respecting an
// existing query string.
func appendToken(base, token string) string {
	if token == "" {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}

func asError(payload any) error {
	switch v := payload.(type) {
	case error:
		return v
	case nil:
		return ErrConnectionLost
	default:
		return fmt.Errorf("%v", v)
	}
}
