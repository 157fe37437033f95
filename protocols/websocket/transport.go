// protocols/websocket/transport.go
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sockbridge/sockbridge-go/pkg/interfaces"
)

var _ interfaces.Transport = (*WSTransport)(nil)

// Message is the JSON envelope exchanged with the server. Application
// payloads travel in Data under a caller-defined event name.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type WSTransport struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	url       string
	opts      options
	handlers  map[string][]interfaces.EventHandler
	closeChan chan struct{}
	connected bool
}

// New builds a transport for url. The option map is the opaque bag the
// adapter passes through; recognized keys configure the dialer and
// unknown keys are ignored.
func New(rawURL string, rawOpts map[string]any) *WSTransport {
	return &WSTransport{
		url:      normalizeURL(rawURL),
		opts:     parseOptions(rawOpts),
		handlers: make(map[string][]interfaces.EventHandler),
	}
}

func (t *WSTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	if t.connected {
		t.mu.Unlock()
		return nil
	}
	dialer := websocket.Dialer{
		HandshakeTimeout:  t.opts.handshakeTimeout,
		EnableCompression: t.opts.compression,
		ReadBufferSize:    t.opts.readBufferSize,
		WriteBufferSize:   t.opts.writeBufferSize,
	}
	target := t.url
	headers := t.opts.headers
	t.mu.Unlock()

	conn, _, err := dialer.DialContext(ctx, target, headers)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", interfaces.ErrConnectionFailed, err)
		t.dispatch(interfaces.EventConnectError, wrapped)
		return wrapped
	}

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	closeChan := make(chan struct{})
	t.closeChan = closeChan
	t.mu.Unlock()

	go t.readPump(conn, closeChan)
	t.dispatch(interfaces.EventConnect, nil)
	return nil
}

func (t *WSTransport) readPump(conn *websocket.Conn, closeChan <-chan struct{}) {
	for {
		select {
		case <-closeChan:
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			wasConnected := t.connected
			t.connected = false
			t.conn = nil
			t.mu.Unlock()
			if wasConnected {
				t.dispatch(interfaces.EventDisconnect, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Event == "" {
			t.dispatch(interfaces.EventError, fmt.Errorf("%w: %s", interfaces.ErrInvalidFrame, data))
			continue
		}
		t.dispatch(msg.Event, msg.Data)
	}
}

func (t *WSTransport) Emit(event string, payload any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.connected || t.conn == nil {
		return interfaces.ErrConnectionFailed
	}

	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if t.opts.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.opts.writeTimeout)); err != nil {
			return err
		}
	}
	return t.conn.WriteMessage(websocket.TextMessage, data)
}

func (t *WSTransport) On(event string, handler interfaces.EventHandler) {
	if handler == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[event] = append(t.handlers[event], handler)
}

func (t *WSTransport) Disconnect() error {
	t.mu.Lock()
	if !t.connected || t.conn == nil {
		t.mu.Unlock()
		return nil
	}
	t.connected = false
	conn := t.conn
	t.conn = nil
	close(t.closeChan)
	t.mu.Unlock()

	// best effort close handshake before dropping the connection
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	err := conn.Close()
	t.dispatch(interfaces.EventDisconnect, nil)
	return err
}

func (t *WSTransport) dispatch(event string, payload any) {
	t.mu.Lock()
	handlers := make([]interfaces.EventHandler, len(t.handlers[event]))
	copy(handlers, t.handlers[event])
	t.mu.Unlock()

	for _, handler := range handlers {
		handler(payload)
	}
}
