// pkg/interfaces/transport.go
package interfaces

import (
	"context"
	"errors"
)

var (
	ErrConnectionFailed    = errors.New("connection failed")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrInvalidFrame        = errors.New("invalid frame")
)

// Reserved event names delivered by every Transport in addition to
// application-defined events. EventConnectError signals a failed
// connection attempt, as opposed to an error on an established
// connection.
const (
	EventConnect      = "connect"
	EventDisconnect   = "disconnect"
	EventError        = "error"
	EventConnectError = "connect_error"
)

// EventHandler receives the payload attached to an event. For the
// reserved error events the payload is an error value; for connect
// and disconnect it is nil.
type EventHandler func(payload any)

// Transport is the surface the adapter consumes from the underlying
// messaging library: open, subscribe, emit, close. Concrete
// implementations are built from a (url, options) pair by a factory.
type Transport interface {
	Connect(ctx context.Context) error
	Emit(event string, payload any) error
	On(event string, handler EventHandler)
	Disconnect() error
}
