package realtime

import "context"

// Events consumed from and emitted to the upstream realtime channel.
const (
	EventMessage             = "message"
	EventReceiveMessage      = "receive-message"
	EventReceiveNotification = "receive-notification"
	EventOnlineUsers         = "online-users"
	EventGetOnlineUsers      = "get-online-users"
)

// Handler receives the decoded event payload. Handlers are invoked
// sequentially on the transport's read loop and must not block.
type Handler func(payload interface{})

// Transport is the bidirectional event channel shared by the whole process.
// Connect and Disconnect belong to the Session connector alone; every other
// consumer only subscribes and unsubscribes. Delivery is at-least-once,
// unordered, possibly duplicated, with nothing guaranteed across disconnects.
type Transport interface {
	Connect(ctx context.Context, token string) error
	Disconnect()
	Connected() bool

	// On registers a handler and returns its unsubscribe function. Dropping
	// the function without calling it leaks the handler.
	On(event string, handler Handler) (off func())

	Emit(event string, payload interface{}) error
}
