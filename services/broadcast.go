package services

// Broadcaster pushes an event to every current member of a room. The socket
// package provides the real implementation; services receive it at
// construction instead of reaching for an ambient server handle.
type Broadcaster interface {
	BroadcastToRoom(room, event string, payload interface{})
}

// NoopBroadcaster discards every broadcast. Used when no realtime surface is
// attached (tests, offline tools).
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastToRoom(string, string, interface{}) {}
