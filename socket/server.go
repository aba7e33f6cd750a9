package socket

import (
	"context"
	"log"
	"time"

	"raksha_server/services"

	socketio "github.com/googollee/go-socket.io"
)

// globalRoom collects every authenticated connection, so samples without a
// session still fan out to all other peers (degraded global mode).
const globalRoom = "global"

// JoinSessionPayload is the client -> server join_session event.
type JoinSessionPayload struct {
	SessionCode string `json:"sessionCode"`
}

// LocationUpdatePayload is the client -> server locationUpdate event.
type LocationUpdatePayload struct {
	User      string  `json:"user"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
	Session   string  `json:"session"`
}

// OutboundLocation is the rebroadcast shape delivered to room peers.
type OutboundLocation struct {
	User      string  `json:"user"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
	Session   string  `json:"session,omitempty"`
}

// LocationAck is the exactly-once reply to a locationUpdate that supplied an
// acknowledgement callback. Persistence failure surfaces only through DBError;
// the overall status stays "ok" once the broadcast happened.
type LocationAck struct {
	Status  string `json:"status"`
	Ts      int64  `json:"ts,omitempty"`
	DBID    string `json:"dbId,omitempty"`
	DBError string `json:"dbError,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSocketServer initializes the realtime surface: handshake authentication,
// session rooms, and live coordinate fan-out.
func NewSocketServer(auth *services.AuthService, locations *services.LocationService) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		u := c.URL()
		token := u.Query().Get("token")
		authUser, err := auth.Authenticate(context.Background(), token)
		if err != nil {
			log.Printf("socket auth rejected %s: %v", c.ID(), err)
			return err
		}
		c.SetContext(authUser)
		c.Join(globalRoom)
		log.Printf("⚡ socket connected: %s user=%s method=%s", c.ID(), authUser.User, authUser.Method)
		c.Emit("server:hello", map[string]interface{}{
			"message":  "welcome",
			"id":       c.ID(),
			"authUser": authUser,
		})
		return nil
	})

	server.OnEvent("/", "join_session", func(c socketio.Conn, payload JoinSessionPayload) {
		if payload.SessionCode == "" {
			log.Printf("socket %s sent empty sessionCode for join_session", c.ID())
			return
		}
		c.Join(payload.SessionCode)
		log.Printf("socket %s joined room %s", c.ID(), payload.SessionCode)
	})

	server.OnEvent("/", "locationUpdate", func(c socketio.Conn, payload LocationUpdatePayload) LocationAck {
		user := payload.User
		if user == "" {
			if authUser, ok := c.Context().(*services.AuthUser); ok {
				user = authUser.User
			}
		}
		if user == "" {
			user = "unknown"
		}

		if err := services.ValidatePoint(payload.Latitude, payload.Longitude); err != nil {
			log.Printf("locationUpdate from %s rejected: %v", c.ID(), err)
			return LocationAck{Status: "error", Error: "invalid_coords"}
		}

		ts := payload.Timestamp
		if ts == "" {
			ts = time.Now().UTC().Format(time.RFC3339)
		}

		out := OutboundLocation{
			User:      user,
			Latitude:  payload.Latitude,
			Longitude: payload.Longitude,
			Timestamp: ts,
			Session:   payload.Session,
		}
		room := payload.Session
		if room == "" {
			room = globalRoom
		}
		emitToRoomExcept(server, room, c.ID(), "locationUpdate", out)

		dbID, err := locations.SaveLocation(context.Background(), user, payload.Latitude, payload.Longitude, ts, payload.Session)
		if err != nil {
			log.Printf("db save failed for locationUpdate: %v", err)
			return LocationAck{Status: "ok", Ts: time.Now().UnixMilli(), DBError: err.Error()}
		}
		return LocationAck{Status: "ok", Ts: time.Now().UnixMilli(), DBID: dbID}
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		id := "unknown"
		if c != nil {
			id = c.ID()
		}
		log.Printf("socket error %s: %v", id, err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Printf("❌ socket disconnected: %s reason=%s", c.ID(), reason)
	})

	return server
}

// emitToRoomExcept delivers an event to every room member but the sender.
// At-most-once, best-effort: peers not currently connected never see it.
func emitToRoomExcept(server *socketio.Server, room, senderID, event string, payload interface{}) {
	server.ForEach("/", room, func(c socketio.Conn) {
		if c.ID() == senderID {
			return
		}
		c.Emit(event, payload)
	})
}

// Broadcaster adapts the socket server to the services.Broadcaster
// capability, replacing any ambient server handle.
type Broadcaster struct {
	Server *socketio.Server
}

func (b *Broadcaster) BroadcastToRoom(room, event string, payload interface{}) {
	b.Server.BroadcastToRoom("/", room, event, payload)
}
