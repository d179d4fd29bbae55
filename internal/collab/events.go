package collab

import "encoding/json"

// Envelope frames every event on the collaboration channel, both directions.
// Data is kept raw so relayed payloads pass through unmodified.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventCodeChange  = "code_change"
	EventSendMessage = "send_message"

	EventReceiveCodeChange = "receive_code_change"
	EventReceiveMessage    = "receive_message"
)

// roomTarget extracts only the room name from a relayed payload.
type roomTarget struct {
	Room string `json:"room"`
}
