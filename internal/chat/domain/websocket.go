package domain

import "encoding/json"

// Event websocket event name
type Event string

const (
	// EventAuth client → server, must be the first frame
	EventAuth Event = "auth"
	// EventAuthenticated server → client, auth accepted
	EventAuthenticated Event = "authenticated"
	// EventError server → client, data is a string
	EventError Event = "error"
	// EventNewMessage server → client, a message was appended
	EventNewMessage Event = "new_message"
	// EventThreadUpdate server → client, thread level change
	EventThreadUpdate Event = "thread_update"
)

const (
	// ErrNoToken auth frame without credential
	ErrNoToken = "No token provided"
	// ErrUserNotFound credential subject no longer exists
	ErrUserNotFound = "User not found"
	// ErrInvalidToken credential failed verification
	ErrInvalidToken = "Invalid token"
	// ErrNotAuthenticated frame received before auth
	ErrNotAuthenticated = "Not authenticated"
	// ErrUnknownEvent unsupported client event
	ErrUnknownEvent = "Unknown event"
)

// ClientFrame client → server frame
type ClientFrame struct {
	Event Event             `json:"event"`
	Args  []json.RawMessage `json:"args,omitempty"`
}

// StringArg decode args[i] as a string, "" when absent
func (f ClientFrame) StringArg(i int) string {
	if i >= len(f.Args) {
		return ""
	}
	var s string
	if err := json.Unmarshal(f.Args[i], &s); err != nil {
		return ""
	}
	return s
}

// Envelope server → client frame
type Envelope struct {
	Event Event       `json:"event"`
	Data  interface{} `json:"data"`
}

// RawEnvelope envelope with undecoded data, used by clients
type RawEnvelope struct {
	Event Event           `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Authenticated payload of the authenticated event
type Authenticated struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// NewMessagePayload payload of the new_message event
type NewMessagePayload struct {
	ThreadID string      `json:"threadId"`
	Message  MessageView `json:"message"`
}

// ThreadUpdate payload of the thread_update event
type ThreadUpdate struct {
	ThreadID   string           `json:"threadId"`
	UpdateType ThreadUpdateType `json:"updateType"`
	UserID     string           `json:"userId,omitempty"`
	Username   string           `json:"username,omitempty"`
	MessageID  string           `json:"messageId,omitempty"`
	Thread     *Thread          `json:"thread,omitempty"`
}
