package domain

import "time"

// ActivityType kind of a chat activity record
type ActivityType string

const (
	// ActivityMessageCreated message appended
	ActivityMessageCreated ActivityType = "message.created"
	// ActivityMessageDeleted message soft deleted
	ActivityMessageDeleted ActivityType = "message.deleted"
	// ActivityThreadCreated thread created
	ActivityThreadCreated ActivityType = "thread.created"
	// ActivityThreadJoined participant joined
	ActivityThreadJoined ActivityType = "thread.joined"
	// ActivityThreadLeft participant left
	ActivityThreadLeft ActivityType = "thread.left"
)

// Activity record published to downstream consumers
type Activity struct {
	Type       ActivityType `json:"type"`
	ThreadID   string       `json:"threadId"`
	ThreadType ThreadKind   `json:"threadType,omitempty"`
	MessageID  string       `json:"messageId,omitempty"`
	UserID     string       `json:"userId"`
	At         time.Time    `json:"at"`
}
