package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageKind definition message type
type MessageKind string

const (
	// MessageText normal message
	MessageText MessageKind = "text"
	// MessageSystem system notice
	MessageSystem MessageKind = "system"
	// MessageJoin synthetic join notice
	MessageJoin MessageKind = "join"
	// MessageLeave synthetic leave notice
	MessageLeave MessageKind = "leave"
)

const (
	// MaxContentLength message content limit
	MaxContentLength = 2000
	// DeletedPlaceholder content shown for a soft deleted message
	DeletedPlaceholder = "[deleted]"

	// JoinContent content of a join message
	JoinContent = "joined the chat"
	// LeaveContent content of a leave message
	LeaveContent = "left the chat"
)

// ReadReceipt a member who has read the message
type ReadReceipt struct {
	UserID string    `bson:"userId" json:"userId"`
	ReadAt time.Time `bson:"readAt" json:"readAt"`
}

// Message 表示一則聊天訊息
type Message struct {
	ID        string        `bson:"_id" json:"id"`
	ThreadID  string        `bson:"threadId" json:"threadId"`
	SenderID  string        `bson:"senderId" json:"senderId"`
	Content   string        `bson:"content" json:"content"`
	Kind      MessageKind   `bson:"messageType" json:"messageType"`
	IsEdited  bool          `bson:"isEdited" json:"isEdited"`
	EditedAt  *time.Time    `bson:"editedAt,omitempty" json:"editedAt,omitempty"`
	ReplyTo   string        `bson:"replyTo,omitempty" json:"replyTo,omitempty"`
	ReadBy    []ReadReceipt `bson:"readBy" json:"readBy"`
	IsDeleted bool          `bson:"isDeleted" json:"isDeleted"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// IsReadBy userID has a receipt
func (m *Message) IsReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// MarkReadBy append a receipt once per user, report whether it was added
func (m *Message) MarkReadBy(userID string, at time.Time) bool {
	if m.IsReadBy(userID) {
		return false
	}
	m.ReadBy = append(m.ReadBy, ReadReceipt{UserID: userID, ReadAt: at})
	return true
}

// CountsAsUnreadFor the message is unread for userID given its read cursor
func (m *Message) CountsAsUnreadFor(userID string, lastReadAt time.Time) bool {
	return !m.IsDeleted && m.SenderID != userID && m.CreatedAt.After(lastReadAt)
}

// Redacted copy safe to show, deleted content replaced by the placeholder
func (m Message) Redacted() Message {
	if m.IsDeleted {
		m.Content = DeletedPlaceholder
		m.ReplyTo = ""
	}
	return m
}

// NormalizeContent trim and validate message content
func NormalizeContent(content string) (string, bool) {
	content = strings.TrimSpace(content)
	return content, content != "" && len([]rune(content)) <= MaxContentLength
}

// NewMessageID time ordered id (UUIDv7), ties on createdAt sort by insertion order
func NewMessageID() string {
	return uuid.Must(uuid.NewV7()).String()
}
