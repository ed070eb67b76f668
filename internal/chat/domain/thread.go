package domain

import (
	"strings"
	"time"
)

// ThreadKind definition chat thread type
type ThreadKind string

const (
	// ThreadGlobal the single system wide thread, every member is implicitly in it
	ThreadGlobal ThreadKind = "global"
	// ThreadEvent one thread per event
	ThreadEvent ThreadKind = "event"
	// ThreadUserCreated thread opened by a member
	ThreadUserCreated ThreadKind = "user-created"
	// ThreadPrivate 1對1
	ThreadPrivate ThreadKind = "private"
)

// Valid check kind is known
func (k ThreadKind) Valid() bool {
	switch k {
	case ThreadGlobal, ThreadEvent, ThreadUserCreated, ThreadPrivate:
		return true
	}
	return false
}

const (
	// MaxTitleLength thread title limit
	MaxTitleLength = 100
	// MaxDescriptionLength thread description limit
	MaxDescriptionLength = 500

	// GlobalThreadTitle seeded global thread title
	GlobalThreadTitle = "Global Chat"
	// GlobalThreadDescription seeded global thread description
	GlobalThreadDescription = "Welcome to the TGSU global chat! Connect with all community members here."
	// PrivateThreadTitle private thread title
	PrivateThreadTitle = "Private Chat"
)

// Participant thread member with its read cursor
type Participant struct {
	UserID     string    `bson:"userId" json:"userId"`
	JoinedAt   time.Time `bson:"joinedAt" json:"joinedAt"`
	LastReadAt time.Time `bson:"lastReadAt" json:"lastReadAt"`
}

// Thread definition chat thread
type Thread struct {
	ID            string        `bson:"_id" json:"id"`
	Title         string        `bson:"title" json:"title"`
	Description   string        `bson:"description,omitempty" json:"description,omitempty"`
	Kind          ThreadKind    `bson:"type" json:"type"`
	CreatorID     string        `bson:"creatorId" json:"creatorId"`
	Participants  []Participant `bson:"participants" json:"participants"`
	EventID       string        `bson:"eventId,omitempty" json:"eventId,omitempty"`
	PairKey       string        `bson:"pairKey,omitempty" json:"-"`
	IsActive      bool          `bson:"isActive" json:"isActive"`
	IsPinned      bool          `bson:"isPinned" json:"isPinned"`
	LastMessageID string        `bson:"lastMessageId,omitempty" json:"lastMessageId,omitempty"`
	LastActivity  time.Time     `bson:"lastActivity" json:"lastActivity"`
	MessageCount  int64         `bson:"messageCount" json:"messageCount"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Participant find the participant entry of userID
func (t *Thread) Participant(userID string) *Participant {
	for i := range t.Participants {
		if t.Participants[i].UserID == userID {
			return &t.Participants[i]
		}
	}
	return nil
}

// IsParticipant userID is listed in participants
func (t *Thread) IsParticipant(userID string) bool {
	return t.Participant(userID) != nil
}

// HasAccess global threads are open to everyone, others need an explicit participant entry
func (t *Thread) HasAccess(userID string) bool {
	if t.Kind == ThreadGlobal {
		return true
	}
	return t.IsParticipant(userID)
}

// LastReadAt read cursor of userID, zero time when not a participant
func (t *Thread) LastReadAt(userID string) time.Time {
	if p := t.Participant(userID); p != nil {
		return p.LastReadAt
	}
	return time.Time{}
}

// OtherParticipant the counterpart of viewerID in a private thread
func (t *Thread) OtherParticipant(viewerID string) string {
	for _, p := range t.Participants {
		if p.UserID != viewerID {
			return p.UserID
		}
	}
	return ""
}

// PrivatePairKey key of an unordered member pair
func PrivatePairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// EventThreadTitle title of a provisioned event thread
func EventThreadTitle(eventTitle string) string {
	return eventTitle + " - Event Chat"
}

// EventThreadDescription description of a provisioned event thread
func EventThreadDescription(eventTitle string) string {
	return "Chat for event: " + eventTitle
}

// NormalizeTitle trim and validate a thread title
func NormalizeTitle(title string) (string, bool) {
	title = strings.TrimSpace(title)
	return title, title != "" && len([]rune(title)) <= MaxTitleLength
}

// ThreadUpdateType definition thread_update kinds
type ThreadUpdateType string

const (
	// ThreadCreated a thread became visible
	ThreadCreated ThreadUpdateType = "thread_created"
	// ParticipantJoined a member joined
	ParticipantJoined ThreadUpdateType = "participant_joined"
	// ParticipantLeft a member left
	ParticipantLeft ThreadUpdateType = "participant_left"
	// MessageDeleted a message was soft deleted
	MessageDeleted ThreadUpdateType = "message_deleted"
)
