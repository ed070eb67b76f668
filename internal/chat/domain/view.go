package domain

// Sender identity attached to every message and connection
type Sender struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	NameColor      string `json:"nameColor,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// UnknownUsername shown when the sender no longer resolves
const UnknownUsername = "Unknown"

// MessageView message with its sender identity, as sent to clients
type MessageView struct {
	Message
	Sender Sender `json:"sender"`
}

// NewMessageView redact and attach the sender
func NewMessageView(m Message, sender Sender) MessageView {
	return MessageView{Message: m.Redacted(), Sender: sender}
}

// UnreadCount derived unread counter of one thread
type UnreadCount struct {
	ThreadID    string     `json:"threadId"`
	ThreadType  ThreadKind `json:"threadType"`
	EventID     string     `json:"eventId,omitempty"`
	UnreadCount int64      `json:"unreadCount"`
}

// ParticipantView participant with its identity
type ParticipantView struct {
	Participant
	Username  string `json:"username,omitempty"`
	NameColor string `json:"nameColor,omitempty"`
}

// ThreadView thread as listed for one viewer
type ThreadView struct {
	Thread
	Participants []ParticipantView `json:"participants"`
	Creator      *Sender           `json:"creator,omitempty"`
	EventTitle   string            `json:"eventTitle,omitempty"`
	DisplayName  string            `json:"displayName"`
	UnreadCount  int64             `json:"unreadCount"`
}

// DisplayName name of the thread as seen by viewerID
func DisplayName(v *ThreadView, viewerID string) string {
	switch v.Kind {
	case ThreadPrivate:
		for _, p := range v.Participants {
			if p.UserID != viewerID && p.Username != "" {
				return p.Username
			}
		}
		return PrivateThreadTitle
	case ThreadEvent:
		if v.EventTitle != "" {
			return v.EventTitle + " - Chat"
		}
		return v.Title
	default:
		return v.Title
	}
}
