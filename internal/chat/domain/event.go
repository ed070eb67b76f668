package domain

// EventInfo community event as seen by the chat
type EventInfo struct {
	ID          string
	Title       string
	OrganizerID string
}
