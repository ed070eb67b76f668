package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"community_chat_service/internal/chat/domain"
	"community_chat_service/internal/chat/repository"
	memberdomain "community_chat_service/internal/member/domain"
	errprocess "community_chat_service/pkg/err"
)

// memThreads in-memory ThreadRepository with the unique constraints of the mongo indexes
type memThreads struct {
	mu      sync.Mutex
	threads map[string]*domain.Thread
}

func newMemThreads() *memThreads {
	return &memThreads{threads: map[string]*domain.Thread{}}
}

func cloneThread(t *domain.Thread) *domain.Thread {
	c := *t
	c.Participants = append([]domain.Participant(nil), t.Participants...)
	return &c
}

func (r *memThreads) Create(_ context.Context, thread *domain.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.threads {
		switch {
		case t.ID == thread.ID,
			thread.Kind == domain.ThreadGlobal && t.Kind == domain.ThreadGlobal,
			thread.Kind == domain.ThreadPrivate && t.Kind == domain.ThreadPrivate && t.PairKey == thread.PairKey,
			thread.Kind == domain.ThreadEvent && t.Kind == domain.ThreadEvent && t.EventID == thread.EventID:
			return repository.ErrDuplicate
		}
	}
	r.threads[thread.ID] = cloneThread(thread)
	return nil
}

func (r *memThreads) find(match func(*domain.Thread) bool) (*domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.threads {
		if match(t) {
			return cloneThread(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memThreads) FindByID(_ context.Context, threadID string) (*domain.Thread, error) {
	return r.find(func(t *domain.Thread) bool { return t.ID == threadID })
}

func (r *memThreads) FindGlobal(context.Context) (*domain.Thread, error) {
	return r.find(func(t *domain.Thread) bool { return t.Kind == domain.ThreadGlobal })
}

func (r *memThreads) FindByPairKey(_ context.Context, pairKey string) (*domain.Thread, error) {
	return r.find(func(t *domain.Thread) bool { return t.Kind == domain.ThreadPrivate && t.PairKey == pairKey })
}

func (r *memThreads) FindByEventID(_ context.Context, eventID string) (*domain.Thread, error) {
	return r.find(func(t *domain.Thread) bool { return t.Kind == domain.ThreadEvent && t.EventID == eventID })
}

func (r *memThreads) FindVisible(_ context.Context, userID string) ([]domain.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Thread{}
	for _, t := range r.threads {
		if t.Kind == domain.ThreadGlobal || (t.Kind == domain.ThreadUserCreated && t.IsActive) || t.IsParticipant(userID) {
			out = append(out, *cloneThread(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out, nil
}

func (r *memThreads) AddParticipant(_ context.Context, threadID string, p domain.Participant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[threadID]
	if !ok || t.IsParticipant(p.UserID) {
		return false, nil
	}
	t.Participants = append(t.Participants, p)
	return true, nil
}

func (r *memThreads) RemoveParticipant(_ context.Context, threadID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[threadID]
	if !ok {
		return false, nil
	}
	for i, p := range t.Participants {
		if p.UserID == userID {
			t.Participants = append(t.Participants[:i], t.Participants[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memThreads) AdvanceReadCursor(_ context.Context, threadID, userID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[threadID]
	if !ok {
		return false, nil
	}
	p := t.Participant(userID)
	if p == nil {
		return false, nil
	}
	if at.After(p.LastReadAt) {
		p.LastReadAt = at
	}
	return true, nil
}

func (r *memThreads) RecordMessage(_ context.Context, threadID, messageID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[threadID]
	if !ok {
		return repository.ErrNotFound
	}
	t.LastMessageID = messageID
	t.MessageCount++
	if at.After(t.LastActivity) {
		t.LastActivity = at
	}
	return nil
}

func (r *memThreads) EnsureIndexes(context.Context) error { return nil }

func (r *memThreads) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.threads)
}

// memMessages in-memory MessageRepository
type memMessages struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func (r *memMessages) Insert(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *msg
	r.messages = append(r.messages, &c)
	return nil
}

func (r *memMessages) FindByID(_ context.Context, messageID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == messageID {
			c := *m
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memMessages) FindPage(_ context.Context, threadID string, page, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newestFirst []domain.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].ThreadID == threadID {
			newestFirst = append(newestFirst, *r.messages[i])
		}
	}
	start := (page - 1) * limit
	if start >= len(newestFirst) {
		return []domain.Message{}, nil
	}
	end := start + limit
	if end > len(newestFirst) {
		end = len(newestFirst)
	}
	out := newestFirst[start:end]
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *memMessages) CountUnread(_ context.Context, threadID, userID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ThreadID == threadID && m.CountsAsUnreadFor(userID, since) {
			n++
		}
	}
	return n, nil
}

func (r *memMessages) SoftDelete(_ context.Context, messageID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == messageID {
			if m.IsDeleted {
				return false, nil
			}
			m.IsDeleted, m.UpdatedAt = true, at
			return true, nil
		}
	}
	return false, nil
}

func (r *memMessages) MarkRead(_ context.Context, threadID, userID string, messageIDs []string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.ThreadID != threadID {
			continue
		}
		for _, id := range messageIDs {
			if m.ID == id && m.MarkReadBy(userID, at) {
				n++
			}
		}
	}
	return n, nil
}

func (r *memMessages) EnsureIndexes(context.Context) error { return nil }

// memEvents in-memory EventRepository
type memEvents struct {
	events map[string]domain.EventInfo
}

func (r *memEvents) AutoMigrate() error { return nil }

func (r *memEvents) FindByID(_ context.Context, eventID string) (*domain.EventInfo, error) {
	e, ok := r.events[eventID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *memEvents) Create(_ context.Context, event *domain.EventInfo) error {
	r.events[event.ID] = *event
	return nil
}

// memMembers in-memory MemberResolver
type memMembers struct {
	members map[string]*memberdomain.Member
}

func newMemMembers(ms ...*memberdomain.Member) *memMembers {
	r := &memMembers{members: map[string]*memberdomain.Member{}}
	for _, m := range ms {
		r.members[m.MemberID] = m
	}
	return r
}

func (r *memMembers) Resolve(_ context.Context, memberID string) (*memberdomain.Member, error) {
	m, ok := r.members[memberID]
	if !ok {
		return nil, errprocess.NotFound("User not found")
	}
	c := *m
	return &c, nil
}

// recordingBroadcaster captures pushes instead of writing to sockets
type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []broadcastCall
	updates  []domain.ThreadUpdate
}

type broadcastCall struct {
	ThreadID string
	Message  domain.MessageView
	Exclude  string
}

func (b *recordingBroadcaster) BroadcastToThread(threadID string, msg domain.MessageView, excludeUserID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, broadcastCall{ThreadID: threadID, Message: msg, Exclude: excludeUserID})
	return 1
}

func (b *recordingBroadcaster) BroadcastThreadUpdate(update domain.ThreadUpdate) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, update)
	return 1
}

// steppingClock deterministic millisecond clock
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newSteppingClock() *steppingClock {
	return &steppingClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// chatFixture wires both use cases over in-memory stores
type chatFixture struct {
	threads     *memThreads
	messages    *memMessages
	events      *memEvents
	members     *memMembers
	broadcaster *recordingBroadcaster
	threadUC    *ThreadUseCase
	messageUC   *MessageUseCase
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		threads:  newMemThreads(),
		messages: &memMessages{},
		events:   &memEvents{events: map[string]domain.EventInfo{}},
		members: newMemMembers(
			&memberdomain.Member{MemberID: "alice", Username: "alice", NameColor: "#e11d48", Role: memberdomain.RoleUser},
			&memberdomain.Member{MemberID: "bob", Username: "bob", Role: memberdomain.RoleUser},
			&memberdomain.Member{MemberID: "carol", Username: "carol", Role: memberdomain.RoleUser},
			&memberdomain.Member{MemberID: "admin", Username: "admin", Role: memberdomain.RoleAdmin},
		),
		broadcaster: &recordingBroadcaster{},
	}
	stores := Stores{Threads: f.threads, Messages: f.messages, Events: f.events}
	clock := newSteppingClock()

	f.threadUC = NewThreadUseCase(stores, f.members, f.broadcaster)
	f.threadUC.now = clock.Now
	f.messageUC = NewMessageUseCase(stores, f.members, f.broadcaster, nil)
	f.messageUC.now = clock.Now
	return f
}
