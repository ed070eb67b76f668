package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"community_chat_service/internal/chat/domain"
	"community_chat_service/internal/chat/repository"
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stores persisted collaborators shared by the chat use cases
type Stores struct {
	Threads  repository.ThreadRepository
	Messages repository.MessageRepository
	Events   repository.EventRepository
	Activity repository.ActivityPublisher
}

// ThreadUseCase thread membership, provisioning and read cursors
type ThreadUseCase struct {
	stores      Stores
	members     MemberResolver
	broadcaster Broadcaster
	unread      *UnreadCounter
	now         Clock
}

// NewThreadUseCase init thread use case
func NewThreadUseCase(stores Stores, members MemberResolver, broadcaster Broadcaster) *ThreadUseCase {
	if stores.Activity == nil {
		stores.Activity = repository.NewNopActivityPublisher()
	}
	return &ThreadUseCase{
		stores:      stores,
		members:     members,
		broadcaster: broadcaster,
		unread:      NewUnreadCounter(stores.Messages),
		now:         SystemClock,
	}
}

// ListThreads threads visible to userID with display name and unread count, pinned first
func (uc *ThreadUseCase) ListThreads(ctx context.Context, userID string) ([]domain.ThreadView, error) {
	threads, err := uc.stores.Threads.FindVisible(ctx, userID)
	if err != nil {
		return nil, errprocess.Internal("find threads", err)
	}
	counts, err := uc.unread.CountAll(ctx, threads, userID)
	if err != nil {
		return nil, errprocess.Internal("count unread", err)
	}

	senders := newSenderCache(uc.members)
	views := make([]domain.ThreadView, 0, len(threads))
	for i := range threads {
		view := uc.view(ctx, senders, &threads[i], userID)
		view.UnreadCount = counts[i].UnreadCount
		views = append(views, view)
	}
	return views, nil
}

// UnreadCounts unread count of every thread visible to userID
func (uc *ThreadUseCase) UnreadCounts(ctx context.Context, userID string) ([]domain.UnreadCount, error) {
	threads, err := uc.stores.Threads.FindVisible(ctx, userID)
	if err != nil {
		return nil, errprocess.Internal("find threads", err)
	}
	counts, err := uc.unread.CountAll(ctx, threads, userID)
	if err != nil {
		return nil, errprocess.Internal("count unread", err)
	}
	return counts, nil
}

// CreateThread open a user-created thread with the creator as its first participant
func (uc *ThreadUseCase) CreateThread(ctx context.Context, userID, title, description string) (*domain.ThreadView, error) {
	title, ok := domain.NormalizeTitle(title)
	if !ok {
		if title == "" {
			return nil, errprocess.Validation("Thread title is required")
		}
		return nil, errprocess.Validation("Thread title must be at most 100 characters")
	}
	description = strings.TrimSpace(description)
	if len([]rune(description)) > domain.MaxDescriptionLength {
		return nil, errprocess.Validation("Thread description must be at most 500 characters")
	}

	now := uc.now()
	thread := &domain.Thread{
		ID:           uuid.New().String(),
		Title:        title,
		Description:  description,
		Kind:         domain.ThreadUserCreated,
		CreatorID:    userID,
		Participants: []domain.Participant{{UserID: userID, JoinedAt: now, LastReadAt: now}},
		IsActive:     true,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.stores.Threads.Create(ctx, thread); err != nil {
		return nil, errprocess.Internal("create thread", err)
	}

	uc.broadcaster.BroadcastThreadUpdate(domain.ThreadUpdate{
		ThreadID:   thread.ID,
		UpdateType: domain.ThreadCreated,
		UserID:     userID,
		Thread:     thread,
	})
	uc.publish(ctx, domain.Activity{Type: domain.ActivityThreadCreated, ThreadID: thread.ID, ThreadType: thread.Kind, UserID: userID, At: now})

	view := uc.view(ctx, newSenderCache(uc.members), thread, userID)
	return &view, nil
}

// Join add userID to the thread, global threads are always joined
func (uc *ThreadUseCase) Join(ctx context.Context, threadID, userID string) error {
	thread, err := uc.findThread(ctx, threadID)
	if err != nil {
		return err
	}
	if thread.HasAccess(userID) {
		return errprocess.Conflict("Already a member of this thread")
	}
	if thread.Kind == domain.ThreadPrivate {
		return errprocess.AccessDenied("Access denied to this thread")
	}

	now := uc.now()
	added, err := uc.stores.Threads.AddParticipant(ctx, threadID, domain.Participant{UserID: userID, JoinedAt: now, LastReadAt: now})
	if err != nil {
		return errprocess.Internal("add participant", err)
	}
	if !added {
		return errprocess.Conflict("Already a member of this thread")
	}

	uc.membershipChanged(ctx, thread, userID, domain.MessageJoin)
	return nil
}

// Leave remove userID from the thread, global threads cannot be left
func (uc *ThreadUseCase) Leave(ctx context.Context, threadID, userID string) error {
	thread, err := uc.findThread(ctx, threadID)
	if err != nil {
		return err
	}
	if thread.Kind == domain.ThreadGlobal {
		return errprocess.Conflict("Cannot leave global threads")
	}

	removed, err := uc.stores.Threads.RemoveParticipant(ctx, threadID, userID)
	if err != nil {
		return errprocess.Internal("remove participant", err)
	}
	if !removed {
		return errprocess.Conflict("Not a member of this thread")
	}

	uc.membershipChanged(ctx, thread, userID, domain.MessageLeave)
	return nil
}

func (uc *ThreadUseCase) membershipChanged(ctx context.Context, thread *domain.Thread, userID string, kind domain.MessageKind) {
	now := uc.now()
	content, updateType, activity := domain.JoinContent, domain.ParticipantJoined, domain.ActivityThreadJoined
	if kind == domain.MessageLeave {
		content, updateType, activity = domain.LeaveContent, domain.ParticipantLeft, domain.ActivityThreadLeft
	}

	msg := &domain.Message{
		ID:        domain.NewMessageID(),
		ThreadID:  thread.ID,
		SenderID:  userID,
		Content:   content,
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.stores.Messages.Insert(ctx, msg); err != nil {
		logger.Log.Error("insert membership message failed", zap.String("threadID", thread.ID), zap.Error(err))
	} else if err := uc.stores.Threads.RecordMessage(ctx, thread.ID, msg.ID, now); err != nil {
		logger.Log.Error("record membership message failed", zap.String("threadID", thread.ID), zap.Error(err))
	}

	sender := newSenderCache(uc.members).get(ctx, userID)
	uc.broadcaster.BroadcastThreadUpdate(domain.ThreadUpdate{
		ThreadID:   thread.ID,
		UpdateType: updateType,
		UserID:     userID,
		Username:   sender.Username,
		MessageID:  msg.ID,
	})
	uc.publish(ctx, domain.Activity{Type: activity, ThreadID: thread.ID, ThreadType: thread.Kind, MessageID: msg.ID, UserID: userID, At: now})
}

// GetOrCreatePrivate the one private thread of the unordered pair (userID, otherUserID)
func (uc *ThreadUseCase) GetOrCreatePrivate(ctx context.Context, userID, otherUserID string) (*domain.ThreadView, error) {
	if userID == otherUserID {
		return nil, errprocess.Validation("Cannot chat with yourself")
	}
	pairKey := domain.PrivatePairKey(userID, otherUserID)

	thread, err := uc.stores.Threads.FindByPairKey(ctx, pairKey)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, errprocess.Internal("find private thread", err)
	}
	if thread == nil {
		if _, err := uc.members.Resolve(ctx, otherUserID); err != nil {
			return nil, err
		}

		now := uc.now()
		thread = &domain.Thread{
			ID:        uuid.New().String(),
			Title:     domain.PrivateThreadTitle,
			Kind:      domain.ThreadPrivate,
			CreatorID: userID,
			PairKey:   pairKey,
			Participants: []domain.Participant{
				{UserID: userID, JoinedAt: now, LastReadAt: now},
				{UserID: otherUserID, JoinedAt: now, LastReadAt: now},
			},
			IsActive:     true,
			LastActivity: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		thread, err = uc.createOrFind(ctx, thread, func() (*domain.Thread, error) {
			return uc.stores.Threads.FindByPairKey(ctx, pairKey)
		})
		if err != nil {
			return nil, err
		}
	}

	view := uc.view(ctx, newSenderCache(uc.members), thread, userID)
	return &view, nil
}

// GetOrCreateEventThread provision the event thread, organizer or admin only.
// created is false when the thread already existed.
func (uc *ThreadUseCase) GetOrCreateEventThread(ctx context.Context, userID, eventID string) (thread *domain.Thread, created bool, err error) {
	event, err := uc.stores.Events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, errprocess.NotFound("Event not found")
		}
		return nil, false, errprocess.Internal("find event", err)
	}

	if event.OrganizerID != userID {
		member, err := uc.members.Resolve(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		if !member.IsAdmin() {
			return nil, false, errprocess.AccessDenied("Only event organizers and admins can create event threads")
		}
	}

	existing, err := uc.stores.Threads.FindByEventID(ctx, eventID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, errprocess.Internal("find event thread", err)
	}

	now := uc.now()
	candidate := &domain.Thread{
		ID:           uuid.New().String(),
		Title:        domain.EventThreadTitle(event.Title),
		Description:  domain.EventThreadDescription(event.Title),
		Kind:         domain.ThreadEvent,
		CreatorID:    userID,
		EventID:      eventID,
		Participants: []domain.Participant{{UserID: userID, JoinedAt: now, LastReadAt: now}},
		IsActive:     true,
		IsPinned:     true,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	thread, err = uc.createOrFind(ctx, candidate, func() (*domain.Thread, error) {
		return uc.stores.Threads.FindByEventID(ctx, eventID)
	})
	if err != nil {
		return nil, false, err
	}
	created = thread.ID == candidate.ID
	if created {
		uc.publish(ctx, domain.Activity{Type: domain.ActivityThreadCreated, ThreadID: thread.ID, ThreadType: thread.Kind, UserID: userID, At: now})
	}
	return thread, created, nil
}

// EnsureGlobal seed the global thread once, creatorID is an admin or the System member
func (uc *ThreadUseCase) EnsureGlobal(ctx context.Context, creatorID string) (thread *domain.Thread, created bool, err error) {
	existing, err := uc.stores.Threads.FindGlobal(ctx)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, errprocess.Internal("find global thread", err)
	}

	now := uc.now()
	candidate := &domain.Thread{
		ID:           uuid.New().String(),
		Title:        domain.GlobalThreadTitle,
		Description:  domain.GlobalThreadDescription,
		Kind:         domain.ThreadGlobal,
		CreatorID:    creatorID,
		Participants: []domain.Participant{},
		IsActive:     true,
		IsPinned:     true,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	thread, err = uc.createOrFind(ctx, candidate, func() (*domain.Thread, error) {
		return uc.stores.Threads.FindGlobal(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	return thread, thread.ID == candidate.ID, nil
}

// MarkRead advance userID's cursor to now without fetching messages
func (uc *ThreadUseCase) MarkRead(ctx context.Context, threadID, userID string) error {
	thread, err := uc.findThread(ctx, threadID)
	if err != nil {
		return err
	}
	return advanceCursor(ctx, uc.stores.Threads, thread, userID, uc.now())
}

// createOrFind insert candidate, on a unique index race return the winner
func (uc *ThreadUseCase) createOrFind(ctx context.Context, candidate *domain.Thread, find func() (*domain.Thread, error)) (*domain.Thread, error) {
	err := uc.stores.Threads.Create(ctx, candidate)
	if err == nil {
		return candidate, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, errprocess.Internal("create thread", err)
	}
	winner, err := find()
	if err != nil {
		return nil, errprocess.Internal("find thread", err)
	}
	return winner, nil
}

func (uc *ThreadUseCase) findThread(ctx context.Context, threadID string) (*domain.Thread, error) {
	return findThread(ctx, uc.stores.Threads, threadID)
}

func (uc *ThreadUseCase) view(ctx context.Context, senders *senderCache, thread *domain.Thread, viewerID string) domain.ThreadView {
	view := domain.ThreadView{Thread: *thread, Participants: []domain.ParticipantView{}}

	// global 的 participants 只存讀取游標, 不對外回傳
	if thread.Kind != domain.ThreadGlobal {
		for _, p := range thread.Participants {
			s := senders.get(ctx, p.UserID)
			view.Participants = append(view.Participants, domain.ParticipantView{
				Participant: p,
				Username:    s.Username,
				NameColor:   s.NameColor,
			})
		}
	}
	if thread.CreatorID != "" {
		creator := senders.get(ctx, thread.CreatorID)
		view.Creator = &creator
	}

	if thread.Kind == domain.ThreadEvent && thread.EventID != "" && uc.stores.Events != nil {
		if event, err := uc.stores.Events.FindByID(ctx, thread.EventID); err == nil {
			view.EventTitle = event.Title
		}
	}
	view.DisplayName = domain.DisplayName(&view, viewerID)
	return view
}

func (uc *ThreadUseCase) publish(ctx context.Context, activity domain.Activity) {
	if err := uc.stores.Activity.Publish(ctx, activity); err != nil {
		logger.Log.Warn("publish activity failed", zap.String("type", string(activity.Type)), zap.Error(err))
	}
}

func findThread(ctx context.Context, threads repository.ThreadRepository, threadID string) (*domain.Thread, error) {
	thread, err := threads.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errprocess.NotFound("Thread not found")
		}
		return nil, errprocess.Internal("find thread", err)
	}
	return thread, nil
}

// advanceCursor move userID's cursor to at. Non participants of restricted
// threads are ignored; on the global thread the cursor entry is created on first read.
func advanceCursor(ctx context.Context, threads repository.ThreadRepository, thread *domain.Thread, userID string, at time.Time) error {
	if thread.Kind == domain.ThreadGlobal && !thread.IsParticipant(userID) {
		if _, err := threads.AddParticipant(ctx, thread.ID, domain.Participant{UserID: userID, JoinedAt: at, LastReadAt: at}); err != nil {
			return errprocess.Internal("add read cursor", err)
		}
	}
	if !thread.HasAccess(userID) {
		return nil
	}
	if _, err := threads.AdvanceReadCursor(ctx, thread.ID, userID, at); err != nil {
		return errprocess.Internal("advance read cursor", err)
	}
	return nil
}
