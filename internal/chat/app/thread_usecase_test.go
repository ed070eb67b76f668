package app

import (
	"context"
	"sync"
	"testing"

	"community_chat_service/internal/chat/domain"
	errprocess "community_chat_service/pkg/err"
	"community_chat_service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreatePrivate_Idempotent(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	pairs := [][2]string{{"alice", "bob"}, {"bob", "carol"}, {"carol", "alice"}, {"admin", "bob"}}

	for _, p := range pairs {
		f := newChatFixture()
		first, err := f.threadUC.GetOrCreatePrivate(ctx, p[0], p[1])
		require.NoError(t, err)
		again, err := f.threadUC.GetOrCreatePrivate(ctx, p[0], p[1])
		require.NoError(t, err)
		reversed, err := f.threadUC.GetOrCreatePrivate(ctx, p[1], p[0])
		require.NoError(t, err)

		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, first.ID, reversed.ID)
		assert.Equal(t, 1, f.threads.count())

		assert.Equal(t, p[1], first.DisplayName)
		assert.Equal(t, p[0], reversed.DisplayName)
	}
}

func TestGetOrCreatePrivate_Concurrent(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	ids := make([]string, 10)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			v, err := f.threadUC.GetOrCreatePrivate(ctx, a, b)
			if err == nil {
				ids[i] = v.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, f.threads.count())
}

func TestGetOrCreatePrivate_Errors(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	_, err := f.threadUC.GetOrCreatePrivate(ctx, "alice", "alice")
	assert.True(t, errprocess.Is(err, errprocess.KindValidation))
	assert.EqualError(t, err, "Cannot chat with yourself")

	_, err = f.threadUC.GetOrCreatePrivate(ctx, "alice", "ghost")
	assert.True(t, errprocess.Is(err, errprocess.KindNotFound))
	assert.Equal(t, 0, f.threads.count())
}

func TestGlobalThread_Invariants(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	global, created, err := f.threadUC.EnsureGlobal(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, global.Participants)
	assert.True(t, global.IsPinned)
	assert.Equal(t, domain.GlobalThreadTitle, global.Title)

	again, created, err := f.threadUC.EnsureGlobal(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, global.ID, again.ID)

	for _, user := range []string{"alice", "bob", "carol", "admin", "someone-new"} {
		assert.True(t, global.HasAccess(user))

		err := f.threadUC.Leave(ctx, global.ID, user)
		assert.True(t, errprocess.Is(err, errprocess.KindConflict), user)
		assert.Equal(t, 400, errprocess.HTTPStatus(err))
		assert.EqualError(t, err, "Cannot leave global threads")

		err = f.threadUC.Join(ctx, global.ID, user)
		assert.True(t, errprocess.Is(err, errprocess.KindConflict), user)
	}
}

func TestEventThread_Idempotent(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()
	f.events.events["ev-1"] = domain.EventInfo{ID: "ev-1", Title: "Spring Hike", OrganizerID: "alice"}

	first, created, err := f.threadUC.GetOrCreateEventThread(ctx, "alice", "ev-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Spring Hike - Event Chat", first.Title)
	assert.Equal(t, "Chat for event: Spring Hike", first.Description)
	assert.True(t, first.IsPinned)
	assert.True(t, first.IsParticipant("alice"))

	second, created, err := f.threadUC.GetOrCreateEventThread(ctx, "alice", "ev-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	// admin 也可以建立，但不會重複
	third, created, err := f.threadUC.GetOrCreateEventThread(ctx, "admin", "ev-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, 1, f.threads.count())
}

func TestEventThread_Permissions(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()
	f.events.events["ev-1"] = domain.EventInfo{ID: "ev-1", Title: "Hike", OrganizerID: "alice"}

	_, _, err := f.threadUC.GetOrCreateEventThread(ctx, "bob", "ev-1")
	assert.True(t, errprocess.Is(err, errprocess.KindAccessDenied))
	assert.EqualError(t, err, "Only event organizers and admins can create event threads")

	_, _, err = f.threadUC.GetOrCreateEventThread(ctx, "alice", "missing")
	assert.True(t, errprocess.Is(err, errprocess.KindNotFound))

	thread, created, err := f.threadUC.GetOrCreateEventThread(ctx, "admin", "ev-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "admin", thread.CreatorID)
}

func TestCreateThread(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	view, err := f.threadUC.CreateThread(ctx, "alice", "  Book club ", " monthly ")
	require.NoError(t, err)
	assert.Equal(t, "Book club", view.Title)
	assert.Equal(t, "monthly", view.Description)
	assert.Equal(t, domain.ThreadUserCreated, view.Kind)
	assert.True(t, view.IsActive)
	require.Len(t, view.Participants, 1)
	assert.Equal(t, "alice", view.Participants[0].Username)
	assert.Equal(t, "Book club", view.DisplayName)

	require.Len(t, f.broadcaster.updates, 1)
	assert.Equal(t, domain.ThreadCreated, f.broadcaster.updates[0].UpdateType)

	_, err = f.threadUC.CreateThread(ctx, "alice", "   ", "")
	assert.EqualError(t, err, "Thread title is required")

	_, err = f.threadUC.CreateThread(ctx, "alice", string(make([]byte, 101)), "")
	assert.True(t, errprocess.Is(err, errprocess.KindValidation))
}

func TestJoinAndLeave(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	room, err := f.threadUC.CreateThread(ctx, "alice", "Room", "")
	require.NoError(t, err)

	require.NoError(t, f.threadUC.Join(ctx, room.ID, "bob"))
	err = f.threadUC.Join(ctx, room.ID, "bob")
	assert.EqualError(t, err, "Already a member of this thread")

	thread, err := f.threads.FindByID(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, thread.IsParticipant("bob"))

	require.NoError(t, f.threadUC.Leave(ctx, room.ID, "bob"))
	err = f.threadUC.Leave(ctx, room.ID, "bob")
	assert.True(t, errprocess.Is(err, errprocess.KindConflict))

	msgs, err := f.messages.FindPage(ctx, room.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.MessageJoin, msgs[0].Kind)
	assert.Equal(t, domain.JoinContent, msgs[0].Content)
	assert.Equal(t, domain.MessageLeave, msgs[1].Kind)

	var types []domain.ThreadUpdateType
	for _, u := range f.broadcaster.updates {
		types = append(types, u.UpdateType)
	}
	assert.Equal(t, []domain.ThreadUpdateType{domain.ThreadCreated, domain.ParticipantJoined, domain.ParticipantLeft}, types)
	assert.Equal(t, "bob", f.broadcaster.updates[1].Username)

	err = f.threadUC.Join(ctx, "missing", "bob")
	assert.True(t, errprocess.Is(err, errprocess.KindNotFound))
}

func TestJoin_PrivateThreadDenied(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	private, err := f.threadUC.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)

	err = f.threadUC.Join(ctx, private.ID, "carol")
	assert.True(t, errprocess.Is(err, errprocess.KindAccessDenied))
}

func TestListThreads_OrderAndVisibility(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	global, _, err := f.threadUC.EnsureGlobal(ctx, "admin")
	require.NoError(t, err)
	room, err := f.threadUC.CreateThread(ctx, "alice", "Room", "")
	require.NoError(t, err)
	private, err := f.threadUC.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)
	_, err = f.messageUC.SendMessage(ctx, private.ID, "bob", "hey", "")
	require.NoError(t, err)

	views, err := f.threadUC.ListThreads(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, global.ID, views[0].ID, "pinned first")
	assert.Equal(t, private.ID, views[1].ID, "then most recent activity")
	assert.Equal(t, room.ID, views[2].ID)
	assert.Equal(t, "bob", views[1].DisplayName)
	assert.EqualValues(t, 1, views[1].UnreadCount)

	carol, err := f.threadUC.ListThreads(ctx, "carol")
	require.NoError(t, err)
	assert.Len(t, carol, 2, "private threads of others stay hidden")
}

func TestUnreadCounts_MatchesListing(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	global, _, err := f.threadUC.EnsureGlobal(ctx, "admin")
	require.NoError(t, err)
	room, err := f.threadUC.CreateThread(ctx, "alice", "Room", "")
	require.NoError(t, err)
	require.NoError(t, f.threadUC.Join(ctx, room.ID, "bob"))

	for i := 0; i < 3; i++ {
		_, err = f.messageUC.SendMessage(ctx, global.ID, "bob", "hello", "")
		require.NoError(t, err)
	}
	_, err = f.messageUC.SendMessage(ctx, room.ID, "bob", "hello", "")
	require.NoError(t, err)

	views, err := f.threadUC.ListThreads(ctx, "alice")
	require.NoError(t, err)
	counts, err := f.threadUC.UnreadCounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, counts, len(views))

	byThread := map[string]int64{}
	for _, c := range counts {
		byThread[c.ThreadID] = c.UnreadCount
	}
	for _, v := range views {
		assert.Equal(t, v.UnreadCount, byThread[v.ID], v.Title)
	}
	assert.EqualValues(t, 3, byThread[global.ID])
	// join 訊息也算 bob 發出
	assert.EqualValues(t, 2, byThread[room.ID])
}

func TestMarkRead(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	global, _, err := f.threadUC.EnsureGlobal(ctx, "admin")
	require.NoError(t, err)
	_, err = f.messageUC.SendMessage(ctx, global.ID, "bob", "hello", "")
	require.NoError(t, err)

	require.NoError(t, f.threadUC.MarkRead(ctx, global.ID, "alice"))
	counts, err := f.threadUC.UnreadCounts(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Zero(t, counts[0].UnreadCount)

	err = f.threadUC.MarkRead(ctx, "missing", "alice")
	assert.True(t, errprocess.Is(err, errprocess.KindNotFound))
}

func unreadIn(t *testing.T, f *chatFixture, userID, threadID string) int64 {
	t.Helper()
	counts, err := f.threadUC.UnreadCounts(context.Background(), userID)
	require.NoError(t, err)
	for _, c := range counts {
		if c.ThreadID == threadID {
			return c.UnreadCount
		}
	}
	t.Fatalf("thread %s not listed for %s", threadID, userID)
	return 0
}

func TestJoin_StartsWithNothingUnread(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	room, err := f.threadUC.CreateThread(ctx, "alice", "Room", "")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := f.messageUC.SendMessage(ctx, room.ID, "alice", "old news", "")
		require.NoError(t, err)
	}

	require.NoError(t, f.threadUC.Join(ctx, room.ID, "bob"))
	assert.Equal(t, int64(0), unreadIn(t, f, "bob", room.ID))

	_, err = f.messageUC.SendMessage(ctx, room.ID, "alice", "fresh", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unreadIn(t, f, "bob", room.ID))
}

func TestPrivateThread_StartsWithNothingUnread(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	dm, err := f.threadUC.GetOrCreatePrivate(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), unreadIn(t, f, "alice", dm.ID))
	assert.Equal(t, int64(0), unreadIn(t, f, "bob", dm.ID))
}

func TestGlobalView_HidesReadCursors(t *testing.T) {
	logger.SetNewNop()
	f := newChatFixture()
	ctx := context.Background()

	global, _, err := f.threadUC.EnsureGlobal(ctx, "admin")
	require.NoError(t, err)
	// 讀取後會建立 alice 的游標
	_, err = f.messageUC.ListMessages(ctx, global.ID, "alice", 1, 50)
	require.NoError(t, err)
	stored, err := f.threads.FindByID(ctx, global.ID)
	require.NoError(t, err)
	require.True(t, stored.IsParticipant("alice"))

	views, err := f.threadUC.ListThreads(ctx, "bob")
	require.NoError(t, err)
	require.NotEmpty(t, views)
	for _, v := range views {
		if v.ID == global.ID {
			assert.NotNil(t, v.Participants)
			assert.Empty(t, v.Participants)
			return
		}
	}
	t.Fatal("global thread not listed")
}
