package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/chat"
	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/storage/memory"
)

type feedFixture struct {
	store  *memory.ChatStore
	sender *chatsvc.Sender
	keyA   domainchat.Key
	keyB   domainchat.Key
}

func newFeedFixture(t *testing.T) *feedFixture {
	t.Helper()
	listings := memory.NewListingRepository()
	store := memory.NewChatStore()
	seedListing(t, listings, "l1", "owner-1")
	seedListing(t, listings, "l2", "owner-1")

	resolver := newResolver(listings, store, memory.NewOutbox())
	a, err := resolver.Resolve(context.Background(), "l1", "renter-1")
	require.NoError(t, err)
	b, err := resolver.Resolve(context.Background(), "l2", "renter-1")
	require.NoError(t, err)

	return &feedFixture{
		store:  store,
		sender: &chatsvc.Sender{Listings: listings, Store: store},
		keyA:   a.Conversation.Key,
		keyB:   b.Conversation.Key,
	}
}

func waitForSnapshot(t *testing.T, ch <-chan chatsvc.Snapshot) chatsvc.Snapshot {
	t.Helper()
	select {
	case snapshot := <-ch:
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return chatsvc.Snapshot{}
	}
}

func TestFeedDeliversInitialSnapshot(t *testing.T) {
	fx := newFeedFixture(t)
	_, err := fx.sender.Send(context.Background(), fx.keyA, "renter-1", "hello")
	require.NoError(t, err)

	snapshots := make(chan chatsvc.Snapshot, 8)
	manager := &chatsvc.FeedManager{
		Store:      fx.store,
		ViewerID:   "renter-1",
		OnSnapshot: func(s chatsvc.Snapshot) { snapshots <- s },
	}
	defer manager.Close()

	require.NoError(t, manager.Switch(context.Background(), fx.keyA))
	snapshot := waitForSnapshot(t, snapshots)
	assert.Equal(t, fx.keyA, snapshot.Key)
	require.Len(t, snapshot.Messages, 1)
	assert.Equal(t, "hello", snapshot.Messages[0].Text)
}

func TestFeedSnapshotsReplaceNotAppend(t *testing.T) {
	fx := newFeedFixture(t)
	manager := &chatsvc.FeedManager{Store: fx.store, ViewerID: "renter-1"}
	defer manager.Close()

	generation := manager.Generation()
	full := []domainchat.Message{
		{ID: "1", ConversationKey: fx.keyA, SenderID: "owner-1", Text: "a", Read: true},
		{ID: "2", ConversationKey: fx.keyA, SenderID: "owner-1", Text: "b", Read: true},
	}

	accepted := manager.Apply(context.Background(), chatsvc.Snapshot{Key: fx.keyA, Generation: generation, Messages: full})
	require.True(t, accepted)
	accepted = manager.Apply(context.Background(), chatsvc.Snapshot{Key: fx.keyA, Generation: generation, Messages: full[:1]})
	require.True(t, accepted)

	_, current := manager.Current()
	assert.Len(t, current, 1, "a shorter delivery replaces the longer working set")
}

func TestFeedDropsStaleGeneration(t *testing.T) {
	fx := newFeedFixture(t)
	snapshots := make(chan chatsvc.Snapshot, 8)
	manager := &chatsvc.FeedManager{
		Store:      fx.store,
		ViewerID:   "renter-1",
		OnSnapshot: func(s chatsvc.Snapshot) { snapshots <- s },
	}
	defer manager.Close()

	require.NoError(t, manager.Switch(context.Background(), fx.keyA))
	staleGeneration := manager.Generation()
	require.NoError(t, manager.Switch(context.Background(), fx.keyB))
	// wait until the new subscription is live before replaying the zombie
	for snapshot := waitForSnapshot(t, snapshots); snapshot.Key != fx.keyB; snapshot = waitForSnapshot(t, snapshots) {
	}

	stale := chatsvc.Snapshot{
		Key:        fx.keyA,
		Generation: staleGeneration,
		Messages:   []domainchat.Message{{ID: "zombie", ConversationKey: fx.keyA, SenderID: "owner-1", Read: true}},
	}
	assert.False(t, manager.Apply(context.Background(), stale), "late delivery for the abandoned key must be discarded")

	key, current := manager.Current()
	assert.Equal(t, fx.keyB, key)
	for _, msg := range current {
		assert.NotEqual(t, "zombie", msg.ID)
	}
}

func TestFeedClosedManagerRejectsSnapshots(t *testing.T) {
	fx := newFeedFixture(t)
	manager := &chatsvc.FeedManager{Store: fx.store, ViewerID: "renter-1"}

	require.NoError(t, manager.Switch(context.Background(), fx.keyA))
	generation := manager.Generation()
	manager.Close()

	accepted := manager.Apply(context.Background(), chatsvc.Snapshot{Key: fx.keyA, Generation: generation})
	assert.False(t, accepted)
}

func TestFeedMarksCounterpartMessagesRead(t *testing.T) {
	fx := newFeedFixture(t)
	_, err := fx.sender.Send(context.Background(), fx.keyA, "owner-1", "anyone there?")
	require.NoError(t, err)

	snapshots := make(chan chatsvc.Snapshot, 8)
	manager := &chatsvc.FeedManager{
		Store:      fx.store,
		ViewerID:   "renter-1",
		OnSnapshot: func(s chatsvc.Snapshot) { snapshots <- s },
	}
	defer manager.Close()

	require.NoError(t, manager.Switch(context.Background(), fx.keyA))
	waitForSnapshot(t, snapshots)

	deadline := time.Now().Add(2 * time.Second)
	for {
		messages, err := fx.store.Messages(context.Background(), fx.keyA)
		require.NoError(t, err)
		if len(messages) == 1 && messages[0].Read {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("counterpart message never marked read")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFeedFollowsLiveSends(t *testing.T) {
	fx := newFeedFixture(t)

	snapshots := make(chan chatsvc.Snapshot, 8)
	manager := &chatsvc.FeedManager{
		Store:      fx.store,
		ViewerID:   "renter-1",
		OnSnapshot: func(s chatsvc.Snapshot) { snapshots <- s },
	}
	defer manager.Close()

	require.NoError(t, manager.Switch(context.Background(), fx.keyA))
	initial := waitForSnapshot(t, snapshots)
	assert.Empty(t, initial.Messages)

	_, err := fx.sender.Send(context.Background(), fx.keyA, "owner-1", "fresh message")
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for {
		snapshot := waitForSnapshot(t, snapshots)
		if len(snapshot.Messages) == 1 {
			assert.Equal(t, "fresh message", snapshot.Messages[0].Text)
			assert.True(t, domainchat.Ordered(snapshot.Messages))
			break
		}
		require.False(t, time.Now().After(deadline), "send never reached the feed")
	}
}
