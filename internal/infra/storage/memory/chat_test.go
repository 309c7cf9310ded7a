package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/storage/memory"
)

func mustConversation(t *testing.T, renter, owner, listing string) *chat.Conversation {
	t.Helper()
	key, err := chat.NewKey(renter, owner, listing)
	require.NoError(t, err)
	conversation, err := chat.NewConversation(key, time.Now())
	require.NoError(t, err)
	return conversation
}

func TestChatStoreEnsureConversation(t *testing.T) {
	store := memory.NewChatStore()
	conversation := mustConversation(t, "r1", "o1", "l1")

	stored, created, err := store.EnsureConversation(context.Background(), conversation)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, conversation.Key, stored.Key)

	// re-ensure keeps the original document
	later := mustConversation(t, "r1", "o1", "l1")
	again, created, err := store.EnsureConversation(context.Background(), later)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.CreatedAt, again.CreatedAt)
}

func TestChatStoreEnsureConversationConcurrent(t *testing.T) {
	store := memory.NewChatStore()
	var createdCount int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conversation := mustConversation(t, "r1", "o1", "l1")
			_, created, err := store.EnsureConversation(context.Background(), conversation)
			assert.NoError(t, err)
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, createdCount, "exactly one ensure wins")
}

func TestChatStoreSecondaryIndexes(t *testing.T) {
	store := memory.NewChatStore()
	for _, triple := range [][3]string{
		{"r1", "o1", "l1"},
		{"r2", "o1", "l1"},
		{"r1", "o2", "l2"},
	} {
		_, _, err := store.EnsureConversation(context.Background(), mustConversation(t, triple[0], triple[1], triple[2]))
		require.NoError(t, err)
	}

	byListing, err := store.ConversationsByListing(context.Background(), "l1")
	require.NoError(t, err)
	assert.Len(t, byListing, 2)

	byParticipant, err := store.ConversationsByParticipant(context.Background(), "r1")
	require.NoError(t, err)
	assert.Len(t, byParticipant, 2)

	byParticipant, err = store.ConversationsByParticipant(context.Background(), "o2")
	require.NoError(t, err)
	assert.Len(t, byParticipant, 1)
}

func TestChatStoreAppendAssignsIDAndTimestamp(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	store := memory.NewChatStore().WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	})
	conversation := mustConversation(t, "r1", "o1", "l1")
	_, _, err := store.EnsureConversation(context.Background(), conversation)
	require.NoError(t, err)

	first, err := store.AppendMessage(context.Background(), conversation.Key, "r1", "one")
	require.NoError(t, err)
	second, err := store.AppendMessage(context.Background(), conversation.Key, "o1", "two")
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
	assert.False(t, first.Read)

	messages, err := store.Messages(context.Background(), conversation.Key)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.True(t, chat.Ordered(messages))
}

func TestChatStoreAppendToMissingConversation(t *testing.T) {
	store := memory.NewChatStore()
	_, err := store.AppendMessage(context.Background(), "r1_o1_l1", "r1", "hello")
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestChatStoreMarkMessageRead(t *testing.T) {
	store := memory.NewChatStore()
	conversation := mustConversation(t, "r1", "o1", "l1")
	_, _, err := store.EnsureConversation(context.Background(), conversation)
	require.NoError(t, err)
	message, err := store.AppendMessage(context.Background(), conversation.Key, "o1", "hello")
	require.NoError(t, err)

	require.NoError(t, store.MarkMessageRead(context.Background(), conversation.Key, message.ID))
	// idempotent
	require.NoError(t, store.MarkMessageRead(context.Background(), conversation.Key, message.ID))

	messages, err := store.Messages(context.Background(), conversation.Key)
	require.NoError(t, err)
	assert.True(t, messages[0].Read)

	err = store.MarkMessageRead(context.Background(), conversation.Key, "missing")
	assert.ErrorIs(t, err, chat.ErrMessageNotFound)
}

func TestChatStoreSubscribeDeliversFullSnapshots(t *testing.T) {
	store := memory.NewChatStore()
	conversation := mustConversation(t, "r1", "o1", "l1")
	_, _, err := store.EnsureConversation(context.Background(), conversation)
	require.NoError(t, err)
	_, err = store.AppendMessage(context.Background(), conversation.Key, "r1", "before subscribe")
	require.NoError(t, err)

	feed, err := store.SubscribeMessages(context.Background(), conversation.Key)
	require.NoError(t, err)
	defer feed.Close()

	initial := receiveSnapshot(t, feed)
	require.Len(t, initial, 1)
	assert.Equal(t, "before subscribe", initial[0].Text)

	_, err = store.AppendMessage(context.Background(), conversation.Key, "o1", "after subscribe")
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for {
		snapshot := receiveSnapshot(t, feed)
		if len(snapshot) == 2 {
			assert.True(t, chat.Ordered(snapshot))
			break
		}
		require.False(t, time.Now().After(deadline))
	}
}

func TestChatStoreSubscribeMissingConversation(t *testing.T) {
	store := memory.NewChatStore()
	_, err := store.SubscribeMessages(context.Background(), "r1_o1_l1")
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestChatStoreFeedCloseEndsStream(t *testing.T) {
	store := memory.NewChatStore()
	conversation := mustConversation(t, "r1", "o1", "l1")
	_, _, err := store.EnsureConversation(context.Background(), conversation)
	require.NoError(t, err)

	feed, err := store.SubscribeMessages(context.Background(), conversation.Key)
	require.NoError(t, err)
	receiveSnapshot(t, feed)

	feed.Close()
	feed.Close() // double close is safe

	select {
	case _, open := <-feed.Snapshots():
		assert.False(t, open, "channel closes after Close")
	case <-time.After(time.Second):
		t.Fatal("snapshot channel never closed")
	}

	// writes after close must not block on the dead watcher
	_, err = store.AppendMessage(context.Background(), conversation.Key, "r1", "still fine")
	require.NoError(t, err)
}

func receiveSnapshot(t *testing.T, feed chat.MessageFeed) []chat.Message {
	t.Helper()
	select {
	case snapshot := <-feed.Snapshots():
		return snapshot
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed snapshot")
		return nil
	}
}
