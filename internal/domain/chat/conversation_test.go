package chat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
)

func TestNewConversationDerivesFieldsFromKey(t *testing.T) {
	key, err := chat.NewKey("renter", "owner", "listing")
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	conversation, err := chat.NewConversation(key, now)
	require.NoError(t, err)

	assert.Equal(t, key, conversation.Key)
	assert.Equal(t, "renter", conversation.RenterID)
	assert.Equal(t, "owner", conversation.OwnerID)
	assert.Equal(t, "listing", conversation.ListingID)
	assert.Equal(t, []string{"owner", "renter"}, conversation.Participants)
	assert.Equal(t, now, conversation.CreatedAt)
	assert.Equal(t, now, conversation.UpdatedAt)
}

func TestConversationParticipants(t *testing.T) {
	key, err := chat.NewKey("renter", "owner", "listing")
	require.NoError(t, err)
	conversation, err := chat.NewConversation(key, time.Now())
	require.NoError(t, err)

	assert.True(t, conversation.HasParticipant("renter"))
	assert.True(t, conversation.HasParticipant("owner"))
	assert.False(t, conversation.HasParticipant("stranger"))
	assert.False(t, conversation.HasParticipant(""))

	assert.Equal(t, "owner", conversation.CounterpartOf("renter"))
	assert.Equal(t, "renter", conversation.CounterpartOf("owner"))
	assert.Empty(t, conversation.CounterpartOf("stranger"))
}

func TestSortByActivity(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	threads := []chat.Conversation{
		{Key: "b_o_l", UpdatedAt: base},
		{Key: "a_o_l", UpdatedAt: base.Add(time.Hour)},
		{Key: "c_o_l", UpdatedAt: base},
	}
	chat.SortByActivity(threads)

	assert.Equal(t, chat.Key("a_o_l"), threads[0].Key)
	// equal activity falls back to key order for stability
	assert.Equal(t, chat.Key("b_o_l"), threads[1].Key)
	assert.Equal(t, chat.Key("c_o_l"), threads[2].Key)
}

func TestUnreadFrom(t *testing.T) {
	messages := []chat.Message{
		{ID: "1", SenderID: "owner", Read: false},
		{ID: "2", SenderID: "renter", Read: false},
		{ID: "3", SenderID: "owner", Read: true},
		{ID: "4", SenderID: "owner", Read: false},
	}
	unread := chat.UnreadFrom(messages, "renter")
	require.Len(t, unread, 2)
	assert.Equal(t, "1", unread[0].ID)
	assert.Equal(t, "4", unread[1].ID)
}

func TestOrdered(t *testing.T) {
	base := time.Now()
	assert.True(t, chat.Ordered(nil))
	assert.True(t, chat.Ordered([]chat.Message{
		{CreatedAt: base},
		{CreatedAt: base},
		{CreatedAt: base.Add(time.Second)},
	}))
	assert.False(t, chat.Ordered([]chat.Message{
		{CreatedAt: base.Add(time.Second)},
		{CreatedAt: base},
	}))
}
