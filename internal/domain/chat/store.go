package chat

import (
	"context"
	"time"
)

// Store is the document-store surface the chat component needs. The
// conversation document lives at a path derived from its Key, which makes
// EnsureConversation idempotent by construction: concurrent ensures for the
// same key settle on a single record.
type Store interface {
	// Conversation loads a thread by key. ErrConversationNotFound when absent.
	Conversation(ctx context.Context, key Key) (*Conversation, error)
	// EnsureConversation creates the thread if it does not exist and returns
	// the stored record plus whether this call created it. Metadata fields
	// are immutable after creation; re-ensuring an existing thread is a
	// no-op that returns created=false.
	EnsureConversation(ctx context.Context, conversation *Conversation) (*Conversation, bool, error)
	// TouchConversation bumps the last-activity timestamp. Advisory.
	TouchConversation(ctx context.Context, key Key, at time.Time) error
	// ConversationsByListing enumerates threads for a listing via the
	// secondary listing-id index.
	ConversationsByListing(ctx context.Context, listingID string) ([]Conversation, error)
	// ConversationsByParticipant enumerates threads a user belongs to.
	ConversationsByParticipant(ctx context.Context, userID string) ([]Conversation, error)

	// AppendMessage inserts a message with a store-assigned id and creation
	// timestamp and read=false. Inserts never overwrite each other.
	AppendMessage(ctx context.Context, key Key, senderID, text string) (*Message, error)
	// Messages returns the full message list in ascending creation order.
	Messages(ctx context.Context, key Key) ([]Message, error)
	// MarkMessageRead flips a message's read flag. Idempotent.
	MarkMessageRead(ctx context.Context, key Key, messageID string) error

	// SubscribeMessages opens a live feed for one conversation. Every
	// delivery on Snapshots is the complete current ascending list, not a
	// delta; the first delivery reflects the state at subscribe time.
	SubscribeMessages(ctx context.Context, key Key) (MessageFeed, error)
}

// MessageFeed is a live materialized-view stream over one conversation's
// messages. Close releases the underlying listener; the snapshot channel is
// closed afterwards.
type MessageFeed interface {
	Snapshots() <-chan []Message
	Close()
}
