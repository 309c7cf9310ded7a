package chat

import (
	"errors"
	"time"
)

var (
	ErrTextRequired    = errors.New("chat: message text is required")
	ErrSenderRequired  = errors.New("chat: sender id is required")
	ErrMessageNotFound = errors.New("chat: message not found")
)

// Message is one utterance in a conversation. The id and creation timestamp
// are assigned by the store at insert time, never by the caller, so ordering
// is independent of client clock skew. Messages are append-only; the read
// flag is the only mutable field.
type Message struct {
	ID              string
	ConversationKey Key
	SenderID        string
	Text            string
	CreatedAt       time.Time
	Read            bool
}

// Ordered reports whether messages are in non-decreasing creation order.
// Ties are legal: the store breaks them by insertion sequence.
func Ordered(messages []Message) bool {
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			return false
		}
	}
	return true
}

// UnreadFrom selects messages not yet marked read whose sender is someone
// other than viewerID. Used by the feed to flip read flags on delivery.
func UnreadFrom(messages []Message, viewerID string) []Message {
	var out []Message
	for _, m := range messages {
		if !m.Read && m.SenderID != viewerID {
			out = append(out, m)
		}
	}
	return out
}
