package chat

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrKeyRequired          = errors.New("chat: conversation key is required")
)

// Conversation is one chat thread between a renter and a listing owner.
// The listing id and the participants set are stored redundantly next to the
// encoded key: the key's internal structure is not queryable, so owner-mode
// enumeration filters on these indexed fields instead of on key patterns.
type Conversation struct {
	Key          Key
	RenterID     string
	OwnerID      string
	ListingID    string
	Participants []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewConversation derives a conversation document from its key. Both
// timestamps start at now; UpdatedAt moves on every message send.
func NewConversation(key Key, now time.Time) (*Conversation, error) {
	renter, owner, listing, err := key.Parts()
	if err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Conversation{
		Key:          key,
		RenterID:     renter,
		OwnerID:      owner,
		ListingID:    listing,
		Participants: NormalizeParticipants([]string{renter, owner}),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasParticipant reports whether the user belongs to the thread.
func (c *Conversation) HasParticipant(userID string) bool {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// CounterpartOf returns the other participant, or "" when the user is not a
// participant.
func (c *Conversation) CounterpartOf(userID string) string {
	switch userID {
	case c.RenterID:
		return c.OwnerID
	case c.OwnerID:
		return c.RenterID
	default:
		return ""
	}
}

// LastActivity is the sort instant for thread lists. Advisory only.
func (c *Conversation) LastActivity() time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// NormalizeParticipants trims, deduplicates and sorts participant ids.
func NormalizeParticipants(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SortByActivity orders conversations newest-activity first, key as
// tie-break so the order is stable across deliveries.
func SortByActivity(conversations []Conversation) {
	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].LastActivity(), conversations[j].LastActivity()
		if a.Equal(b) {
			return conversations[i].Key < conversations[j].Key
		}
		return a.After(b)
	})
}
