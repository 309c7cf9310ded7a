package dto

import (
	"time"

	chatsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/chat"
	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
)

// Conversation describes chat thread metadata.
type Conversation struct {
	Key          string    `json:"key"`
	RenterID     string    `json:"renter_id"`
	OwnerID      string    `json:"owner_id"`
	ListingID    string    `json:"listing_id"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ConversationList struct {
	Items []Conversation `json:"items"`
}

// ChatMessage contains a single message payload.
type ChatMessage struct {
	ID              string    `json:"id"`
	ConversationKey string    `json:"conversation_key"`
	SenderID        string    `json:"sender_id"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"created_at"`
	Read            bool      `json:"read"`
}

type ChatMessageList struct {
	Items []ChatMessage `json:"items"`
}

// ChatResolution is the outcome of opening chat from a listing: either one
// conversation (renter) or a thread list (owner).
type ChatResolution struct {
	Mode         string         `json:"mode"`
	Conversation *Conversation  `json:"conversation,omitempty"`
	Threads      []Conversation `json:"threads,omitempty"`
}

func MapConversation(c *domainchat.Conversation) Conversation {
	if c == nil {
		return Conversation{}
	}
	return Conversation{
		Key:          string(c.Key),
		RenterID:     c.RenterID,
		OwnerID:      c.OwnerID,
		ListingID:    c.ListingID,
		Participants: append([]string(nil), c.Participants...),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func MapConversations(items []domainchat.Conversation) []Conversation {
	out := make([]Conversation, 0, len(items))
	for i := range items {
		out = append(out, MapConversation(&items[i]))
	}
	return out
}

func MapChatMessage(m *domainchat.Message) ChatMessage {
	if m == nil {
		return ChatMessage{}
	}
	return ChatMessage{
		ID:              m.ID,
		ConversationKey: string(m.ConversationKey),
		SenderID:        m.SenderID,
		Text:            m.Text,
		CreatedAt:       m.CreatedAt,
		Read:            m.Read,
	}
}

func MapChatMessages(items []domainchat.Message) ChatMessageList {
	out := ChatMessageList{Items: make([]ChatMessage, 0, len(items))}
	for i := range items {
		out.Items = append(out.Items, MapChatMessage(&items[i]))
	}
	return out
}

func MapChatResolution(res *chatsvc.Resolution) ChatResolution {
	if res == nil {
		return ChatResolution{}
	}
	out := ChatResolution{Mode: string(res.Mode)}
	if res.Conversation != nil {
		conversation := MapConversation(res.Conversation)
		out.Conversation = &conversation
	}
	if len(res.Threads) > 0 {
		out.Threads = MapConversations(res.Threads)
	}
	return out
}
