package chat

import "time"

type ConversationCreatedEvent struct {
	Key       Key       `json:"key"`
	ListingID string    `json:"listing_id"`
	RenterID  string    `json:"renter_id"`
	OwnerID   string    `json:"owner_id"`
	At        time.Time `json:"at"`
}

func (e ConversationCreatedEvent) EventName() string     { return "chat.conversation.created" }
func (e ConversationCreatedEvent) AggregateID() string   { return string(e.Key) }
func (e ConversationCreatedEvent) OccurredAt() time.Time { return e.At }

type MessageSentEvent struct {
	Key       Key       `json:"key"`
	MessageID string    `json:"message_id"`
	SenderID  string    `json:"sender_id"`
	At        time.Time `json:"at"`
}

func (e MessageSentEvent) EventName() string     { return "chat.message.sent" }
func (e MessageSentEvent) AggregateID() string   { return string(e.Key) }
func (e MessageSentEvent) OccurredAt() time.Time { return e.At }
