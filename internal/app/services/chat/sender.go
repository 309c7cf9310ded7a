package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	appoutbox "github.com/Shreenikagenaiapps/nestmate-app/internal/app/outbox"
	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

var (
	ErrListingBooked  = errors.New("chat: listing is booked")
	ErrNotParticipant = errors.New("chat: not a conversation participant")
)

// Sender appends messages to a conversation. The booked-listing gate is an
// application policy, not a storage invariant: the store would accept the
// write, the product rule rejects it before any mutation happens.
type Sender struct {
	Listings domainlistings.Repository
	Store    domainchat.Store
	Outbox   appoutbox.Outbox
	Encoder  appoutbox.EventEncoder
	Logger   *slog.Logger
}

func (s *Sender) Send(ctx context.Context, key domainchat.Key, senderID, text string) (*domainchat.Message, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domainchat.ErrTextRequired
	}
	senderID = strings.TrimSpace(senderID)
	if senderID == "" {
		return nil, domainchat.ErrSenderRequired
	}
	if _, err := domainchat.ParseKey(string(key)); err != nil {
		return nil, err
	}

	conversation, err := s.Store.Conversation(ctx, key)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	listing, err := s.Listings.ByID(ctx, domainlistings.ListingID(conversation.ListingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("chat: load listing: %w", err)
	}
	if listing.Status == domainlistings.StatusBooked && !listing.IsOwner(senderID) {
		return nil, ErrListingBooked
	}

	message, err := s.Store.AppendMessage(ctx, key, senderID, text)
	if err != nil {
		return nil, fmt.Errorf("chat: append message: %w", err)
	}

	// The message is durable at this point. Everything below is advisory
	// and must not fail the send.
	BestEffort(s.Logger, "touch conversation", func() error {
		return s.Store.TouchConversation(ctx, key, message.CreatedAt)
	})
	if err := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, domainchat.MessageSentEvent{
		Key:       key,
		MessageID: message.ID,
		SenderID:  senderID,
		At:        message.CreatedAt,
	}); err != nil && s.Logger != nil {
		s.Logger.Warn("message event not recorded", "key", key, "error", err)
	}
	return message, nil
}

// MarkConversationRead flips the read flag on every unread counterpart
// message. Used by the HTTP mark-read endpoint; the live feed does the same
// per snapshot.
func (s *Sender) MarkConversationRead(ctx context.Context, key domainchat.Key, viewerID string) (int, error) {
	if s.Store == nil {
		return 0, errors.New("chat: store required")
	}
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return 0, ErrUnauthorized
	}
	conversation, err := s.Store.Conversation(ctx, key)
	if err != nil {
		return 0, err
	}
	if !conversation.HasParticipant(viewerID) {
		return 0, ErrNotParticipant
	}
	messages, err := s.Store.Messages(ctx, key)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, msg := range domainchat.UnreadFrom(messages, viewerID) {
		messageID := msg.ID
		BestEffort(s.Logger, "mark message read", func() error {
			return s.Store.MarkMessageRead(ctx, key, messageID)
		})
		marked++
	}
	return marked, nil
}

func (s *Sender) ensureDependencies() error {
	switch {
	case s.Listings == nil:
		return errors.New("chat: listing repository required")
	case s.Store == nil:
		return errors.New("chat: store required")
	default:
		return nil
	}
}
