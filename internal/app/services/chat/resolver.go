package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	appoutbox "github.com/Shreenikagenaiapps/nestmate-app/internal/app/outbox"
	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

var (
	ErrListingNotFound = errors.New("chat: no such listing")
	ErrUnauthorized    = errors.New("chat: unauthorized")
)

// Mode tells which side of a listing the viewer is on.
type Mode string

const (
	// ModeRenter means exactly one conversation exists for the viewer and
	// its key is computable without a query.
	ModeRenter Mode = "renter"
	// ModeOwner means the viewer enumerates every renter-initiated thread
	// for the listing.
	ModeOwner Mode = "owner"
)

// Resolution is the outcome of resolving a listing for a viewer. In renter
// mode Conversation is set; in owner mode Threads holds zero or more
// conversations sorted by last activity.
type Resolution struct {
	Mode         Mode
	Conversation *domainchat.Conversation
	Threads      []domainchat.Conversation
}

// Resolver determines the viewer's role for a listing and materializes the
// conversation(s) to subscribe to. Renter-side resolution lazily creates
// the conversation document; the deterministic key makes the create
// idempotent under concurrent initiations.
type Resolver struct {
	Listings domainlistings.Repository
	Store    domainchat.Store
	Outbox   appoutbox.Outbox
	Encoder  appoutbox.EventEncoder
	Logger   *slog.Logger
	Now      func() time.Time
}

func (r *Resolver) Resolve(ctx context.Context, listingID, viewerID string) (*Resolution, error) {
	if err := r.ensureDependencies(); err != nil {
		return nil, err
	}
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, ErrUnauthorized
	}
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return nil, ErrListingNotFound
	}

	listing, err := r.Listings.ByID(ctx, domainlistings.ListingID(listingID))
	if err != nil {
		if errors.Is(err, domainlistings.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("chat: load listing: %w", err)
	}

	if listing.IsOwner(viewerID) {
		return r.resolveOwner(ctx, listingID)
	}
	return r.resolveRenter(ctx, listing, viewerID)
}

// ResolveKey computes the canonical key for a renter viewing a listing
// without touching the store. Owner viewers have no single key.
func (r *Resolver) ResolveKey(listing *domainlistings.Listing, viewerID string) (domainchat.Key, error) {
	if listing.IsOwner(viewerID) {
		return "", fmt.Errorf("chat: owner has no single conversation key")
	}
	return domainchat.NewKey(viewerID, string(listing.Owner), string(listing.ID))
}

func (r *Resolver) resolveOwner(ctx context.Context, listingID string) (*Resolution, error) {
	threads, err := r.Store.ConversationsByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("chat: enumerate threads: %w", err)
	}
	domainchat.SortByActivity(threads)
	return &Resolution{Mode: ModeOwner, Threads: threads}, nil
}

func (r *Resolver) resolveRenter(ctx context.Context, listing *domainlistings.Listing, viewerID string) (*Resolution, error) {
	key, err := domainchat.NewKey(viewerID, string(listing.Owner), string(listing.ID))
	if err != nil {
		return nil, err
	}
	conversation, err := domainchat.NewConversation(key, r.now())
	if err != nil {
		return nil, err
	}
	stored, created, err := r.Store.EnsureConversation(ctx, conversation)
	if err != nil {
		return nil, fmt.Errorf("chat: ensure conversation: %w", err)
	}
	if created {
		if r.Logger != nil {
			r.Logger.Info("conversation created", "key", key, "listing_id", listing.ID, "renter_id", viewerID)
		}
		if err := appoutbox.RecordDomainEvents(ctx, r.Outbox, r.Encoder, domainchat.ConversationCreatedEvent{
			Key:       stored.Key,
			ListingID: stored.ListingID,
			RenterID:  stored.RenterID,
			OwnerID:   stored.OwnerID,
			At:        stored.CreatedAt,
		}); err != nil && r.Logger != nil {
			r.Logger.Warn("conversation event not recorded", "key", key, "error", err)
		}
	}
	return &Resolution{Mode: ModeRenter, Conversation: stored}, nil
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) ensureDependencies() error {
	switch {
	case r.Listings == nil:
		return errors.New("chat: listing repository required")
	case r.Store == nil:
		return errors.New("chat: store required")
	default:
		return nil
	}
}
