package chat

import (
	"errors"
	"strings"
)

var (
	ErrRenterRequired  = errors.New("chat: renter id is required")
	ErrOwnerRequired   = errors.New("chat: owner id is required")
	ErrListingRequired = errors.New("chat: listing id is required")
	ErrSameParticipant = errors.New("chat: renter and owner must differ")
	ErrDelimiterInID   = errors.New("chat: ids must not contain the key delimiter")
	ErrMalformedKey    = errors.New("chat: malformed conversation key")
)

// KeyDelimiter separates the three components of a conversation key.
const KeyDelimiter = "_"

// Key identifies a conversation. It doubles as the storage location of the
// conversation document, so any participant who knows the triple can compute
// it without a query. The slot order is always renter, owner, listing; both
// sides derive the identical key for the same thread.
type Key string

// NewKey builds the canonical key for a renter/owner/listing triple.
func NewKey(renterID, ownerID, listingID string) (Key, error) {
	renterID = strings.TrimSpace(renterID)
	ownerID = strings.TrimSpace(ownerID)
	listingID = strings.TrimSpace(listingID)
	switch {
	case renterID == "":
		return "", ErrRenterRequired
	case ownerID == "":
		return "", ErrOwnerRequired
	case listingID == "":
		return "", ErrListingRequired
	case renterID == ownerID:
		return "", ErrSameParticipant
	}
	for _, id := range []string{renterID, ownerID, listingID} {
		if strings.Contains(id, KeyDelimiter) {
			return "", ErrDelimiterInID
		}
	}
	return Key(renterID + KeyDelimiter + ownerID + KeyDelimiter + listingID), nil
}

// ParseKey validates a raw key string and returns it as a Key.
func ParseKey(raw string) (Key, error) {
	key := Key(strings.TrimSpace(raw))
	if _, _, _, err := key.Parts(); err != nil {
		return "", err
	}
	return key, nil
}

// Parts splits the key back into its renter, owner and listing components.
func (k Key) Parts() (renterID, ownerID, listingID string, err error) {
	parts := strings.Split(string(k), KeyDelimiter)
	if len(parts) != 3 {
		return "", "", "", ErrMalformedKey
	}
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return "", "", "", ErrMalformedKey
		}
	}
	return parts[0], parts[1], parts[2], nil
}

func (k Key) String() string {
	return string(k)
}

// RenterID returns the renter component, or "" for a malformed key.
func (k Key) RenterID() string {
	renter, _, _, err := k.Parts()
	if err != nil {
		return ""
	}
	return renter
}

// OwnerID returns the owner component, or "" for a malformed key.
func (k Key) OwnerID() string {
	_, owner, _, err := k.Parts()
	if err != nil {
		return ""
	}
	return owner
}

// ListingID returns the listing component, or "" for a malformed key.
func (k Key) ListingID() string {
	_, _, listing, err := k.Parts()
	if err != nil {
		return ""
	}
	return listing
}
