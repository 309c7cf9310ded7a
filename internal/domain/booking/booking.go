package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

var (
	ErrIDRequired      = errors.New("booking: id is required")
	ErrListingRequired = errors.New("booking: listing id is required")
	ErrRenterRequired  = errors.New("booking: renter id is required")
	ErrOwnBooking      = errors.New("booking: cannot book own listing")
	ErrNotFound        = errors.New("booking: not found")
)

type BookingID string

// Booking records that a renter took a listing. The listing's status flag
// is the authoritative availability signal; the booking document is the
// renter-facing history entry.
type Booking struct {
	ID        BookingID
	ListingID listings.ListingID
	RenterID  string
	OwnerID   string
	CreatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ByRenter(ctx context.Context, renterID string) ([]Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listings.ListingID
	RenterID  string
	OwnerID   string
	Now       time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.ListingID)) == "" {
		return nil, ErrListingRequired
	}
	renter := strings.TrimSpace(params.RenterID)
	if renter == "" {
		return nil, ErrRenterRequired
	}
	if renter == strings.TrimSpace(params.OwnerID) {
		return nil, ErrOwnBooking
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		RenterID:  renter,
		OwnerID:   strings.TrimSpace(params.OwnerID),
		CreatedAt: now.UTC(),
	}, nil
}

type BookingCreatedEvent struct {
	BookingID BookingID          `json:"booking_id"`
	ListingID listings.ListingID `json:"listing_id"`
	RenterID  string             `json:"renter_id"`
	At        time.Time          `json:"at"`
}

func (e BookingCreatedEvent) EventName() string     { return "booking.created" }
func (e BookingCreatedEvent) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreatedEvent) OccurredAt() time.Time { return e.At }
