package listings

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired        = errors.New("listings: id is required")
	ErrOwnerRequired     = errors.New("listings: owner is required")
	ErrApartmentRequired = errors.New("listings: apartment id is required")
	ErrTitleRequired     = errors.New("listings: title is required")
	ErrPriceNegative     = errors.New("listings: price must be non-negative")
	ErrAlreadyBooked     = errors.New("listings: already booked")
	ErrNotBooked         = errors.New("listings: not booked")
	ErrNotFound          = errors.New("listings: not found")
)

type ListingID string
type OwnerID string

// Status is the rental state of a listing. A single flag, flipped by
// booking and release; there is no richer lifecycle.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusBooked    Status = "Booked"
)

// Listing is one rentable item scoped to an apartment community. The
// category-specific attributes live in the Details union rather than as a
// sprawl of optional fields.
type Listing struct {
	ID            ListingID
	Owner         OwnerID
	ApartmentID   string
	Title         string
	Description   string
	PriceCents    int64
	ImageURL      string
	Location      string
	Status        Status
	Details       Details
	AvailableFrom time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	// ByApartment returns community listings newest first, filtered.
	ByApartment(ctx context.Context, apartmentID string, filter Filter) ([]Listing, error)
	ByOwner(ctx context.Context, owner OwnerID) ([]Listing, error)
}

type CreateParams struct {
	ID            ListingID
	Owner         OwnerID
	ApartmentID   string
	Title         string
	Description   string
	PriceCents    int64
	ImageURL      string
	Location      string
	Details       Details
	AvailableFrom time.Time
	Now           time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.Owner)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.ApartmentID) == "" {
		return nil, ErrApartmentRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if params.PriceCents < 0 {
		return nil, ErrPriceNegative
	}
	details := params.Details
	if details == nil {
		details = OtherDetails{}
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &Listing{
		ID:            ListingID(strings.TrimSpace(string(params.ID))),
		Owner:         OwnerID(strings.TrimSpace(string(params.Owner))),
		ApartmentID:   strings.TrimSpace(params.ApartmentID),
		Title:         title,
		Description:   strings.TrimSpace(params.Description),
		PriceCents:    params.PriceCents,
		ImageURL:      strings.TrimSpace(params.ImageURL),
		Location:      strings.TrimSpace(params.Location),
		Status:        StatusAvailable,
		Details:       details,
		AvailableFrom: params.AvailableFrom,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Book flips the listing to Booked.
func (l *Listing) Book(now time.Time) error {
	if l.Status == StatusBooked {
		return ErrAlreadyBooked
	}
	l.Status = StatusBooked
	l.touch(now)
	return nil
}

// Release makes a booked listing available again.
func (l *Listing) Release(now time.Time) error {
	if l.Status != StatusBooked {
		return ErrNotBooked
	}
	l.Status = StatusAvailable
	l.touch(now)
	return nil
}

func (l *Listing) IsOwner(userID string) bool {
	return userID != "" && string(l.Owner) == userID
}

func (l *Listing) Category() Category {
	if l.Details == nil {
		return CategoryOther
	}
	return l.Details.Category()
}

func (l *Listing) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	l.UpdatedAt = now.UTC()
}
