package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "github.com/Shreenikagenaiapps/nestmate-app/internal/app/outbox"
	domainbooking "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/booking"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
	domainuser "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/user"
)

var (
	ErrUnauthorized   = errors.New("catalog: unauthorized")
	ErrForbidden      = errors.New("catalog: forbidden")
	ErrOutsideCommune = errors.New("catalog: listing outside your community")
)

// Uploader stores a listing photo and returns a public URL for it.
type Uploader interface {
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
}

// Service covers the listing catalog and booking flows. Browsing is scoped
// to the viewer's apartment community; booking flips the listing status and
// records a booking document for the renter's history.
type Service struct {
	Listings domainlistings.Repository
	Bookings domainbooking.Repository
	Users    domainuser.Repository
	Uploader Uploader
	Outbox   appoutbox.Outbox
	Encoder  appoutbox.EventEncoder
	Logger   *slog.Logger
	Now      func() time.Time
}

type CreateListingParams struct {
	OwnerID       string
	ApartmentID   string
	Title         string
	Description   string
	PriceCents    int64
	ImageURL      string
	Location      string
	Details       domainlistings.Details
	AvailableFrom time.Time
}

func (s *Service) CreateListing(ctx context.Context, params CreateListingParams) (*domainlistings.Listing, error) {
	if s.Listings == nil {
		return nil, errors.New("catalog: listing repository required")
	}
	if strings.TrimSpace(params.OwnerID) == "" {
		return nil, ErrUnauthorized
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:            domainlistings.ListingID(uuid.NewString()),
		Owner:         domainlistings.OwnerID(params.OwnerID),
		ApartmentID:   params.ApartmentID,
		Title:         params.Title,
		Description:   params.Description,
		PriceCents:    params.PriceCents,
		ImageURL:      params.ImageURL,
		Location:      params.Location,
		Details:       params.Details,
		AvailableFrom: params.AvailableFrom,
		Now:           s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, fmt.Errorf("catalog: save listing: %w", err)
	}
	if err := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, domainlistings.ListingCreatedEvent{
		ListingID:   listing.ID,
		Owner:       listing.Owner,
		ApartmentID: listing.ApartmentID,
		Category:    listing.Category(),
		At:          listing.CreatedAt,
	}); err != nil && s.Logger != nil {
		s.Logger.Warn("listing event not recorded", "listing_id", listing.ID, "error", err)
	}
	if s.Logger != nil {
		s.Logger.Info("listing created", "listing_id", listing.ID, "owner_id", listing.Owner, "category", listing.Category())
	}
	return listing, nil
}

// Browse returns the viewer's community listings, newest first. Viewers only
// ever see the catalog of their own apartment.
func (s *Service) Browse(ctx context.Context, viewerID string, filter domainlistings.Filter) ([]domainlistings.Listing, error) {
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return s.Listings.ByApartment(ctx, viewer.ApartmentID, filter)
}

func (s *Service) Listing(ctx context.Context, viewerID, listingID string) (*domainlistings.Listing, error) {
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	listing, err := s.Listings.ByID(ctx, domainlistings.ListingID(strings.TrimSpace(listingID)))
	if err != nil {
		return nil, err
	}
	if listing.ApartmentID != viewer.ApartmentID {
		return nil, ErrOutsideCommune
	}
	return listing, nil
}

func (s *Service) MyListings(ctx context.Context, ownerID string) ([]domainlistings.Listing, error) {
	if s.Listings == nil {
		return nil, errors.New("catalog: listing repository required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrUnauthorized
	}
	return s.Listings.ByOwner(ctx, domainlistings.OwnerID(ownerID))
}

// AttachPhoto uploads a photo and stores its URL on the listing. Only the
// owner may attach photos.
func (s *Service) AttachPhoto(ctx context.Context, ownerID, listingID, filename string, reader io.Reader, size int64, contentType string) (*domainlistings.Listing, error) {
	if s.Uploader == nil {
		return nil, errors.New("catalog: uploader required")
	}
	listing, err := s.Listings.ByID(ctx, domainlistings.ListingID(strings.TrimSpace(listingID)))
	if err != nil {
		return nil, err
	}
	if !listing.IsOwner(strings.TrimSpace(ownerID)) {
		return nil, ErrForbidden
	}
	name := fmt.Sprintf("listings/%s/%s-%s", listing.ID, uuid.NewString(), sanitizeFilename(filename))
	url, err := s.Uploader.Upload(ctx, name, reader, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("catalog: upload photo: %w", err)
	}
	listing.ImageURL = url
	listing.UpdatedAt = s.now().UTC()
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, fmt.Errorf("catalog: save listing: %w", err)
	}
	return listing, nil
}

// Book takes an available listing for the renter. The status flip and the
// booking record go to their stores in that order; the flip is what blocks
// a second renter.
func (s *Service) Book(ctx context.Context, renterID, listingID string) (*domainbooking.Booking, error) {
	if s.Bookings == nil {
		return nil, errors.New("catalog: booking repository required")
	}
	renter, err := s.viewer(ctx, renterID)
	if err != nil {
		return nil, err
	}
	listing, err := s.Listings.ByID(ctx, domainlistings.ListingID(strings.TrimSpace(listingID)))
	if err != nil {
		return nil, err
	}
	if listing.ApartmentID != renter.ApartmentID {
		return nil, ErrOutsideCommune
	}
	if listing.IsOwner(string(renter.ID)) {
		return nil, domainbooking.ErrOwnBooking
	}
	now := s.now()
	if err := listing.Book(now); err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, listing); err != nil {
		return nil, fmt.Errorf("catalog: save listing: %w", err)
	}
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(uuid.NewString()),
		ListingID: listing.ID,
		RenterID:  string(renter.ID),
		OwnerID:   string(listing.Owner),
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Bookings.Save(ctx, booking); err != nil {
		return nil, fmt.Errorf("catalog: save booking: %w", err)
	}
	if err := appoutbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder,
		domainlistings.ListingBookedEvent{ListingID: listing.ID, RenterID: booking.RenterID, At: booking.CreatedAt},
		domainbooking.BookingCreatedEvent{BookingID: booking.ID, ListingID: booking.ListingID, RenterID: booking.RenterID, At: booking.CreatedAt},
	); err != nil && s.Logger != nil {
		s.Logger.Warn("booking events not recorded", "booking_id", booking.ID, "error", err)
	}
	if s.Logger != nil {
		s.Logger.Info("listing booked", "listing_id", listing.ID, "renter_id", booking.RenterID)
	}
	return booking, nil
}

// BookingView joins a booking with its listing for the renter's history.
type BookingView struct {
	domainbooking.Booking
	ListingTitle    string
	ListingImageURL string
}

func (s *Service) MyBookings(ctx context.Context, renterID string) ([]BookingView, error) {
	if s.Bookings == nil {
		return nil, errors.New("catalog: booking repository required")
	}
	if strings.TrimSpace(renterID) == "" {
		return nil, ErrUnauthorized
	}
	bookings, err := s.Bookings.ByRenter(ctx, strings.TrimSpace(renterID))
	if err != nil {
		return nil, err
	}
	views := make([]BookingView, 0, len(bookings))
	for _, booking := range bookings {
		view := BookingView{Booking: booking}
		if listing, err := s.Listings.ByID(ctx, booking.ListingID); err == nil {
			view.ListingTitle = listing.Title
			view.ListingImageURL = listing.ImageURL
		} else if s.Logger != nil {
			s.Logger.Warn("booking references missing listing", "booking_id", booking.ID, "listing_id", booking.ListingID)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) viewer(ctx context.Context, viewerID string) (*domainuser.User, error) {
	if s.Listings == nil {
		return nil, errors.New("catalog: listing repository required")
	}
	if s.Users == nil {
		return nil, errors.New("catalog: user repository required")
	}
	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return nil, ErrUnauthorized
	}
	viewer, err := s.Users.ByID(ctx, domainuser.ID(viewerID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return viewer, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "photo"
	}
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	name = strings.ReplaceAll(name, " ", "-")
	return strings.ToLower(name)
}
