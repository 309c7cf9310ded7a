package catalog_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/catalog"
	domainbooking "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/booking"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
	domainuser "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/user"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/storage/memory"
)

type catalogFixture struct {
	users    *memory.UserRepository
	listings *memory.ListingRepository
	box      *memory.Outbox
	service  *catalogsvc.Service
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	users := memory.NewUserRepository()
	listings := memory.NewListingRepository()
	box := memory.NewOutbox()
	fx := &catalogFixture{
		users:    users,
		listings: listings,
		box:      box,
		service: &catalogsvc.Service{
			Listings: listings,
			Bookings: memory.NewBookingRepository(),
			Users:    users,
			Outbox:   box,
		},
	}
	fx.addUser(t, "owner-1", "owner@example.com", "sunrise-towers")
	fx.addUser(t, "renter-1", "renter@example.com", "sunrise-towers")
	fx.addUser(t, "outsider-1", "outsider@example.com", "palm-meadows")
	return fx
}

func (fx *catalogFixture) addUser(t *testing.T, id, email, apartmentID string) {
	t.Helper()
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Email:        email,
		Name:         id,
		PasswordHash: "hash",
		ApartmentID:  apartmentID,
	})
	require.NoError(t, err)
	require.NoError(t, fx.users.Save(context.Background(), user))
}

func (fx *catalogFixture) createListing(t *testing.T, title string) *domainlistings.Listing {
	t.Helper()
	listing, err := fx.service.CreateListing(context.Background(), catalogsvc.CreateListingParams{
		OwnerID:     "owner-1",
		ApartmentID: "sunrise-towers",
		Title:       title,
		PriceCents:  900,
		Details:     domainlistings.ToyDetails{},
	})
	require.NoError(t, err)
	return listing
}

func TestCreateListingRecordsEvent(t *testing.T) {
	fx := newCatalogFixture(t)
	listing := fx.createListing(t, "Lego set")

	assert.Equal(t, domainlistings.StatusAvailable, listing.Status)
	docs := fx.box.List()
	require.Len(t, docs, 1)
	assert.Equal(t, "listing.created", docs[0].Name)
}

func TestBrowseIsScopedToViewerCommunity(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.createListing(t, "Lego set")

	visible, err := fx.service.Browse(context.Background(), "renter-1", domainlistings.Filter{})
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	hidden, err := fx.service.Browse(context.Background(), "outsider-1", domainlistings.Filter{})
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestListingOutsideCommunityIsHidden(t *testing.T) {
	fx := newCatalogFixture(t)
	listing := fx.createListing(t, "Lego set")

	_, err := fx.service.Listing(context.Background(), "outsider-1", string(listing.ID))
	assert.ErrorIs(t, err, catalogsvc.ErrOutsideCommune)

	got, err := fx.service.Listing(context.Background(), "renter-1", string(listing.ID))
	require.NoError(t, err)
	assert.Equal(t, listing.ID, got.ID)
}

func TestBookFlipsStatusAndRecordsBooking(t *testing.T) {
	fx := newCatalogFixture(t)
	listing := fx.createListing(t, "Lego set")

	booking, err := fx.service.Book(context.Background(), "renter-1", string(listing.ID))
	require.NoError(t, err)
	assert.Equal(t, "renter-1", booking.RenterID)
	assert.Equal(t, "owner-1", booking.OwnerID)

	stored, err := fx.listings.ByID(context.Background(), listing.ID)
	require.NoError(t, err)
	assert.Equal(t, domainlistings.StatusBooked, stored.Status)

	mine, err := fx.service.MyBookings(context.Background(), "renter-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, booking.ID, mine[0].ID)
	assert.Equal(t, "Lego set", mine[0].ListingTitle)
}

func TestBookRejectsSecondRenter(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.addUser(t, "renter-2", "renter2@example.com", "sunrise-towers")
	listing := fx.createListing(t, "Lego set")

	_, err := fx.service.Book(context.Background(), "renter-1", string(listing.ID))
	require.NoError(t, err)
	_, err = fx.service.Book(context.Background(), "renter-2", string(listing.ID))
	assert.ErrorIs(t, err, domainlistings.ErrAlreadyBooked)
}

func TestBookRejectsOwnerAndOutsider(t *testing.T) {
	fx := newCatalogFixture(t)
	listing := fx.createListing(t, "Lego set")

	_, err := fx.service.Book(context.Background(), "owner-1", string(listing.ID))
	assert.ErrorIs(t, err, domainbooking.ErrOwnBooking)

	_, err = fx.service.Book(context.Background(), "outsider-1", string(listing.ID))
	assert.ErrorIs(t, err, catalogsvc.ErrOutsideCommune)
}

type fakeUploader struct {
	names []string
}

func (u *fakeUploader) Upload(_ context.Context, name string, _ io.Reader, _ int64, _ string) (string, error) {
	u.names = append(u.names, name)
	return "https://cdn.example.com/" + name, nil
}

func TestAttachPhotoOwnerOnly(t *testing.T) {
	fx := newCatalogFixture(t)
	uploader := &fakeUploader{}
	fx.service.Uploader = uploader
	listing := fx.createListing(t, "Lego set")

	updated, err := fx.service.AttachPhoto(context.Background(), "owner-1", string(listing.ID), "Front View.JPG", strings.NewReader("bytes"), 5, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(updated.ImageURL, "front-view.jpg"))
	require.Len(t, uploader.names, 1)
	assert.True(t, strings.HasPrefix(uploader.names[0], "listings/"+string(listing.ID)+"/"))

	_, err = fx.service.AttachPhoto(context.Background(), "renter-1", string(listing.ID), "x.jpg", strings.NewReader("bytes"), 5, "image/jpeg")
	assert.ErrorIs(t, err, catalogsvc.ErrForbidden)
	assert.Len(t, uploader.names, 1, "denied upload must not reach storage")
}

func TestBrowseNewestFirstWithFilter(t *testing.T) {
	fx := newCatalogFixture(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	fx.service.Now = func() time.Time { now = now.Add(time.Minute); return now }

	fx.createListing(t, "Lego set")
	second := fx.createListing(t, "Toy train")

	visible, err := fx.service.Browse(context.Background(), "renter-1", domainlistings.Filter{})
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, second.ID, visible[0].ID)

	filtered, err := fx.service.Browse(context.Background(), "renter-1", domainlistings.Filter{Query: "train"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)
}
