package listings_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

func validParams() listings.CreateParams {
	return listings.CreateParams{
		ID:          "l1",
		Owner:       "o1",
		ApartmentID: "sunrise-towers",
		Title:       "Mountain bike",
		PriceCents:  1500,
		Details:     listings.EquipmentDetails{},
	}
}

func TestNewListingDefaults(t *testing.T) {
	listing, err := listings.NewListing(validParams())
	require.NoError(t, err)
	assert.Equal(t, listings.StatusAvailable, listing.Status)
	assert.Equal(t, listings.CategoryEquipment, listing.Category())
	assert.Equal(t, listing.CreatedAt, listing.UpdatedAt)
}

func TestNewListingValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*listings.CreateParams)
		want   error
	}{
		{"missing id", func(p *listings.CreateParams) { p.ID = " " }, listings.ErrIDRequired},
		{"missing owner", func(p *listings.CreateParams) { p.Owner = "" }, listings.ErrOwnerRequired},
		{"missing apartment", func(p *listings.CreateParams) { p.ApartmentID = "" }, listings.ErrApartmentRequired},
		{"missing title", func(p *listings.CreateParams) { p.Title = "  " }, listings.ErrTitleRequired},
		{"negative price", func(p *listings.CreateParams) { p.PriceCents = -1 }, listings.ErrPriceNegative},
		{"invalid details", func(p *listings.CreateParams) { p.Details = listings.CarDetails{Brand: "Tata"} }, listings.ErrSeatsCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams()
			tc.mutate(&params)
			_, err := listings.NewListing(params)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBookAndRelease(t *testing.T) {
	listing, err := listings.NewListing(validParams())
	require.NoError(t, err)
	now := time.Now()

	require.NoError(t, listing.Book(now))
	assert.Equal(t, listings.StatusBooked, listing.Status)
	assert.ErrorIs(t, listing.Book(now), listings.ErrAlreadyBooked)

	require.NoError(t, listing.Release(now))
	assert.Equal(t, listings.StatusAvailable, listing.Status)
	assert.ErrorIs(t, listing.Release(now), listings.ErrNotBooked)
}

func TestIsOwner(t *testing.T) {
	listing, err := listings.NewListing(validParams())
	require.NoError(t, err)
	assert.True(t, listing.IsOwner("o1"))
	assert.False(t, listing.IsOwner("o2"))
	assert.False(t, listing.IsOwner(""))
}
