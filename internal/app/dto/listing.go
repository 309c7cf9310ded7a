package dto

import (
	"time"

	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

type Listing struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"owner_id"`
	ApartmentID   string          `json:"apartment_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	PriceCents    int64           `json:"price_cents"`
	ImageURL      string          `json:"image_url,omitempty"`
	Location      string          `json:"location,omitempty"`
	Status        string          `json:"status"`
	Category      string          `json:"category"`
	Details       *ListingDetails `json:"details,omitempty"`
	AvailableFrom time.Time       `json:"available_from,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ListingDetails flattens the category union; only the fields of the
// listing's category are populated.
type ListingDetails struct {
	Bedrooms  int    `json:"bedrooms,omitempty"`
	Bathrooms int    `json:"bathrooms,omitempty"`
	SizeSqFt  int    `json:"size_sqft,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Model     string `json:"model,omitempty"`
	Condition string `json:"condition,omitempty"`
	Warranty  string `json:"warranty,omitempty"`
	FuelType  string `json:"fuel_type,omitempty"`
	Seats     int    `json:"seats,omitempty"`
}

type ListingList struct {
	Items []Listing `json:"items"`
}

func MapListing(l *domainlistings.Listing) Listing {
	if l == nil {
		return Listing{}
	}
	return Listing{
		ID:            string(l.ID),
		OwnerID:       string(l.Owner),
		ApartmentID:   l.ApartmentID,
		Title:         l.Title,
		Description:   l.Description,
		PriceCents:    l.PriceCents,
		ImageURL:      l.ImageURL,
		Location:      l.Location,
		Status:        string(l.Status),
		Category:      string(l.Category()),
		Details:       mapDetails(l.Details),
		AvailableFrom: l.AvailableFrom,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func MapListings(items []domainlistings.Listing) ListingList {
	out := ListingList{Items: make([]Listing, 0, len(items))}
	for i := range items {
		out.Items = append(out.Items, MapListing(&items[i]))
	}
	return out
}

func mapDetails(details domainlistings.Details) *ListingDetails {
	switch d := details.(type) {
	case domainlistings.HouseDetails:
		return &ListingDetails{Bedrooms: d.Bedrooms, Bathrooms: d.Bathrooms, SizeSqFt: d.SizeSqFt}
	case domainlistings.ElectronicsDetails:
		return &ListingDetails{Brand: d.Brand, Model: d.Model, Condition: d.Condition, Warranty: d.Warranty}
	case domainlistings.CarDetails:
		return &ListingDetails{Brand: d.Brand, Model: d.Model, FuelType: d.FuelType, Seats: d.Seats}
	default:
		return nil
	}
}
