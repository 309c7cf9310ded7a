package dto

import (
	"time"

	catalogsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/catalog"
	domainbooking "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/booking"
)

type Booking struct {
	ID              string    `json:"id"`
	ListingID       string    `json:"listing_id"`
	ListingTitle    string    `json:"listing_title,omitempty"`
	ListingImageURL string    `json:"listing_image_url,omitempty"`
	RenterID        string    `json:"renter_id"`
	OwnerID         string    `json:"owner_id"`
	CreatedAt       time.Time `json:"created_at"`
}

type BookingList struct {
	Items []Booking `json:"items"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		RenterID:  b.RenterID,
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt,
	}
}

func MapBookingView(v catalogsvc.BookingView) Booking {
	out := MapBooking(&v.Booking)
	out.ListingTitle = v.ListingTitle
	out.ListingImageURL = v.ListingImageURL
	return out
}

func MapBookingViews(items []catalogsvc.BookingView) BookingList {
	out := BookingList{Items: make([]Booking, 0, len(items))}
	for _, item := range items {
		out.Items = append(out.Items, MapBookingView(item))
	}
	return out
}
