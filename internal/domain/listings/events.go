package listings

import "time"

type ListingCreatedEvent struct {
	ListingID   ListingID `json:"listing_id"`
	Owner       OwnerID   `json:"owner_id"`
	ApartmentID string    `json:"apartment_id"`
	Category    Category  `json:"category"`
	At          time.Time `json:"at"`
}

func (e ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

type ListingBookedEvent struct {
	ListingID ListingID `json:"listing_id"`
	RenterID  string    `json:"renter_id"`
	At        time.Time `json:"at"`
}

func (e ListingBookedEvent) EventName() string     { return "listing.booked" }
func (e ListingBookedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingBookedEvent) OccurredAt() time.Time { return e.At }
