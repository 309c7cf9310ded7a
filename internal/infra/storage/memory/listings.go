package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

type ListingRepository struct {
	mu    sync.RWMutex
	items map[listings.ListingID]*listings.Listing
}

var _ listings.Repository = (*ListingRepository)(nil)

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[listings.ListingID]*listings.Listing)}
}

func (r *ListingRepository) ByID(_ context.Context, id listings.ListingID) (*listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.items[id]
	if !ok {
		return nil, listings.ErrNotFound
	}
	return cloneListing(listing), nil
}

func (r *ListingRepository) Save(_ context.Context, listing *listings.Listing) error {
	if listing == nil || listing.ID == "" {
		return listings.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[listing.ID] = cloneListing(listing)
	return nil
}

func (r *ListingRepository) ByApartment(_ context.Context, apartmentID string, filter listings.Filter) ([]listings.Listing, error) {
	filter = filter.Normalized()
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []listings.Listing
	for _, listing := range r.items {
		if listing.ApartmentID != apartmentID {
			continue
		}
		if !filter.Matches(listing) {
			continue
		}
		out = append(out, *cloneListing(listing))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *ListingRepository) ByOwner(_ context.Context, owner listings.OwnerID) ([]listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []listings.Listing
	for _, listing := range r.items {
		if listing.Owner == owner {
			out = append(out, *cloneListing(listing))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(list []listings.Listing) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func cloneListing(l *listings.Listing) *listings.Listing {
	if l == nil {
		return nil
	}
	clone := *l
	return &clone
}
