package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/booking"
)

type BookingRepository struct {
	mu    sync.RWMutex
	items map[booking.BookingID]*booking.Booking
}

var _ booking.Repository = (*BookingRepository)(nil)

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[booking.BookingID]*booking.Booking)}
}

func (r *BookingRepository) ByID(_ context.Context, id booking.BookingID) (*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *BookingRepository) Save(_ context.Context, b *booking.Booking) error {
	if b == nil || b.ID == "" {
		return booking.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *b
	r.items[b.ID] = &clone
	return nil
}

func (r *BookingRepository) ByRenter(_ context.Context, renterID string) ([]booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []booking.Booking
	for _, b := range r.items {
		if b.RenterID == renterID {
			out = append(out, *b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
