package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/domain/apartment"
)

type ApartmentRepository struct {
	mu         sync.RWMutex
	apartments map[apartment.ID]*apartment.Apartment
}

var _ apartment.Repository = (*ApartmentRepository)(nil)

func NewApartmentRepository() *ApartmentRepository {
	return &ApartmentRepository{apartments: make(map[apartment.ID]*apartment.Apartment)}
}

func (r *ApartmentRepository) ByID(_ context.Context, id apartment.ID) (*apartment.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apartments[id]
	if !ok {
		return nil, apartment.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *ApartmentRepository) List(_ context.Context) ([]apartment.Apartment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]apartment.Apartment, 0, len(r.apartments))
	for _, a := range r.apartments {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ApartmentRepository) Save(_ context.Context, a *apartment.Apartment) error {
	if a == nil || a.ID == "" {
		return apartment.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *a
	r.apartments[a.ID] = &clone
	return nil
}
