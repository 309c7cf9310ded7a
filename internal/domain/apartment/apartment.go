package apartment

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrIDRequired   = errors.New("apartment: id is required")
	ErrNameRequired = errors.New("apartment: name is required")
	ErrNotFound     = errors.New("apartment: not found")
)

type ID string

// Apartment is a residential community. Listings and users are scoped to
// exactly one community; the directory itself is read-mostly seed data.
type Apartment struct {
	ID   ID
	Name string
	City string
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Apartment, error)
	List(ctx context.Context) ([]Apartment, error)
	Save(ctx context.Context, apartment *Apartment) error
}

func New(id ID, name, city string) (*Apartment, error) {
	trimmedID := strings.TrimSpace(string(id))
	if trimmedID == "" {
		return nil, ErrIDRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return &Apartment{ID: ID(trimmedID), Name: name, City: strings.TrimSpace(city)}, nil
}
