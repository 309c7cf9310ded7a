package dto

import domainapartment "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/apartment"

type Apartment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
}

func MapApartments(items []domainapartment.Apartment) []Apartment {
	out := make([]Apartment, 0, len(items))
	for _, a := range items {
		out = append(out, Apartment{ID: string(a.ID), Name: a.Name, City: a.City})
	}
	return out
}
