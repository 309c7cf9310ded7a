package listings

import (
	"errors"
	"strings"
)

var (
	ErrUnknownCategory = errors.New("listings: unknown category")
	ErrBedroomsCount   = errors.New("listings: bedrooms must be non-negative")
	ErrBathroomsCount  = errors.New("listings: bathrooms must be non-negative")
	ErrSizeNegative    = errors.New("listings: size must be non-negative")
	ErrBrandRequired   = errors.New("listings: brand is required")
	ErrSeatsCount      = errors.New("listings: seats must be at least 1")
)

// Category is the closed set of listing kinds.
type Category string

const (
	CategoryHouse       Category = "House"
	CategoryElectronics Category = "Electronics"
	CategoryCar         Category = "Car"
	CategoryToy         Category = "Toy"
	CategoryEquipment   Category = "Equipment"
	CategoryOther       Category = "Other"
)

// Categories lists every supported category in display order.
var Categories = []Category{
	CategoryHouse,
	CategoryElectronics,
	CategoryCar,
	CategoryToy,
	CategoryEquipment,
	CategoryOther,
}

// ParseCategory maps a raw string onto the closed Category set.
func ParseCategory(raw string) (Category, error) {
	trimmed := strings.TrimSpace(raw)
	for _, c := range Categories {
		if strings.EqualFold(trimmed, string(c)) {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// Details is the category-specific payload of a listing. Exactly one
// variant exists per category, so switching on Category() is exhaustive.
type Details interface {
	Category() Category
	Validate() error
}

// HouseDetails describes a rentable room or flat.
type HouseDetails struct {
	Bedrooms  int
	Bathrooms int
	SizeSqFt  int
}

func (d HouseDetails) Category() Category { return CategoryHouse }

func (d HouseDetails) Validate() error {
	if d.Bedrooms < 0 {
		return ErrBedroomsCount
	}
	if d.Bathrooms < 0 {
		return ErrBathroomsCount
	}
	if d.SizeSqFt < 0 {
		return ErrSizeNegative
	}
	return nil
}

// ElectronicsDetails describes an appliance or gadget.
type ElectronicsDetails struct {
	Brand     string
	Model     string
	Condition string
	Warranty  string
}

func (d ElectronicsDetails) Category() Category { return CategoryElectronics }

func (d ElectronicsDetails) Validate() error {
	if strings.TrimSpace(d.Brand) == "" {
		return ErrBrandRequired
	}
	return nil
}

// CarDetails describes a vehicle.
type CarDetails struct {
	Brand    string
	Model    string
	FuelType string
	Seats    int
}

func (d CarDetails) Category() Category { return CategoryCar }

func (d CarDetails) Validate() error {
	if strings.TrimSpace(d.Brand) == "" {
		return ErrBrandRequired
	}
	if d.Seats < 1 {
		return ErrSeatsCount
	}
	return nil
}

// ToyDetails carries no extra attributes.
type ToyDetails struct{}

func (ToyDetails) Category() Category { return CategoryToy }
func (ToyDetails) Validate() error    { return nil }

// EquipmentDetails carries no extra attributes.
type EquipmentDetails struct{}

func (EquipmentDetails) Category() Category { return CategoryEquipment }
func (EquipmentDetails) Validate() error    { return nil }

// OtherDetails is the catch-all variant.
type OtherDetails struct{}

func (OtherDetails) Category() Category { return CategoryOther }
func (OtherDetails) Validate() error    { return nil }
