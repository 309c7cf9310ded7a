package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

var _ domainlistings.Repository = (*ListingRepository)(nil)

func NewListingRepository(db *mongo.Database) *ListingRepository {
	col := db.Collection("listings")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "apartment_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	})
	return &ListingRepository{col: col}
}

type listingDocument struct {
	ID            string          `bson:"_id"`
	OwnerID       string          `bson:"owner_id"`
	ApartmentID   string          `bson:"apartment_id"`
	Title         string          `bson:"title"`
	Description   string          `bson:"description"`
	PriceCents    int64           `bson:"price_cents"`
	ImageURL      string          `bson:"image_url"`
	Location      string          `bson:"location"`
	Status        string          `bson:"status"`
	Category      string          `bson:"category"`
	Details       detailsDocument `bson:"details"`
	AvailableFrom int64           `bson:"available_from"`
	CreatedAt     int64           `bson:"created_at"`
	UpdatedAt     int64           `bson:"updated_at"`
}

// detailsDocument is the flattened union of every category's attributes.
// Only the fields of the stored category are meaningful.
type detailsDocument struct {
	Bedrooms  int    `bson:"bedrooms,omitempty"`
	Bathrooms int    `bson:"bathrooms,omitempty"`
	SizeSqFt  int    `bson:"size_sqft,omitempty"`
	Brand     string `bson:"brand,omitempty"`
	Model     string `bson:"model,omitempty"`
	Condition string `bson:"condition,omitempty"`
	Warranty  string `bson:"warranty,omitempty"`
	FuelType  string `bson:"fuel_type,omitempty"`
	Seats     int    `bson:"seats,omitempty"`
}

func newListingDocument(l *domainlistings.Listing) listingDocument {
	doc := listingDocument{
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
		AvailableFrom: l.AvailableFrom.UnixMilli(),
		CreatedAt:     l.CreatedAt.UnixMilli(),
		UpdatedAt:     l.UpdatedAt.UnixMilli(),
	}
	switch d := l.Details.(type) {
	case domainlistings.HouseDetails:
		doc.Details = detailsDocument{Bedrooms: d.Bedrooms, Bathrooms: d.Bathrooms, SizeSqFt: d.SizeSqFt}
	case domainlistings.ElectronicsDetails:
		doc.Details = detailsDocument{Brand: d.Brand, Model: d.Model, Condition: d.Condition, Warranty: d.Warranty}
	case domainlistings.CarDetails:
		doc.Details = detailsDocument{Brand: d.Brand, Model: d.Model, FuelType: d.FuelType, Seats: d.Seats}
	}
	return doc
}

func (d listingDocument) toAggregate() (*domainlistings.Listing, error) {
	category, err := domainlistings.ParseCategory(d.Category)
	if err != nil {
		category = domainlistings.CategoryOther
	}
	var details domainlistings.Details
	switch category {
	case domainlistings.CategoryHouse:
		details = domainlistings.HouseDetails{Bedrooms: d.Details.Bedrooms, Bathrooms: d.Details.Bathrooms, SizeSqFt: d.Details.SizeSqFt}
	case domainlistings.CategoryElectronics:
		details = domainlistings.ElectronicsDetails{Brand: d.Details.Brand, Model: d.Details.Model, Condition: d.Details.Condition, Warranty: d.Details.Warranty}
	case domainlistings.CategoryCar:
		details = domainlistings.CarDetails{Brand: d.Details.Brand, Model: d.Details.Model, FuelType: d.Details.FuelType, Seats: d.Details.Seats}
	case domainlistings.CategoryToy:
		details = domainlistings.ToyDetails{}
	case domainlistings.CategoryEquipment:
		details = domainlistings.EquipmentDetails{}
	default:
		details = domainlistings.OtherDetails{}
	}
	return &domainlistings.Listing{
		ID:            domainlistings.ListingID(d.ID),
		Owner:         domainlistings.OwnerID(d.OwnerID),
		ApartmentID:   d.ApartmentID,
		Title:         d.Title,
		Description:   d.Description,
		PriceCents:    d.PriceCents,
		ImageURL:      d.ImageURL,
		Location:      d.Location,
		Status:        domainlistings.Status(d.Status),
		Details:       details,
		AvailableFrom: timestampToTime(d.AvailableFrom),
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
	}, nil
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainlistings.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ListingRepository) Save(ctx context.Context, listing *domainlistings.Listing) error {
	doc := newListingDocument(listing)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *ListingRepository) ByApartment(ctx context.Context, apartmentID string, filter domainlistings.Filter) ([]domainlistings.Listing, error) {
	filter = filter.Normalized()
	query := bson.M{"apartment_id": apartmentID}
	if filter.Category != "" {
		query["category"] = string(filter.Category)
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	listings, err := r.find(ctx, query)
	if err != nil {
		return nil, err
	}
	if filter.Query == "" {
		return listings, nil
	}
	// substring search happens app-side; community sets stay small
	out := listings[:0]
	for i := range listings {
		if filter.Matches(&listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out, nil
}

func (r *ListingRepository) ByOwner(ctx context.Context, owner domainlistings.OwnerID) ([]domainlistings.Listing, error) {
	return r.find(ctx, bson.M{"owner_id": string(owner)})
}

func (r *ListingRepository) find(ctx context.Context, query bson.M) ([]domainlistings.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainlistings.Listing
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		listing, err := doc.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, *listing)
	}
	return out, cursor.Err()
}
