package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/booking"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

type BookingRepository struct {
	col *mongo.Collection
}

var _ domainbooking.Repository = (*BookingRepository)(nil)

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("bookings")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "renter_id", Value: 1}, {Key: "created_at", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &BookingRepository{col: col}
}

type bookingDocument struct {
	ID        string `bson:"_id"`
	ListingID string `bson:"listing_id"`
	RenterID  string `bson:"renter_id"`
	OwnerID   string `bson:"owner_id"`
	CreatedAt int64  `bson:"created_at"`
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(d.ID),
		ListingID: domainlistings.ListingID(d.ListingID),
		RenterID:  d.RenterID,
		OwnerID:   d.OwnerID,
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := bookingDocument{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		RenterID:  b.RenterID,
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt.UnixMilli(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *BookingRepository) ByRenter(ctx context.Context, renterID string) ([]domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"renter_id": renterID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, *doc.toAggregate())
	}
	return out, cursor.Err()
}
