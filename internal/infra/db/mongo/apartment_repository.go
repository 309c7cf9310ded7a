package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainapartment "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/apartment"
)

type ApartmentRepository struct {
	col *mongo.Collection
}

var _ domainapartment.Repository = (*ApartmentRepository)(nil)

func NewApartmentRepository(db *mongo.Database) *ApartmentRepository {
	return &ApartmentRepository{col: db.Collection("apartments")}
}

type apartmentDocument struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
	City string `bson:"city"`
}

func (r *ApartmentRepository) ByID(ctx context.Context, id domainapartment.ID) (*domainapartment.Apartment, error) {
	var doc apartmentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainapartment.ErrNotFound
		}
		return nil, err
	}
	return &domainapartment.Apartment{ID: domainapartment.ID(doc.ID), Name: doc.Name, City: doc.City}, nil
}

func (r *ApartmentRepository) List(ctx context.Context) ([]domainapartment.Apartment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []domainapartment.Apartment
	for cursor.Next(ctx) {
		var doc apartmentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domainapartment.Apartment{ID: domainapartment.ID(doc.ID), Name: doc.Name, City: doc.City})
	}
	return out, cursor.Err()
}

func (r *ApartmentRepository) Save(ctx context.Context, a *domainapartment.Apartment) error {
	doc := apartmentDocument{ID: string(a.ID), Name: a.Name, City: a.City}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}
