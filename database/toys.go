package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/toystacks/toy-server/models"
)

// FindToys runs q against the collection. Queries with a price sort go through
// the aggregation pipeline, the rest are plain finds in storage order.
func (s *Store) FindToys(ctx context.Context, q models.ToyQuery) ([]bson.M, error) {
	var (
		cursor *mongo.Cursor
		err    error
	)
	if q.PriceSort != models.PriceUnsorted {
		cursor, err = s.toys.Aggregate(ctx, PriceSortPipeline(q))
	} else {
		opts := options.Find()
		if q.Limit > 0 {
			opts.SetLimit(q.Limit)
		}
		cursor, err = s.toys.Find(ctx, ToyFilter(q), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("query toys: %w", err)
	}
	defer cursor.Close(ctx) // Important to close the cursor

	toys := []bson.M{}
	if err := cursor.All(ctx, &toys); err != nil {
		return nil, fmt.Errorf("decode toys: %w", err)
	}
	// Stored doubles may already be non-finite; they cannot be rendered as JSON.
	NullNonFinitePrices(toys)
	return toys, nil
}

// FindToyByID returns the toy with the given id, or nil when there is none.
func (s *Store) FindToyByID(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	var toy bson.M
	err := s.toys.FindOne(ctx, bson.M{"_id": id}).Decode(&toy)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find toy %s: %w", id.Hex(), err)
	}
	return toy, nil
}

// InsertToy stores doc as a new toy. Any client supplied _id is dropped so
// the identifier is always assigned on insert.
func (s *Store) InsertToy(ctx context.Context, doc bson.M) (models.InsertAck, error) {
	clean := make(bson.M, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		clean[k] = v
	}

	result, err := s.toys.InsertOne(ctx, clean)
	if err != nil {
		return models.InsertAck{}, fmt.Errorf("insert toy: %w", err)
	}
	return models.InsertAck{Acknowledged: true, InsertedID: result.InsertedID}, nil
}

// UpdateToy overwrites the updatable field set of the toy with the given id.
func (s *Store) UpdateToy(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateAck, error) {
	result, err := s.toys.UpdateOne(ctx, bson.M{"_id": id}, UpdateDocument(fields))
	if err != nil {
		return models.UpdateAck{}, fmt.Errorf("update toy %s: %w", id.Hex(), err)
	}
	return models.UpdateAck{
		Acknowledged:  true,
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
		UpsertedCount: result.UpsertedCount,
		UpsertedID:    result.UpsertedID,
	}, nil
}

// DeleteToy removes the toy with the given id. Deleting a missing toy is not an error.
func (s *Store) DeleteToy(ctx context.Context, id primitive.ObjectID) (models.DeleteAck, error) {
	result, err := s.toys.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.DeleteAck{}, fmt.Errorf("delete toy %s: %w", id.Hex(), err)
	}
	return models.DeleteAck{Acknowledged: true, DeletedCount: result.DeletedCount}, nil
}

// UpdateDocument builds the $set for an update: every updatable field takes the
// value from body, or null when body does not carry it.
func UpdateDocument(body bson.M) bson.M {
	set := bson.M{}
	for _, field := range models.UpdatableFields {
		set[field] = body[field]
	}
	return bson.M{"$set": set}
}
