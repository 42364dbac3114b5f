package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/toystacks/toy-server/config"
)

// connectTimeout bounds the initial connect + ping.
const connectTimeout = 10 * time.Second

// NameDescriptionIndex is the composite index backing name search.
const NameDescriptionIndex = "toyNameDescription"

// Store owns the MongoDB client and the toy collection.
// It is created once at startup and shared by all handlers.
type Store struct {
	client *mongo.Client
	toys   *mongo.Collection
}

// Connect initializes the MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.Config) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(cfg.ConnectionURI()).
		SetServerAPIOptions(serverAPI).
		// Embedded documents decode as bson.M so they render as JSON objects.
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create MongoDB client: %w", err)
	}

	// Ping the primary server to verify the connection.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	log.Println("[database] successfully connected and pinged MongoDB")

	return &Store{
		client: client,
		toys:   client.Database(cfg.DBName).Collection(cfg.Collection),
	}, nil
}

// EnsureIndexes creates the (toyName, description) index. An index that already
// exists with the same definition is not an error.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "toyName", Value: 1}, {Key: "description", Value: 1}},
		Options: options.Index().SetName(NameDescriptionIndex),
	}
	name, err := s.toys.Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		return fmt.Errorf("create index %s: %w", NameDescriptionIndex, err)
	}
	log.Printf("[database] index %q ensured", name)
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client; call it on shutdown.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect MongoDB: %w", err)
	}
	log.Println("[database] MongoDB connection closed")
	return nil
}
