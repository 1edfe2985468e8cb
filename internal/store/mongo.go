package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/coastal7-sdlc/user-story-agent/core/config"
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

const (
	DefaultMongoDatabase   = "user_stories_db"
	DefaultMongoCollection = "user_stories"
)

type batchDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Stories      []model.Story      `bson:"user_stories"`
	Requirements string             `bson:"requirements"`
	CreatedAt    time.Time          `bson:"created_at"`
	Model        string             `bson:"model"`
	Status       string             `bson:"status"`
}

func (d batchDocument) toModel() *model.Batch {
	stories := d.Stories
	for i := range stories {
		if stories[i].AcceptanceCriteria == nil {
			stories[i].AcceptanceCriteria = []string{}
		}
	}
	return &model.Batch{
		ID:           d.ID.Hex(),
		Stories:      stories,
		Requirements: d.Requirements,
		CreatedAt:    d.CreatedAt.UTC(),
		Model:        d.Model,
		Status:       d.Status,
	}
}

type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore wraps an existing collection.
func NewMongoStore(coll *mongo.Collection) BatchStore {
	return &mongoStore{coll: coll}
}

// OpenMongo connects to uri and verifies the deployment is reachable.
func OpenMongo(ctx context.Context, uri, database string) (BatchStore, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return NewMongoStore(client.Database(database).Collection(DefaultMongoCollection)), nil
}

func (s *mongoStore) Backend() string {
	return config.StoreBackendMongo
}

func (s *mongoStore) Create(ctx context.Context, b *model.Batch) error {
	doc := batchDocument{
		ID:           primitive.NewObjectID(),
		Stories:      b.Stories,
		Requirements: b.Requirements,
		CreatedAt:    b.CreatedAt,
		Model:        b.Model,
		Status:       b.Status,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	b.ID = doc.ID.Hex()
	return nil
}

func (s *mongoStore) GetByID(ctx context.Context, id string) (*model.Batch, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc batchDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding batch: %w", err)
	}

	return doc.toModel(), nil
}

func (s *mongoStore) List(ctx context.Context, skip, limit int) ([]model.Batch, error) {
	skip, limit = NormalizePage(skip, limit)

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []batchDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding batches: %w", err)
	}

	batches := make([]model.Batch, 0, len(docs))
	for _, d := range docs {
		batches = append(batches, *d.toModel())
	}
	return batches, nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}
