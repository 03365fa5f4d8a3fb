package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/instrumap/pkg/diagram/layout"
)

// Default database and collection names.
const (
	DefaultDatabase   = "instrumap"
	DefaultCollection = "diagrams"
)

// MongoStore persists records in a MongoDB collection. The diagram is kept
// as its JSON export so the document shape follows the public format.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name,omitempty"`
	Source    []byte    `bson:"source,omitempty"`
	Diagram   []byte    `bson:"diagram"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoStore connects to uri and uses the given database. An empty
// database means DefaultDatabase.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(DefaultCollection),
	}, nil
}

// Put implements Store.
func (s *MongoStore) Put(ctx context.Context, rec *Record) (string, error) {
	prepare(rec)
	doc, err := toDoc(rec)
	if err != nil {
		return "", err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return "", fmt.Errorf("store diagram: %w", err)
	}
	return rec.ID, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load diagram: %w", err)
	}
	return fromDoc(doc)
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete diagram: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDoc(rec *Record) (mongoDoc, error) {
	data, err := json.Marshal(rec.Diagram)
	if err != nil {
		return mongoDoc{}, fmt.Errorf("encode diagram: %w", err)
	}
	return mongoDoc{
		ID:        rec.ID,
		Name:      rec.Name,
		Source:    rec.Source,
		Diagram:   data,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func fromDoc(doc mongoDoc) (*Record, error) {
	var d layout.Diagram
	if err := json.Unmarshal(doc.Diagram, &d); err != nil {
		return nil, fmt.Errorf("decode diagram %s: %w", doc.ID, err)
	}
	return &Record{
		ID:        doc.ID,
		Name:      doc.Name,
		Source:    doc.Source,
		Diagram:   &d,
		CreatedAt: doc.CreatedAt,
	}, nil
}

var _ Store = (*MongoStore)(nil)
