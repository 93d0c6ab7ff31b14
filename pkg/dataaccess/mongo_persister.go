package dataaccess

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jacobbrewer1/broker/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/broker/pkg/entities"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// BackendMongo is the name of the MongoDB backend.
	BackendMongo = "mongo"

	mongoDatabase   = "broker"
	mongoCollection = "state"
	stateRecordID   = "state"
)

// stateRecord wraps the document in a single MongoDB record.
type stateRecord struct {
	ID       string             `bson:"_id"`
	Document *entities.Document `bson:"document"`
}

// MongoPersister persists the whole document as one MongoDB record.
type MongoPersister struct {
	client *mongo.Client
}

// NewMongoPersister creates a persister using client.
func NewMongoPersister(client *mongo.Client) *MongoPersister {
	return &MongoPersister{client: client}
}

func (m *MongoPersister) Name() string {
	return BackendMongo
}

func (m *MongoPersister) collection() *mongo.Collection {
	return m.client.Database(mongoDatabase).Collection(mongoCollection)
}

// Load reads the state record. A missing record yields an empty document.
func (m *MongoPersister) Load(ctx context.Context) (doc *entities.Document, err error) {
	done := monitoring.Observe(BackendMongo, "load")
	defer func() { done(err) }()

	rec := new(stateRecord)
	err = m.collection().FindOne(ctx, bson.M{"_id": stateRecordID}).Decode(rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entities.NewDocument(), nil
	} else if err != nil {
		return nil, fmt.Errorf("error getting state: %w", err)
	}

	if rec.Document == nil {
		return entities.NewDocument(), nil
	}
	rec.Document.Normalize()
	return rec.Document, nil
}

// Save replaces the state record, inserting it if needed.
func (m *MongoPersister) Save(ctx context.Context, doc *entities.Document) (err error) {
	done := monitoring.Observe(BackendMongo, "save")
	defer func() { done(err) }()

	opts := options.Replace().SetUpsert(true)
	_, err = m.collection().ReplaceOne(ctx, bson.M{"_id": stateRecordID}, &stateRecord{
		ID:       stateRecordID,
		Document: doc,
	}, opts)
	if err != nil {
		return fmt.Errorf("error saving state: %w", err)
	}
	return nil
}

func (m *MongoPersister) Ping(ctx context.Context) (err error) {
	done := monitoring.Observe(BackendMongo, "ping")
	defer func() { done(err) }()

	if err = m.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}
