package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotStarted = errors.New("settings store not started")

type settingsDoc struct {
	StoreID       string    `bson:"_id"`
	SoundDisabled bool      `bson:"sound_disabled"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// MongoStore keeps preferences per store in MongoDB so every display of a
// store shares them.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	storeID    string
	logger     aqm.Logger
	config     *aqm.Config
}

func NewMongoStore(config *aqm.Config, storeID string, logger aqm.Logger) *MongoStore {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &MongoStore{
		config:  config,
		storeID: storeID,
		logger:  logger,
	}
}

func (s *MongoStore) Start(ctx context.Context) error {
	mongoURL, dbName := "mongodb://localhost:27017", "appetite_kds"
	if s.config != nil {
		mongoURL = s.config.GetStringOrDef("db.mongo.url", mongoURL)
		dbName = s.config.GetStringOrDef("db.mongo.name", dbName)
	}

	clientOptions := options.Client().ApplyURI(mongoURL).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	s.client = client
	s.collection = client.Database(dbName).Collection("kds_settings")

	s.logger.Infof("Connected to MongoDB: %s, database: %s, collection: kds_settings", mongoURL, dbName)
	return nil
}

func (s *MongoStore) Stop(ctx context.Context) error {
	if s.client != nil {
		if err := s.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		s.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (s *MongoStore) SoundDisabled(ctx context.Context) (bool, error) {
	if s.collection == nil {
		return false, ErrNotStarted
	}

	var doc settingsDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": s.storeID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cannot find settings: %w", err)
	}
	return doc.SoundDisabled, nil
}

func (s *MongoStore) SetSoundDisabled(ctx context.Context, disabled bool) error {
	if s.collection == nil {
		return ErrNotStarted
	}

	filter := bson.M{"_id": s.storeID}
	update := bson.M{"$set": bson.M{
		"sound_disabled": disabled,
		"updated_at":     time.Now().UTC(),
	}}
	if _, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("cannot save settings: %w", err)
	}
	return nil
}
