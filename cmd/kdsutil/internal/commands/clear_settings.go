package commands

import (
	"context"
	"fmt"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClearSettings removes the stored display settings of the configured store,
// or of every store when none is configured.
func ClearSettings(ctx context.Context, config *aqm.Config, logger aqm.Logger) error {
	logger.Info("Starting display settings cleanup...")

	mongoURL := config.GetStringOrDef("db.mongo.url", "mongodb://localhost:27017")
	dbName := config.GetStringOrDef("db.mongo.name", "appetite_kds")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURL))
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB")

	deleted, err := clearSettings(ctx, client.Database(dbName).Collection("kds_settings"), config.GetStringOrDef("kds.store_id", ""))
	if err != nil {
		return err
	}
	logger.Info("Deleted display settings", "count", deleted)
	return nil
}

func clearSettings(ctx context.Context, coll *mongo.Collection, storeID string) (int64, error) {
	filter := bson.M{}
	if storeID != "" {
		filter = bson.M{"_id": storeID}
	}
	result, err := coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete display settings: %w", err)
	}
	return result.DeletedCount, nil
}
