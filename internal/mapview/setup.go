package mapview

import (
	"context"
	"log"
	"time"

	"github.com/GeoFix/GeoFix-Backend/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Init ensures the collection indexes exist. Index creation is best-effort:
// a stripped-down local database should not keep the server from starting.
func Init() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	featureIndexes := []mongo.IndexModel{
		// objectId is sparse, not unique; duplicate uploads are expected
		{Keys: bson.D{{Key: "objectId", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "customerId", Value: 1}}},
		{Keys: bson.D{{Key: "ntCity", Value: 1}}},
		{Keys: bson.D{{Key: "fullPostal", Value: 1}}},
		{Keys: bson.D{{Key: "address.streetName", Value: 1}}},
		// compound indexes for the bounding-box query paths
		{Keys: bson.D{{Key: "display.latitude", Value: 1}, {Key: "display.longitude", Value: 1}}},
		{Keys: bson.D{{Key: "routing.latitude", Value: 1}, {Key: "routing.longitude", Value: 1}}},
	}

	if _, err := db.DB.Collection(FeatureCollection).Indexes().CreateMany(ctx, featureIndexes); err != nil {
		log.Println("Failed to create feature indexes:", err)
	}

	correctedIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "address", Value: 1}}},
		{Keys: bson.D{{Key: "coordinates", Value: "2dsphere"}}},
	}

	if _, err := db.DB.Collection(CorrectedCollection).Indexes().CreateMany(ctx, correctedIndexes); err != nil {
		log.Println("Failed to create corrected indexes:", err)
	}
}
