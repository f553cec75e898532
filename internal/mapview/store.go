package mapview

import (
	"context"
	"time"

	"github.com/GeoFix/GeoFix-Backend/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeatureStore is the persistence surface the handlers run against.
type FeatureStore interface {
	InsertFeatures(ctx context.Context, features []Feature) (int, error)
	FindInBounds(ctx context.Context, north, south, east, west float64) ([]Feature, error)
	AllCorrected(ctx context.Context) ([]CorrectedFeature, error)
	InsertCorrected(ctx context.Context, corrected CorrectedFeature) error
}

type mongoStore struct{}

func (mongoStore) features() *mongo.Collection {
	return db.DB.Collection(FeatureCollection)
}

func (mongoStore) corrected() *mongo.Collection {
	return db.DB.Collection(CorrectedCollection)
}

// InsertFeatures bulk-inserts unordered so one malformed record doesn't block
// its siblings.
func (s mongoStore) InsertFeatures(ctx context.Context, features []Feature) (int, error) {
	now := time.Now()
	docs := make([]interface{}, 0, len(features))
	for i := range features {
		features[i].CreatedAt = now
		features[i].UpdatedAt = now
		docs = append(docs, features[i])
	}

	res, err := s.features().InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if res != nil {
		return len(res.InsertedIDs), err
	}
	return 0, err
}

func (s mongoStore) FindInBounds(ctx context.Context, north, south, east, west float64) ([]Feature, error) {
	filter := bson.M{
		"display.latitude":  bson.M{"$gte": south, "$lte": north},
		"display.longitude": bson.M{"$gte": west, "$lte": east},
	}

	cursor, err := s.features().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var features []Feature
	if err := cursor.All(ctx, &features); err != nil {
		return nil, err
	}
	return features, nil
}

func (s mongoStore) AllCorrected(ctx context.Context) ([]CorrectedFeature, error) {
	cursor, err := s.corrected().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []CorrectedFeature
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s mongoStore) InsertCorrected(ctx context.Context, corrected CorrectedFeature) error {
	now := time.Now()
	corrected.CreatedAt = now
	corrected.UpdatedAt = now
	if corrected.InitialIssues == nil {
		corrected.InitialIssues = []string{}
	}
	_, err := s.corrected().InsertOne(ctx, corrected)
	return err
}
