package db

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var client *mongo.Client

// DB is the shared database handle, set by Connect.
var DB *mongo.Database

func Connect() {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		log.Fatal("MONGO_URI is empty")
	}

	name := os.Getenv("MONGO_DB")
	if name == "" {
		name = "geofix"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(20)

	c, err := mongo.Connect(ctx, opts)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping database: ", err)
	}

	client = c
	DB = c.Database(name)
	log.Println("Connected to database")
}

func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}
