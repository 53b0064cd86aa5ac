package events

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSink appends a copy of every event to a collection. The collection
// is an external, best-effort log; the in-memory acceptance store stays
// authoritative regardless of what lands here.
type MongoSink struct {
	coll *mongo.Collection
}

// NewMongoSink connects and pings within a short deadline so a down
// database is discovered at startup, not on the request path.
func NewMongoSink(ctx context.Context, uri, db, collection string) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return &MongoSink{coll: client.Database(db).Collection(collection)}, nil
}

func (m *MongoSink) Write(ctx context.Context, ev Event) error {
	_, err := m.coll.InsertOne(ctx, ev)
	return err
}
