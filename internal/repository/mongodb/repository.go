package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

const deliveriesCollection = "reminder_deliveries"

// DeliveryLog is an append-only audit trail of presented reminders.
type DeliveryLog interface {
	RecordDelivery(ctx context.Context, delivery models.ReminderDelivery) error
	RecentDeliveries(ctx context.Context, limit int64) ([]models.ReminderDelivery, error)
}

// MongoDBRepository implements DeliveryLog on MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects and pings the server.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return NewFromClient(client, dbName), nil
}

// NewFromClient wraps an already connected client.
func NewFromClient(client *mongo.Client, dbName string) *MongoDBRepository {
	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: deliveriesCollection,
	}
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// RecordDelivery stores one delivery outcome.
func (r *MongoDBRepository) RecordDelivery(ctx context.Context, delivery models.ReminderDelivery) error {
	if _, err := r.collection().InsertOne(ctx, delivery); err != nil {
		return fmt.Errorf("failed to insert reminder delivery: %w", err)
	}
	return nil
}

// RecentDeliveries returns the latest deliveries, newest first.
func (r *MongoDBRepository) RecentDeliveries(ctx context.Context, limit int64) ([]models.ReminderDelivery, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder deliveries: %w", err)
	}
	defer cursor.Close(ctx)

	var deliveries []models.ReminderDelivery
	if err := cursor.All(ctx, &deliveries); err != nil {
		return nil, fmt.Errorf("failed to decode reminder deliveries: %w", err)
	}
	return deliveries, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
