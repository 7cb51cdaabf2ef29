package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the stores rely on for email and
// per owner title uniqueness. Safe to call on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = db.Collection(todosCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_owner_title"),
		},
		{
			Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "updatedAt", Value: 1}},
			Options: options.Index().SetName("owner_updated"),
		},
	})
	if err != nil {
		return fmt.Errorf("todos indexes: %w", err)
	}

	return nil
}
