package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// indexes is the schema. Creating an index that already exists with the
// same options is a no-op, so ApplyMigrations can run on every start.
var indexes = map[string][]mongo.IndexModel{
	tenantsCollection: {
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("tenants_slug")},
	},
	usersCollection: {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("users_email")},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "is_active", Value: 1}}, Options: options.Index().SetName("users_tenant_active")},
	},
	notesCollection: {
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "is_archived", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("notes_tenant_listing"),
		},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "tags", Value: 1}}, Options: options.Index().SetName("notes_tenant_tags")},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "author_id", Value: 1}}, Options: options.Index().SetName("notes_tenant_author")},
	},
}

// ApplyMigrations creates the collections' indexes.
func (s *Store) ApplyMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()

	for name, models := range indexes {
		if _, err := s.coll(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo: create %s indexes: %w", name, err)
		}
	}
	return nil
}
