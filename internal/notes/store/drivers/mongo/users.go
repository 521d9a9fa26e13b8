package mongo

import (
	"context"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	TenantID     string    `bson:"tenant_id"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	IsActive     bool      `bson:"is_active"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d userDoc) domain() domain.User {
	return domain.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		TenantID:     d.TenantID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type usersRepo struct {
	scope
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.coll(usersCollection).InsertOne(r.ctx(ctx), userDoc{
		ID:           u.ID,
		Email:        domain.NormalizeEmail(u.Email),
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		TenantID:     u.TenantID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsActive:     u.IsActive,
		CreatedAt:    utc(u.CreatedAt),
		UpdatedAt:    utc(u.UpdatedAt),
	})
	return mapDuplicate(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: domain.NormalizeEmail(email)}})
}

func (r *usersRepo) findOne(ctx context.Context, filter bson.D) (domain.User, error) {
	var doc userDoc
	if err := r.coll(usersCollection).FindOne(r.ctx(ctx), filter).Decode(&doc); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return doc.domain(), nil
}

func (r *usersRepo) GetUsersByIDs(ctx context.Context, tenantID string, ids []string) (map[string]domain.User, error) {
	out := make(map[string]domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	docs, err := r.find(ctx, bson.D{
		{Key: "tenant_id", Value: tenantID},
		{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}},
	}, nil)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		out[d.ID] = d.domain()
	}
	return out, nil
}

func (r *usersRepo) ListActiveUsers(ctx context.Context, tenantID string) ([]domain.User, error) {
	docs, err := r.find(ctx,
		bson.D{{Key: "tenant_id", Value: tenantID}, {Key: "is_active", Value: true}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.domain())
	}
	return users, nil
}

func (r *usersRepo) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]userDoc, error) {
	if opts == nil {
		opts = options.Find()
	}
	cur, err := r.coll(usersCollection).Find(r.ctx(ctx), filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []userDoc
	if err := cur.All(r.ctx(ctx), &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *usersRepo) DeactivateUser(ctx context.Context, tenantID, userID string) error {
	res, err := r.coll(usersCollection).UpdateOne(r.ctx(ctx),
		bson.D{{Key: "_id", Value: userID}, {Key: "tenant_id", Value: tenantID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "is_active", Value: false},
			{Key: "updated_at", Value: now()},
		}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
