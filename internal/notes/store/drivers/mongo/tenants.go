package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type tenantDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Slug        string    `bson:"slug"`
	Plan        string    `bson:"plan"`
	MaxNotes    int       `bson:"max_notes"`
	ActiveNotes int       `bson:"active_notes"`
	IsActive    bool      `bson:"is_active"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func (d tenantDoc) domain() domain.Tenant {
	return domain.Tenant{
		ID:        d.ID,
		Name:      d.Name,
		Slug:      d.Slug,
		Plan:      domain.Plan(d.Plan),
		MaxNotes:  d.MaxNotes,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type tenantsRepo struct {
	scope
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.coll(tenantsCollection).InsertOne(r.ctx(ctx), tenantDoc{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Plan:      string(t.Plan),
		MaxNotes:  t.MaxNotes,
		IsActive:  t.IsActive,
		CreatedAt: utc(t.CreatedAt),
		UpdatedAt: utc(t.UpdatedAt),
	})
	return mapDuplicate(err)
}

func (r *tenantsRepo) GetTenantByID(ctx context.Context, id string) (domain.Tenant, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *tenantsRepo) GetTenantBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	return r.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
}

func (r *tenantsRepo) findOne(ctx context.Context, filter bson.D) (domain.Tenant, error) {
	var doc tenantDoc
	if err := r.coll(tenantsCollection).FindOne(r.ctx(ctx), filter).Decode(&doc); err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return doc.domain(), nil
}

func (r *tenantsRepo) UpgradeToPro(ctx context.Context, id string) (domain.Tenant, error) {
	var doc tenantDoc
	err := r.coll(tenantsCollection).FindOneAndUpdate(r.ctx(ctx),
		bson.D{{Key: "_id", Value: id}, {Key: "plan", Value: string(domain.PlanFree)}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "plan", Value: string(domain.PlanPro)},
			{Key: "max_notes", Value: domain.Unlimited},
			{Key: "updated_at", Value: now()},
		}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.domain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Tenant{}, err
	}

	// Nothing matched: either the tenant is gone or it is not on Free.
	if _, err := r.GetTenantByID(ctx, id); err != nil {
		return domain.Tenant{}, err
	}
	return domain.Tenant{}, store.ErrConflict
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	users, err := r.coll(usersCollection).CountDocuments(r.ctx(ctx),
		bson.D{{Key: "tenant_id", Value: id}}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if users > 0 {
		return store.ErrConflict
	}

	res, err := r.coll(tenantsCollection).DeleteOne(r.ctx(ctx), bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tenantsRepo) IsEmpty(ctx context.Context) (bool, error) {
	n, err := r.coll(tenantsCollection).CountDocuments(r.ctx(ctx), bson.D{}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// reserveNote takes one slot of the tenant's note cap. It fails with
// ErrLimitReached when the tenant is full and ErrNotFound when it does not
// exist.
func (r *tenantsRepo) reserveNote(ctx context.Context, tenantID string) error {
	res, err := r.coll(tenantsCollection).UpdateOne(r.ctx(ctx),
		bson.D{
			{Key: "_id", Value: tenantID},
			{Key: "$or", Value: bson.A{
				bson.D{{Key: "plan", Value: string(domain.PlanPro)}},
				bson.D{{Key: "max_notes", Value: bson.D{{Key: "$lt", Value: 0}}}},
				bson.D{{Key: "$expr", Value: bson.D{{Key: "$lt", Value: bson.A{"$active_notes", "$max_notes"}}}}},
			}},
		},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "active_notes", Value: 1}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	if _, err := r.GetTenantByID(ctx, tenantID); err != nil {
		return err
	}
	return store.ErrLimitReached
}

// adjustActive moves the active-note counter by delta without checking the
// cap.
func (r *tenantsRepo) adjustActive(ctx context.Context, tenantID string, delta int) error {
	_, err := r.coll(tenantsCollection).UpdateOne(r.ctx(ctx),
		bson.D{{Key: "_id", Value: tenantID}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "active_notes", Value: delta}}}},
	)
	return err
}
