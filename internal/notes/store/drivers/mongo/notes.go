package mongo

import (
	"context"
	"regexp"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type noteDoc struct {
	ID         string    `bson:"_id"`
	TenantID   string    `bson:"tenant_id"`
	AuthorID   string    `bson:"author_id"`
	Title      string    `bson:"title"`
	Content    string    `bson:"content"`
	Tags       []string  `bson:"tags"`
	Priority   string    `bson:"priority"`
	IsArchived bool      `bson:"is_archived"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

func (d noteDoc) domain() domain.Note {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Note{
		ID:         d.ID,
		Title:      d.Title,
		Content:    d.Content,
		Tags:       tags,
		Priority:   domain.Priority(d.Priority),
		AuthorID:   d.AuthorID,
		TenantID:   d.TenantID,
		IsArchived: d.IsArchived,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

type notesRepo struct {
	scope
}

func (r *notesRepo) tenants() *tenantsRepo { return &tenantsRepo{scope: r.scope} }

func (r *notesRepo) CreateNoteWithinLimit(ctx context.Context, n domain.Note) error {
	if err := r.tenants().reserveNote(ctx, n.TenantID); err != nil {
		return err
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.coll(notesCollection).InsertOne(r.ctx(ctx), noteDoc{
		ID:        n.ID,
		TenantID:  n.TenantID,
		AuthorID:  n.AuthorID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      tags,
		Priority:  string(n.Priority),
		CreatedAt: utc(n.CreatedAt),
		UpdatedAt: utc(n.UpdatedAt),
	})
	if err != nil {
		// Hand the slot back; inside a transaction the abort does this too.
		_ = r.tenants().adjustActive(ctx, n.TenantID, -1)
		return mapDuplicate(err)
	}
	return nil
}

func (r *notesRepo) GetNote(ctx context.Context, tenantID, id string) (domain.Note, error) {
	var doc noteDoc
	err := r.coll(notesCollection).FindOne(r.ctx(ctx),
		bson.D{{Key: "_id", Value: id}, {Key: "tenant_id", Value: tenantID}},
	).Decode(&doc)
	if err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	return doc.domain(), nil
}

func (r *notesRepo) ListNotes(ctx context.Context, f domain.NoteFilter) ([]domain.Note, int, error) {
	filter := noteFilter(f)

	total, err := r.coll(notesCollection).CountDocuments(r.ctx(ctx), filter)
	if err != nil {
		return nil, 0, err
	}

	cur, err := r.coll(notesCollection).Find(r.ctx(ctx), filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit)))
	if err != nil {
		return nil, 0, err
	}

	var docs []noteDoc
	if err := cur.All(r.ctx(ctx), &docs); err != nil {
		return nil, 0, err
	}

	notes := make([]domain.Note, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, d.domain())
	}
	return notes, int(total), nil
}

func noteFilter(f domain.NoteFilter) bson.D {
	filter := bson.D{
		{Key: "tenant_id", Value: f.TenantID},
		{Key: "is_archived", Value: f.Archived},
	}

	if f.Search != "" {
		re := bson.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: re}},
			bson.D{{Key: "content", Value: re}},
		}})
	}
	if f.Priority != "" {
		filter = append(filter, bson.E{Key: "priority", Value: string(f.Priority)})
	}
	if f.AuthorID != "" {
		filter = append(filter, bson.E{Key: "author_id", Value: f.AuthorID})
	}
	if len(f.Tags) > 0 {
		filter = append(filter, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: f.Tags}}})
	}
	return filter
}

func mutableFields(n domain.Note) bson.D {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return bson.D{
		{Key: "title", Value: n.Title},
		{Key: "content", Value: n.Content},
		{Key: "tags", Value: tags},
		{Key: "priority", Value: string(n.Priority)},
		{Key: "is_archived", Value: n.IsArchived},
		{Key: "updated_at", Value: utc(n.UpdatedAt)},
	}
}

func (r *notesRepo) UpdateNote(ctx context.Context, n domain.Note) error {
	var before noteDoc
	err := r.coll(notesCollection).FindOneAndUpdate(r.ctx(ctx),
		bson.D{{Key: "_id", Value: n.ID}, {Key: "tenant_id", Value: n.TenantID}},
		bson.D{{Key: "$set", Value: mutableFields(n)}},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&before)
	if err != nil {
		return mapNotFound(err)
	}

	// Keep the tenant counter in step with archive transitions. Restores go
	// through RestoreNoteWithinLimit; this path only accounts for them.
	switch {
	case !before.IsArchived && n.IsArchived:
		return r.tenants().adjustActive(ctx, n.TenantID, -1)
	case before.IsArchived && !n.IsArchived:
		return r.tenants().adjustActive(ctx, n.TenantID, 1)
	}
	return nil
}

func (r *notesRepo) RestoreNoteWithinLimit(ctx context.Context, n domain.Note) error {
	current, err := r.GetNote(ctx, n.TenantID, n.ID)
	if err != nil {
		return err
	}
	if !current.IsArchived {
		return store.ErrConflict
	}

	if err := r.tenants().reserveNote(ctx, n.TenantID); err != nil {
		return err
	}

	fields := mutableFields(n)
	for i := range fields {
		if fields[i].Key == "is_archived" {
			fields[i].Value = false
		}
	}

	res, err := r.coll(notesCollection).UpdateOne(r.ctx(ctx),
		bson.D{{Key: "_id", Value: n.ID}, {Key: "tenant_id", Value: n.TenantID}, {Key: "is_archived", Value: true}},
		bson.D{{Key: "$set", Value: fields}},
	)
	if err == nil && res.MatchedCount == 1 {
		return nil
	}

	// Restored concurrently or deleted: give the slot back.
	_ = r.tenants().adjustActive(ctx, n.TenantID, -1)
	if err != nil {
		return err
	}
	return store.ErrConflict
}

func (r *notesRepo) DeleteNote(ctx context.Context, tenantID, id string) error {
	var doc noteDoc
	err := r.coll(notesCollection).FindOneAndDelete(r.ctx(ctx),
		bson.D{{Key: "_id", Value: id}, {Key: "tenant_id", Value: tenantID}},
	).Decode(&doc)
	if err != nil {
		return mapNotFound(err)
	}

	if !doc.IsArchived {
		return r.tenants().adjustActive(ctx, tenantID, -1)
	}
	return nil
}

func (r *notesRepo) CountActiveNotes(ctx context.Context, tenantID string) (int, error) {
	n, err := r.coll(notesCollection).CountDocuments(r.ctx(ctx),
		bson.D{{Key: "tenant_id", Value: tenantID}, {Key: "is_archived", Value: false}},
	)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
