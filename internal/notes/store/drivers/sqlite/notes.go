package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store"
)

const noteColumns = `id, tenant_id, author_id, title, content, tags, priority, is_archived, created_at, updated_at`

// underLimit holds for the tenant bound to the single placeholder when it has
// room for one more active note. It is evaluated inside the same statement
// as the write, so concurrent creates cannot overshoot the cap.
const underLimit = `EXISTS (
	SELECT 1 FROM tenants t
	WHERE t.id = ?
	  AND (t.plan = 'Pro' OR t.max_notes < 0
	       OR (SELECT COUNT(*) FROM notes c WHERE c.tenant_id = t.id AND c.is_archived = 0) < t.max_notes)
)`

type notesRepo struct {
	db dbtx
}

func (r *notesRepo) CreateNoteWithinLimit(ctx context.Context, n domain.Note) error {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?, ?, 0, ?, ?
		 WHERE `+underLimit,
		n.ID, n.TenantID, n.AuthorID, n.Title, n.Content, tags, string(n.Priority),
		formatTime(n.CreatedAt), formatTime(n.UpdatedAt),
		n.TenantID,
	)
	if err != nil {
		return mapConstraint(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	if _, err := (&tenantsRepo{db: r.db}).GetTenantByID(ctx, n.TenantID); err != nil {
		return err
	}
	return store.ErrLimitReached
}

func (r *notesRepo) GetNote(ctx context.Context, tenantID, id string) (domain.Note, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND tenant_id = ?`,
		id, tenantID,
	)
	return scanNote(row)
}

func (r *notesRepo) ListNotes(ctx context.Context, f domain.NoteFilter) ([]domain.Note, int, error) {
	where, args := noteWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes n WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageArgs := append(append([]any{}, args...), f.Limit, f.Offset())
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes n WHERE `+where+`
		 ORDER BY n.created_at DESC, n.id DESC
		 LIMIT ? OFFSET ?`,
		pageArgs...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := make([]domain.Note, 0, f.Limit)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

func noteWhere(f domain.NoteFilter) (string, []any) {
	clauses := []string{"n.tenant_id = ?", "n.is_archived = ?"}
	args := []any{f.TenantID, f.Archived}

	if f.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.Search)) + "%"
		clauses = append(clauses, `(`+foldFunc+`(n.title) LIKE ? ESCAPE '\' OR `+foldFunc+`(n.content) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if f.Priority != "" {
		clauses = append(clauses, "n.priority = ?")
		args = append(args, string(f.Priority))
	}
	if f.AuthorID != "" {
		clauses = append(clauses, "n.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if len(f.Tags) > 0 {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM json_each(n.tags) j WHERE j.value IN (`+placeholders(len(f.Tags))+`))`)
		for _, tag := range f.Tags {
			args = append(args, tag)
		}
	}

	return strings.Join(clauses, " AND "), args
}

func (r *notesRepo) UpdateNote(ctx context.Context, n domain.Note) error {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE notes
		 SET title = ?, content = ?, tags = ?, priority = ?, is_archived = ?, updated_at = ?
		 WHERE id = ? AND tenant_id = ?`,
		n.Title, n.Content, tags, string(n.Priority), n.IsArchived, formatTime(n.UpdatedAt),
		n.ID, n.TenantID,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res.RowsAffected())
}

func (r *notesRepo) RestoreNoteWithinLimit(ctx context.Context, n domain.Note) error {
	tags, err := encodeTags(n.Tags)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE notes
		 SET title = ?, content = ?, tags = ?, priority = ?, is_archived = 0, updated_at = ?
		 WHERE id = ? AND tenant_id = ? AND is_archived = 1 AND `+underLimit,
		n.Title, n.Content, tags, string(n.Priority), formatTime(n.UpdatedAt),
		n.ID, n.TenantID, n.TenantID,
	)
	if err != nil {
		return err
	}
	if err := requireOneRow(res.RowsAffected()); !errors.Is(err, store.ErrNotFound) {
		return err
	}

	current, err := r.GetNote(ctx, n.TenantID, n.ID)
	if err != nil {
		return err
	}
	if !current.IsArchived {
		return store.ErrConflict
	}
	return store.ErrLimitReached
}

func (r *notesRepo) DeleteNote(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return err
	}
	return requireOneRow(res.RowsAffected())
}

func (r *notesRepo) CountActiveNotes(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE tenant_id = ? AND is_archived = 0`,
		tenantID,
	).Scan(&count)
	return count, err
}

func scanNote(row scanner) (domain.Note, error) {
	var (
		n                    domain.Note
		tags, priority       string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&n.ID, &n.TenantID, &n.AuthorID, &n.Title, &n.Content,
		&tags, &priority, &n.IsArchived, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Note{}, mapNotFound(err)
	}
	n.Priority = domain.Priority(priority)

	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil {
		return domain.Note{}, err
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Note{}, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func requireOneRow(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
