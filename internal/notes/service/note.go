package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/policy"
	"github.com/aussiebroadwan/notes/internal/notes/store"
	"github.com/aussiebroadwan/notes/pkg/idx"
	"github.com/aussiebroadwan/notes/pkg/slogx"
)

type NoteService struct {
	Store    store.Store
	Recorder Recorder
}

// Author is the public summary of a note's author.
type Author struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      domain.Role
}

// NoteView is a note with its author resolved.
type NoteView struct {
	domain.Note
	Author Author
}

type CreateNoteInput struct {
	Title    string
	Content  string
	Tags     []string
	Priority domain.Priority // defaults to medium
}

// UpdateNoteInput is a partial update, nil fields are left unchanged.
type UpdateNoteInput struct {
	Title      *string
	Content    *string
	Tags       *[]string
	Priority   *domain.Priority
	IsArchived *bool
}

type ListNotesInput struct {
	Search   string
	Priority domain.Priority
	Tags     []string
	AuthorID string
	Archived bool
	Page     int
	Limit    int
}

// Create adds a note to the caller's tenant, subject to the plan's cap.
func (s *NoteService) Create(ctx context.Context, p domain.Principal, in CreateNoteInput) (NoteView, error) {
	log := slogx.FromContext(ctx)

	if !policy.Can(p, policy.NoteCreate) {
		return NoteView{}, ErrForbidden
	}

	// 1. Validate
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	title := strings.TrimSpace(in.Title)

	fe := fieldErrors{}
	validateTitle(fe, title)
	validateContent(fe, in.Content)
	validatePriority(fe, priority)
	if err := fe.err(); err != nil {
		return NoteView{}, err
	}

	tenant, err := s.Store.Tenants().GetTenantByID(ctx, p.TenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NoteView{}, ErrTenantNotFound
		}
		return NoteView{}, err
	}

	// 2. Insert under the cap
	now := domain.Now()
	note := domain.Note{
		ID:        idx.New().String(),
		Title:     title,
		Content:   in.Content,
		Tags:      domain.NormalizeTags(in.Tags),
		Priority:  priority,
		AuthorID:  p.UserID,
		TenantID:  p.TenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Store.Notes().CreateNoteWithinLimit(ctx, note); err != nil {
		if errors.Is(err, store.ErrLimitReached) {
			return NoteView{}, s.limitError(ctx, tenant)
		}
		log.Error("failed to create note", slog.Any("error", err))
		return NoteView{}, err
	}

	recorderOrNop(s.Recorder).NoteCreated(tenant.Plan)
	log.Info("note created", slog.String("note_id", note.ID), slog.String("tenant_id", note.TenantID))

	return s.view(ctx, note)
}

// List returns one page of the caller's tenant notes, newest first.
func (s *NoteService) List(ctx context.Context, p domain.Principal, in ListNotesInput) ([]NoteView, domain.Pagination, error) {
	if !policy.Can(p, policy.NoteRead) {
		return nil, domain.Pagination{}, ErrForbidden
	}

	f := domain.NoteFilter{
		TenantID: p.TenantID,
		Search:   strings.TrimSpace(in.Search),
		Priority: in.Priority,
		Tags:     domain.NormalizeTags(in.Tags),
		Archived: in.Archived,
		Page:     in.Page,
		Limit:    in.Limit,
	}

	fe := fieldErrors{}
	if f.Priority != "" {
		validatePriority(fe, f.Priority)
	}
	if in.AuthorID != "" {
		id, err := idx.Parse(in.AuthorID)
		if err != nil {
			fe.add("author", "must be a valid identifier")
		}
		f.AuthorID = id.String()
	}
	switch {
	case f.Page == 0:
		f.Page = domain.DefaultPage
	case f.Page < 0:
		fe.add("page", "must be at least 1")
	}
	switch {
	case f.Limit == 0:
		f.Limit = domain.DefaultLimit
	case f.Limit < 0 || f.Limit > domain.MaxLimit:
		fe.add("limit", "must be between 1 and 100")
	}
	if err := fe.err(); err != nil {
		return nil, domain.Pagination{}, err
	}

	notes, total, err := s.Store.Notes().ListNotes(ctx, f)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	views, err := s.views(ctx, p.TenantID, notes)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return views, domain.NewPagination(f.Page, f.Limit, total), nil
}

// Get fetches one note of the caller's tenant.
func (s *NoteService) Get(ctx context.Context, p domain.Principal, id string) (NoteView, error) {
	note, err := s.load(ctx, p, id)
	if err != nil {
		return NoteView{}, err
	}
	if !policy.CanAccess(p, policy.NoteRead, note.TenantID, note.AuthorID) {
		return NoteView{}, ErrForbidden
	}
	return s.view(ctx, note)
}

// Update applies a partial update. Only the author or an Admin may update.
// Restoring an archived note counts against the cap like a create.
func (s *NoteService) Update(ctx context.Context, p domain.Principal, id string, in UpdateNoteInput) (NoteView, error) {
	log := slogx.FromContext(ctx)

	note, err := s.load(ctx, p, id)
	if err != nil {
		return NoteView{}, err
	}
	if !policy.CanModify(p, note) {
		return NoteView{}, ErrForbidden
	}

	// 1. Apply the patch
	wasArchived := note.IsArchived
	fe := fieldErrors{}
	if in.Title != nil {
		note.Title = strings.TrimSpace(*in.Title)
		validateTitle(fe, note.Title)
	}
	if in.Content != nil {
		note.Content = *in.Content
		validateContent(fe, note.Content)
	}
	if in.Tags != nil {
		note.Tags = domain.NormalizeTags(*in.Tags)
	}
	if in.Priority != nil {
		note.Priority = *in.Priority
		validatePriority(fe, note.Priority)
	}
	if in.IsArchived != nil {
		note.IsArchived = *in.IsArchived
	}
	if err := fe.err(); err != nil {
		return NoteView{}, err
	}
	note.UpdatedAt = domain.Now()

	// 2. Persist, routing restores through the cap
	if wasArchived && !note.IsArchived {
		err = s.Store.Notes().RestoreNoteWithinLimit(ctx, note)
	} else {
		err = s.Store.Notes().UpdateNote(ctx, note)
	}
	switch {
	case errors.Is(err, store.ErrLimitReached):
		tenant, terr := s.Store.Tenants().GetTenantByID(ctx, p.TenantID)
		if terr != nil {
			return NoteView{}, terr
		}
		return NoteView{}, s.limitError(ctx, tenant)
	case errors.Is(err, store.ErrNotFound):
		return NoteView{}, ErrNoteNotFound
	case errors.Is(err, store.ErrConflict):
		// Restored concurrently, apply the rest of the patch as a plain update.
		if err := s.Store.Notes().UpdateNote(ctx, note); err != nil {
			return NoteView{}, err
		}
	case err != nil:
		log.Error("failed to update note", slog.String("note_id", note.ID), slog.Any("error", err))
		return NoteView{}, err
	}

	return s.view(ctx, note)
}

// Delete removes a note for good. Only the author or an Admin may delete.
func (s *NoteService) Delete(ctx context.Context, p domain.Principal, id string) (string, error) {
	log := slogx.FromContext(ctx)

	note, err := s.load(ctx, p, id)
	if err != nil {
		return "", err
	}
	if !policy.CanDelete(p, note) {
		return "", ErrForbidden
	}

	if err := s.Store.Notes().DeleteNote(ctx, note.TenantID, note.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNoteNotFound
		}
		return "", err
	}

	log.Info("note deleted", slog.String("note_id", note.ID), slog.String("by", p.UserID))
	return note.ID, nil
}

// load parses id and fetches the note inside the caller's tenant. Notes of
// other tenants are indistinguishable from missing ones.
func (s *NoteService) load(ctx context.Context, p domain.Principal, raw string) (domain.Note, error) {
	id, err := idx.Parse(raw)
	if err != nil {
		return domain.Note{}, ErrInvalidIdentifier
	}

	note, err := s.Store.Notes().GetNote(ctx, p.TenantID, id.String())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Note{}, ErrNoteNotFound
		}
		return domain.Note{}, err
	}
	return note, nil
}

func (s *NoteService) limitError(ctx context.Context, tenant domain.Tenant) error {
	count, err := s.Store.Notes().CountActiveNotes(ctx, tenant.ID)
	if err != nil {
		return err
	}

	recorderOrNop(s.Recorder).NoteLimitRejected(tenant.Plan)
	slogx.FromContext(ctx).Info("note limit reached",
		slog.String("tenant_id", tenant.ID),
		slog.Int("current", count),
		slog.Int("max", tenant.MaxNotes),
	)
	return &LimitError{Current: count, Max: tenant.MaxNotes, Plan: tenant.Plan}
}

func (s *NoteService) view(ctx context.Context, n domain.Note) (NoteView, error) {
	views, err := s.views(ctx, n.TenantID, []domain.Note{n})
	if err != nil {
		return NoteView{}, err
	}
	return views[0], nil
}

func (s *NoteService) views(ctx context.Context, tenantID string, notes []domain.Note) ([]NoteView, error) {
	ids := make([]string, 0, len(notes))
	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		if _, ok := seen[n.AuthorID]; !ok {
			seen[n.AuthorID] = struct{}{}
			ids = append(ids, n.AuthorID)
		}
	}

	authors, err := s.Store.Users().GetUsersByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	out := make([]NoteView, 0, len(notes))
	for _, n := range notes {
		v := NoteView{Note: n, Author: Author{ID: n.AuthorID}}
		if u, ok := authors[n.AuthorID]; ok {
			v.Author = Author{
				ID:        u.ID,
				Email:     u.Email,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Role:      u.Role,
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func validateTitle(fe fieldErrors, title string) {
	switch {
	case title == "":
		fe.add("title", "is required")
	case utf8.RuneCountInString(title) > domain.MaxTitleLength:
		fe.add("title", "must be at most 200 characters")
	}
}

func validateContent(fe fieldErrors, content string) {
	switch {
	case strings.TrimSpace(content) == "":
		fe.add("content", "is required")
	case utf8.RuneCountInString(content) > domain.MaxContentLength:
		fe.add("content", "must be at most 10000 characters")
	}
}

func validatePriority(fe fieldErrors, p domain.Priority) {
	if !p.Valid() {
		fe.add("priority", "must be low, medium or high")
	}
}
