package sqlite_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/notes/internal/notes/domain"
	"github.com/aussiebroadwan/notes/internal/notes/store"
	"github.com/aussiebroadwan/notes/internal/notes/store/drivers/sqlite"
	"github.com/aussiebroadwan/notes/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func seedTenant(t *testing.T, s store.Store, slug string, plan domain.Plan) (domain.Tenant, domain.User) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	tenant := domain.Tenant{
		ID:        idx.New().String(),
		Name:      slug,
		Slug:      slug,
		Plan:      plan,
		MaxNotes:  domain.MaxNotesFor(plan),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.Tenants().CreateTenant(ctx, tenant))

	user := domain.User{
		ID:           idx.New().String(),
		Email:        "admin@" + slug + ".test",
		PasswordHash: "x",
		Role:         domain.RoleAdmin,
		TenantID:     tenant.ID,
		FirstName:    "Ada",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(ctx, user))

	return tenant, user
}

func newNote(tenant domain.Tenant, author domain.User, title string, tags ...string) domain.Note {
	now := time.Now().UTC()
	return domain.Note{
		ID:        idx.New().String(),
		Title:     title,
		Content:   "content of " + title,
		Tags:      tags,
		Priority:  domain.PriorityMedium,
		AuthorID:  author.ID,
		TenantID:  tenant.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTenantsAndUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant, user := seedTenant(t, s, "acme", domain.PlanFree)

	got, err := s.Tenants().GetTenantBySlug(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, tenant.ID, got.ID)
	require.Equal(t, domain.PlanFree, got.Plan)
	require.Equal(t, 3, got.MaxNotes)
	require.True(t, got.IsActive)
	require.WithinDuration(t, tenant.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = s.Tenants().GetTenantBySlug(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := tenant
	dup.ID = idx.New().String()
	require.ErrorIs(t, s.Tenants().CreateTenant(ctx, dup), store.ErrAlreadyExists)

	byEmail, err := s.Users().GetUserByEmail(ctx, "ADMIN@acme.test")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)
	require.Equal(t, domain.RoleAdmin, byEmail.Role)

	other := user
	other.ID = idx.New().String()
	other.Email = "Admin@Acme.Test"
	require.ErrorIs(t, s.Users().CreateUser(ctx, other), store.ErrAlreadyExists)

	empty, err := s.Tenants().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestUpgradeToPro(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant, _ := seedTenant(t, s, "acme", domain.PlanFree)

	upgraded, err := s.Tenants().UpgradeToPro(ctx, tenant.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PlanPro, upgraded.Plan)
	require.Equal(t, domain.Unlimited, upgraded.MaxNotes)

	_, err = s.Tenants().UpgradeToPro(ctx, tenant.ID)
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = s.Tenants().UpgradeToPro(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateNoteWithinLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant, user := seedTenant(t, s, "acme", domain.PlanFree)

	for i := range 3 {
		require.NoError(t, s.Notes().CreateNoteWithinLimit(ctx, newNote(tenant, user, fmt.Sprintf("n%d", i))))
	}
	require.ErrorIs(t, s.Notes().CreateNoteWithinLimit(ctx, newNote(tenant, user, "n4")), store.ErrLimitReached)

	count, err := s.Notes().CountActiveNotes(ctx, tenant.ID)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	// Archiving frees a slot.
	notes, _, err := s.Notes().ListNotes(ctx, domain.NoteFilter{TenantID: tenant.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	archived := notes[0]
	archived.IsArchived = true
	require.NoError(t, s.Notes().UpdateNote(ctx, archived))
	require.NoError(t, s.Notes().CreateNoteWithinLimit(ctx, newNote(tenant, user, "n5")))

	// Restoring the archived note would exceed the cap.
	require.ErrorIs(t, s.Notes().RestoreNoteWithinLimit(ctx, archived), store.ErrLimitReached)

	// After upgrade the cap is gone.
	_, err = s.Tenants().UpgradeToPro(ctx, tenant.ID)
	require.NoError(t, err)
	require.NoError(t, s.Notes().RestoreNoteWithinLimit(ctx, archived))
	require.ErrorIs(t, s.Notes().RestoreNoteWithinLimit(ctx, archived), store.ErrConflict)
	require.NoError(t, s.Notes().CreateNoteWithinLimit(ctx, newNote(tenant, user, "n6")))

	_, err = s.Tenants().GetTenantByID(ctx, tenant.ID)
	require.NoError(t, err)
	require.ErrorIs(t, s.Notes().CreateNoteWithinLimit(ctx, newNote(domain.Tenant{ID: idx.New().String()}, user, "orphan")), store.ErrNotFound)
}

func TestCreateNoteWithinLimit_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant, user := seedTenant(t, s, "acme", domain.PlanFree)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Notes().CreateNoteWithinLimit(ctx, newNote(tenant, user, fmt.Sprintf("c%d", i)))

			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				created++
			case store.ErrLimitReached:
				rejected++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 3, created)
	require.Equal(t, 7, rejected)
}

func TestListNotesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant, user := seedTenant(t, s, "acme", domain.PlanPro)
	otherTenant, otherUser := seedTenant(t, s, "globex", domain.PlanPro)

	base := time.Now().UTC().Add(-time.Hour)
	mk := func(title, content string, p domain.Priority, offset time.Duration, tags ...string) domain.Note {
		n := newNote(tenant, user, title, tags...)
		n.Content = content
		n.Priority = p
		n.CreatedAt = base.Add(offset)
		n.UpdatedAt = n.CreatedAt
		return n
	}

	for _, n := range []domain.Note{
		mk("Groceries", "milk and eggs", domain.PriorityLow, 1*time.Minute, "home"),
		mk("Quarterly plan", "revenue 100% up", domain.PriorityHigh, 2*time.Minute, "work", "urgent"),
		mk("Standup", "daily sync", domain.PriorityMedium, 3*time.Minute, "work"),
	} {
		require.NoError(t, s.Notes().CreateNoteWithinLimit(ctx, n))
	}
	require.NoError(t, s.Notes().CreateNoteWithinLimit(ctx, newNote(otherTenant, otherUser, "Globex secret", "work")))

	list := func(f domain.NoteFilter) ([]domain.Note, int) {
		f.TenantID = tenant.ID
		if f.Page == 0 {
			f.Page = 1
		}
		if f.Limit == 0 {
			f.Limit = 10
		}
		notes, total, err := s.Notes().ListNotes(ctx, f)
		require.NoError(t, err)
		return notes, total
	}

	notes, total := list(domain.NoteFilter{})
	require.Equal(t, 3, total)
	require.Equal(t, "Standup", notes[0].Title, "newest first")
	require.Equal(t, "Groceries", notes[2].Title)

	notes, _ = list(domain.NoteFilter{Search: "QUARTERLY"})
	require.Len(t, notes, 1)

	notes, _ = list(domain.NoteFilter{Search: "100%"})
	require.Len(t, notes, 1)
	require.Equal(t, "Quarterly plan", notes[0].Title)

	notes, _ = list(domain.NoteFilter{Search: "%"})
	require.Len(t, notes, 1, "wildcards are matched literally")

	notes, _ = list(domain.NoteFilter{Priority: domain.PriorityHigh})
	require.Len(t, notes, 1)

	_, total = list(domain.NoteFilter{Tags: []string{"work"}})
	require.Equal(t, 2, total)

	_, total = list(domain.NoteFilter{Tags: []string{"home", "urgent"}})
	require.Equal(t, 2, total)

	_, total = list(domain.NoteFilter{AuthorID: otherUser.ID})
	require.Equal(t, 0, total)

	notes, total = list(domain.NoteFilter{Page: 2, Limit: 2})
	require.Equal(t, 3, total)
	require.Len(t, notes, 1)
	require.Equal(t, "Groceries", notes[0].Title)

	_, total = list(domain.NoteFilter{Archived: true})
	require.Equal(t, 0, total)
}

func TestNoteTenantScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant, user := seedTenant(t, s, "acme", domain.PlanFree)
	other, _ := seedTenant(t, s, "globex", domain.PlanFree)

	n := newNote(tenant, user, "mine", "a", "b")
	require.NoError(t, s.Notes().CreateNoteWithinLimit(ctx, n))

	got, err := s.Notes().GetNote(ctx, tenant.ID, n.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, got.Tags)

	_, err = s.Notes().GetNote(ctx, other.ID, n.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Notes().DeleteNote(ctx, other.ID, n.ID), store.ErrNotFound)

	foreign := got
	foreign.TenantID = other.ID
	require.ErrorIs(t, s.Notes().UpdateNote(ctx, foreign), store.ErrNotFound)

	require.NoError(t, s.Notes().DeleteNote(ctx, tenant.ID, n.ID))
	require.ErrorIs(t, s.Notes().DeleteNote(ctx, tenant.ID, n.ID), store.ErrNotFound)
}

func TestUsersListingAndDeactivation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant, admin := seedTenant(t, s, "acme", domain.PlanFree)
	other, otherAdmin := seedTenant(t, s, "globex", domain.PlanFree)

	member := domain.User{
		ID:           idx.New().String(),
		Email:        "user@acme.test",
		PasswordHash: "x",
		Role:         domain.RoleMember,
		TenantID:     tenant.ID,
		IsActive:     true,
		CreatedAt:    time.Now().UTC().Add(time.Second),
	}
	require.NoError(t, s.Users().CreateUser(ctx, member))

	users, err := s.Users().ListActiveUsers(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, admin.ID, users[0].ID)

	byID, err := s.Users().GetUsersByIDs(ctx, tenant.ID, []string{admin.ID, member.ID, otherAdmin.ID})
	require.NoError(t, err)
	require.Len(t, byID, 2)
	require.NotContains(t, byID, otherAdmin.ID)

	require.ErrorIs(t, s.Users().DeactivateUser(ctx, other.ID, member.ID), store.ErrNotFound)
	require.NoError(t, s.Users().DeactivateUser(ctx, tenant.ID, member.ID))

	users, err = s.Users().ListActiveUsers(ctx, tenant.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)

	got, err := s.Users().GetUserByID(ctx, member.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestWithTxRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := fmt.Errorf("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		now := time.Now()
		require.NoError(t, tx.Tenants().CreateTenant(ctx, domain.Tenant{
			ID: idx.New().String(), Name: "Acme", Slug: "acme", Plan: domain.PlanFree,
			MaxNotes: 3, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	empty, err := s.Tenants().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestListNotesSearchFoldsUnicode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tenant, user := seedTenant(t, s, "acme", domain.PlanFree)
	n := newNote(tenant, user, "Élan vital")
	n.Content = "ÜBER ALLES"
	require.NoError(t, s.Notes().CreateNoteWithinLimit(ctx, n))

	for _, term := range []string{"élan", "ÉLAN", "über", "Über alles"} {
		notes, total, err := s.Notes().ListNotes(ctx, domain.NoteFilter{TenantID: tenant.ID, Search: term, Page: 1, Limit: 10})
		require.NoError(t, err, term)
		require.Equal(t, 1, total, term)
		require.Equal(t, n.ID, notes[0].ID, term)
	}
}

func TestDeleteTenant(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	withUsers, _ := seedTenant(t, s, "acme", domain.PlanFree)
	require.ErrorIs(t, s.Tenants().DeleteTenant(ctx, withUsers.ID), store.ErrConflict)

	now := time.Now().UTC()
	bare := domain.Tenant{
		ID: idx.New().String(), Name: "Initech", Slug: "initech", Plan: domain.PlanFree,
		MaxNotes: domain.FreeMaxNotes, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.Tenants().CreateTenant(ctx, bare))
	require.NoError(t, s.Tenants().DeleteTenant(ctx, bare.ID))

	_, err := s.Tenants().GetTenantBySlug(ctx, "initech")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Tenants().DeleteTenant(ctx, bare.ID), store.ErrNotFound)

	bare.ID = idx.New().String()
	require.NoError(t, s.Tenants().CreateTenant(ctx, bare), "slug is free again")
}
