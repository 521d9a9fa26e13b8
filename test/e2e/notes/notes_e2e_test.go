//go:build e2e

package notes_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/notes/pkg/notesdk"
	"github.com/stretchr/testify/require"
)

func TestHealthAndReadiness(t *testing.T) {
	client := setupNotesContainer(t, nil)

	health, err := client.Health(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)

	ready, err := client.Ready(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
}

// TestFreeToProJourney walks a tenant from registration through the Free
// cap and an upgrade.
func TestFreeToProJourney(t *testing.T) {
	client := setupNotesContainer(t, relaxedLimits)
	ctx := t.Context()

	admin, slug := registerCompany(t, client, "Acme Widgets", "admin@widgets.test")
	require.Equal(t, "acme-widgets", slug)

	member := inviteMember(t, client, admin, "member@widgets.test")

	for _, title := range []string{"one", "two", "three"} {
		_, err := member.CreateNote(ctx, notesdk.CreateNoteRequest{Title: title, Content: "content " + title})
		require.NoError(t, err)
	}

	_, err := member.CreateNote(ctx, notesdk.CreateNoteRequest{Title: "four", Content: "over the cap"})
	requireStatus(t, err, http.StatusForbidden, notesdk.ErrorCodeLimitReached)

	_, err = member.Upgrade(ctx, slug)
	requireStatus(t, err, http.StatusForbidden, notesdk.ErrorCodeForbidden)

	up, err := admin.Upgrade(ctx, slug)
	require.NoError(t, err)
	require.Equal(t, "Pro", up.Tenant.SubscriptionPlan)

	_, err = member.CreateNote(ctx, notesdk.CreateNoteRequest{Title: "four", Content: "now allowed"})
	require.NoError(t, err)

	info, err := member.Tenant(ctx, slug)
	require.NoError(t, err)
	require.Equal(t, 4, info.Tenant.CurrentNotes)
	require.True(t, info.Tenant.CanCreateMoreNotes)
}

func TestTenantIsolation(t *testing.T) {
	client := setupNotesContainer(t, relaxedLimits)
	ctx := t.Context()

	acme, acmeSlug := registerCompany(t, client, "Acme", "admin@acme.example")
	globex, _ := registerCompany(t, client, "Globex", "admin@globex.example")

	note, err := acme.CreateNote(ctx, notesdk.CreateNoteRequest{Title: "private", Content: "acme only"})
	require.NoError(t, err)

	_, err = globex.GetNote(ctx, note.ID)
	requireStatus(t, err, http.StatusNotFound, notesdk.ErrorCodeNotFound)

	list, err := globex.ListNotes(ctx, notesdk.ListNotesParams{})
	require.NoError(t, err)
	require.Empty(t, list.Notes)

	_, err = globex.TenantUsers(ctx, acmeSlug)
	requireStatus(t, err, http.StatusForbidden, notesdk.ErrorCodeForbidden)
}

func TestDeactivatedUserIsLockedOut(t *testing.T) {
	client := setupNotesContainer(t, relaxedLimits)
	ctx := t.Context()

	admin, slug := registerCompany(t, client, "Initech", "admin@initech.test")
	member := inviteMember(t, client, admin, "peter@initech.test")

	prof, err := member.Profile(ctx)
	require.NoError(t, err)

	_, err = admin.DeactivateUser(ctx, slug, prof.User.ID)
	require.NoError(t, err)

	_, err = member.ListNotes(ctx, notesdk.ListNotesParams{})
	requireStatus(t, err, http.StatusUnauthorized, "")
}

func TestDemoSeed(t *testing.T) {
	client := setupNotesContainer(t, map[string]string{"NOTES_SEED_DEMO": "true"})
	ctx := t.Context()

	admin, resp, err := client.Login(ctx, "admin@acme.test", "password")
	require.NoError(t, err)
	require.Equal(t, "Admin", resp.User.Role)

	users, err := admin.TenantUsers(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, users.Users, 2)
}

// TestRateLimitLogin uses the production limits: 5 attempts per minute for
// one email from one address.
func TestRateLimitLogin(t *testing.T) {
	client := setupNotesContainer(t, nil)
	ctx := t.Context()

	for range 5 {
		_, _, err := client.Login(ctx, "nobody@nowhere.test", "wrong password")
		requireStatus(t, err, http.StatusBadRequest, notesdk.ErrorCodeInvalidCredentials)
	}

	_, _, err := client.Login(ctx, "nobody@nowhere.test", "wrong password")
	requireStatus(t, err, http.StatusTooManyRequests, notesdk.ErrorCodeRateLimited)
}
